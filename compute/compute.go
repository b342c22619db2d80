// Copyright (c) 2016-2023 The Decred developers.

// Package compute describes the host side of a data-parallel compute runtime
// in terms of the handful of objects a host program needs: platforms,
// devices, contexts, command queues, programs, kernels and buffers.
//
// Every call that submits work to a device through a Queue blocks until the
// device has finished with it.
package compute

import (
	"fmt"
	"strings"
)

// DeviceType is a bitmask of device categories.
type DeviceType uint

const (
	DeviceTypeDefault DeviceType = 1 << iota
	DeviceTypeCPU
	DeviceTypeGPU
	DeviceTypeAccelerator

	DeviceTypeAll DeviceType = 0xFFFFFFFF
)

func (t DeviceType) String() string {
	if t == DeviceTypeAll {
		return "all"
	}
	var parts []string
	if t&DeviceTypeDefault != 0 {
		parts = append(parts, "default")
	}
	if t&DeviceTypeCPU != 0 {
		parts = append(parts, "cpu")
	}
	if t&DeviceTypeGPU != 0 {
		parts = append(parts, "gpu")
	}
	if t&DeviceTypeAccelerator != 0 {
		parts = append(parts, "accelerator")
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, "|")
}

// ParseDeviceType converts a device type name as accepted on the command line
// into a DeviceType.
func ParseDeviceType(s string) (DeviceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return DeviceTypeAll, nil
	case "default":
		return DeviceTypeDefault, nil
	case "cpu":
		return DeviceTypeCPU, nil
	case "gpu":
		return DeviceTypeGPU, nil
	case "accelerator":
		return DeviceTypeAccelerator, nil
	}
	return 0, fmt.Errorf("unknown device type %q", s)
}

// Runtime is the entry point of a compute runtime installation.
type Runtime interface {
	// Platforms returns every platform (driver) the runtime exposes.
	Platforms() ([]Platform, error)
}

// Platform is a vendor's runtime installation exposing zero or more devices.
type Platform interface {
	Name() string
	Vendor() string
	Version() string

	// Devices returns the devices of the given type.  A platform without
	// matching devices returns an empty slice and no error.
	Devices(t DeviceType) ([]Device, error)
}

// Device is a processor able to execute kernels.
type Device interface {
	Name() string
	Type() DeviceType
	Vendor() string
	Version() string
	MaxComputeUnits() int
	GlobalMemSize() int64

	// CreateContext creates a context bound to this device only.
	CreateContext() (Context, error)
}

// Context owns the resources created for its device.
type Context interface {
	// CreateCommandQueue creates an in-order queue on the context device.
	CreateCommandQueue() (Queue, error)

	// CreateProgram creates an unbuilt program from source.
	CreateProgram(source string) (Program, error)

	// CreateBuffer allocates a read/write device buffer of size bytes.
	CreateBuffer(size int) (Buffer, error)

	Release()
}

// Program is a kernel program bound to a context.
type Program interface {
	// Build compiles the program for the context device.  A compile failure
	// is reported as a *BuildError carrying the device build log.
	Build(options string) error

	// CreateKernel returns the entry point with the given name.
	CreateKernel(name string) (Kernel, error)

	Release()
}

// Kernel is a single entry point of a built program.
type Kernel interface {
	Name() string

	// SetArgs binds the buffers as positional arguments 0..n-1.
	SetArgs(args ...Buffer) error

	Release()
}

// Buffer is a region of device memory.
type Buffer interface {
	Size() int
	Release()
}

// Queue submits transfers and dispatches to a device.  All methods block
// until the submitted work is complete.
type Queue interface {
	// WriteInt32s uploads src to the start of b.
	WriteInt32s(b Buffer, src []int32) error

	// ReadInt32s downloads len(dst) values from the start of b.
	ReadInt32s(b Buffer, dst []int32) error

	// Dispatch runs k over a one dimensional range of globalSize
	// work-items with no offset and the runtime's default local size.
	Dispatch(k Kernel, globalSize int) error

	Release()
}
