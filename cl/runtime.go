// Copyright (c) 2016-2023 The Decred developers.

// Package cl implements compute.Runtime on top of the system OpenCL
// installation.
package cl

import (
	"errors"
	"fmt"
	"unsafe"

	ocl "github.com/jgillich/go-opencl/cl"

	"github.com/decred/clvecadd/compute"
)

const int32Size = int(unsafe.Sizeof(int32(0)))

var (
	_ compute.Runtime  = (*Runtime)(nil)
	_ compute.Platform = (*platform)(nil)
	_ compute.Device   = (*device)(nil)
	_ compute.Context  = (*clContext)(nil)
	_ compute.Queue    = (*queue)(nil)
)

// Runtime is the OpenCL compute runtime.
type Runtime struct{}

// New returns the system OpenCL runtime.
func New() *Runtime {
	return &Runtime{}
}

// Platforms implements compute.Runtime.
func (Runtime) Platforms() ([]compute.Platform, error) {
	ids, err := ocl.GetPlatforms()
	if err != nil {
		return nil, clError(err, "GetPlatforms")
	}
	ps := make([]compute.Platform, 0, len(ids))
	for _, id := range ids {
		ps = append(ps, &platform{id: id})
	}
	log.Tracef("Found %d platforms", len(ps))
	return ps, nil
}

func clError(err error, f string) error {
	return fmt.Errorf("%s: %w", f, err)
}

func toCLDeviceType(t compute.DeviceType) ocl.DeviceType {
	if t == compute.DeviceTypeAll {
		return ocl.DeviceTypeAll
	}
	var out ocl.DeviceType
	if t&compute.DeviceTypeDefault != 0 {
		out |= ocl.DeviceTypeDefault
	}
	if t&compute.DeviceTypeCPU != 0 {
		out |= ocl.DeviceTypeCPU
	}
	if t&compute.DeviceTypeGPU != 0 {
		out |= ocl.DeviceTypeGPU
	}
	if t&compute.DeviceTypeAccelerator != 0 {
		out |= ocl.DeviceTypeAccelerator
	}
	return out
}

func fromCLDeviceType(t ocl.DeviceType) compute.DeviceType {
	var out compute.DeviceType
	if t&ocl.DeviceTypeDefault != 0 {
		out |= compute.DeviceTypeDefault
	}
	if t&ocl.DeviceTypeCPU != 0 {
		out |= compute.DeviceTypeCPU
	}
	if t&ocl.DeviceTypeGPU != 0 {
		out |= compute.DeviceTypeGPU
	}
	if t&ocl.DeviceTypeAccelerator != 0 {
		out |= compute.DeviceTypeAccelerator
	}
	return out
}

type platform struct {
	id *ocl.Platform
}

func (p *platform) Name() string { return p.id.Name() }
func (p *platform) Vendor() string { return p.id.Vendor() }
func (p *platform) Version() string { return p.id.Version() }

func (p *platform) Devices(t compute.DeviceType) ([]compute.Device, error) {
	ids, err := p.id.GetDevices(toCLDeviceType(t))
	if errors.Is(err, ocl.ErrDeviceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, clError(err, "GetDevices")
	}
	ds := make([]compute.Device, 0, len(ids))
	for _, id := range ids {
		ds = append(ds, &device{id: id})
	}
	return ds, nil
}

type device struct {
	id *ocl.Device
}

func (d *device) Name() string { return d.id.Name() }
func (d *device) Type() compute.DeviceType { return fromCLDeviceType(d.id.Type()) }
func (d *device) Vendor() string { return d.id.Vendor() }
func (d *device) Version() string { return d.id.Version() }
func (d *device) MaxComputeUnits() int { return d.id.MaxComputeUnits() }
func (d *device) GlobalMemSize() int64 { return d.id.GlobalMemSize() }

func (d *device) CreateContext() (compute.Context, error) {
	c, err := ocl.CreateContext([]*ocl.Device{d.id})
	if err != nil {
		return nil, clError(err, "CreateContext")
	}
	log.Tracef("Created context for %s", d.id.Name())
	return &clContext{ctx: c, device: d.id}, nil
}

type clContext struct {
	ctx    *ocl.Context
	device *ocl.Device
}

func (c *clContext) CreateCommandQueue() (compute.Queue, error) {
	q, err := c.ctx.CreateCommandQueue(c.device, 0)
	if err != nil {
		return nil, clError(err, "CreateCommandQueue")
	}
	return &queue{q: q}, nil
}

func (c *clContext) CreateProgram(source string) (compute.Program, error) {
	p, err := c.ctx.CreateProgramWithSource([]string{source})
	if err != nil {
		return nil, clError(err, "CreateProgramWithSource")
	}
	return &program{p: p, device: c.device}, nil
}

func (c *clContext) CreateBuffer(size int) (compute.Buffer, error) {
	m, err := c.ctx.CreateEmptyBuffer(ocl.MemReadWrite, size)
	if err != nil {
		return nil, clError(err, "CreateBuffer")
	}
	return &buffer{m: m, size: size}, nil
}

func (c *clContext) Release() {
	c.ctx.Release()
}

type program struct {
	p      *ocl.Program
	device *ocl.Device
}

// Build compiles the program for the context device.
func (p *program) Build(options string) error {
	err := p.p.BuildProgram([]*ocl.Device{p.device}, options)
	if err != nil {
		return buildError(p.device.Name(), err)
	}
	return nil
}

// buildError converts a compile failure reported by the binding into a
// compute.BuildError carrying the device build log.  Any other failure is
// returned as a runtime error.
func buildError(device string, err error) error {
	var clErr ocl.BuildError
	if errors.As(err, &clErr) {
		return &compute.BuildError{Device: device, Log: string(clErr)}
	}
	return clError(err, "BuildProgram")
}

func (p *program) CreateKernel(name string) (compute.Kernel, error) {
	k, err := p.p.CreateKernel(name)
	if err != nil {
		return nil, clError(err, "CreateKernel")
	}
	return &kernel{k: k, name: name}, nil
}

func (p *program) Release() {
	p.p.Release()
}

type kernel struct {
	k    *ocl.Kernel
	name string
}

func (k *kernel) Name() string { return k.name }

func (k *kernel) SetArgs(args ...compute.Buffer) error {
	clArgs := make([]interface{}, 0, len(args))
	for i, a := range args {
		b, ok := a.(*buffer)
		if !ok {
			return fmt.Errorf("SetKernelArg %d: unsupported buffer type %T",
				i, a)
		}
		clArgs = append(clArgs, b.m)
	}
	if err := k.k.SetArgs(clArgs...); err != nil {
		return clError(err, "SetKernelArg")
	}
	return nil
}

func (k *kernel) Release() {
	k.k.Release()
}

type buffer struct {
	m    *ocl.MemObject
	size int
}

func (b *buffer) Size() int { return b.size }

func (b *buffer) Release() {
	b.m.Release()
}

type queue struct {
	q *ocl.CommandQueue
}

func (q *queue) WriteInt32s(b compute.Buffer, src []int32) error {
	buf, ok := b.(*buffer)
	if !ok {
		return fmt.Errorf("EnqueueWriteBuffer: unsupported buffer type %T", b)
	}
	if len(src) == 0 {
		return nil
	}
	size := int32Size * len(src)
	if size > buf.size {
		return fmt.Errorf("EnqueueWriteBuffer: %d bytes overflow buffer "+
			"of %d", size, buf.size)
	}
	ev, err := q.q.EnqueueWriteBuffer(buf.m, true, 0, size,
		unsafe.Pointer(&src[0]), nil)
	if err != nil {
		return clError(err, "EnqueueWriteBuffer")
	}
	ev.Release()
	return nil
}

func (q *queue) ReadInt32s(b compute.Buffer, dst []int32) error {
	buf, ok := b.(*buffer)
	if !ok {
		return fmt.Errorf("EnqueueReadBuffer: unsupported buffer type %T", b)
	}
	if len(dst) == 0 {
		return nil
	}
	size := int32Size * len(dst)
	if size > buf.size {
		return fmt.Errorf("EnqueueReadBuffer: %d bytes overflow buffer "+
			"of %d", size, buf.size)
	}
	ev, err := q.q.EnqueueReadBuffer(buf.m, true, 0, size,
		unsafe.Pointer(&dst[0]), nil)
	if err != nil {
		return clError(err, "EnqueueReadBuffer")
	}
	ev.Release()
	return nil
}

// Dispatch enqueues k and waits for the queue to drain.
func (q *queue) Dispatch(k compute.Kernel, globalSize int) error {
	kern, ok := k.(*kernel)
	if !ok {
		return fmt.Errorf("EnqueueNDRangeKernel: unsupported kernel type %T", k)
	}
	ev, err := q.q.EnqueueNDRangeKernel(kern.k, nil, []int{globalSize}, nil,
		nil)
	if err != nil {
		return clError(err, "EnqueueNDRangeKernel")
	}
	defer ev.Release()
	if err := q.q.Finish(); err != nil {
		return clError(err, "Finish")
	}
	return nil
}

func (q *queue) Release() {
	q.q.Release()
}
