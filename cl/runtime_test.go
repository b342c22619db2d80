// Copyright (c) 2016-2023 The Decred developers.

//go:build opencl
// +build opencl

package cl

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	ocl "github.com/jgillich/go-opencl/cl"

	"github.com/decred/clvecadd/compute"
	"github.com/decred/clvecadd/vecadd"
)

func TestDeviceTypeMapping(t *testing.T) {
	for _, typ := range []compute.DeviceType{
		compute.DeviceTypeDefault,
		compute.DeviceTypeCPU,
		compute.DeviceTypeGPU,
		compute.DeviceTypeAccelerator,
		compute.DeviceTypeCPU | compute.DeviceTypeGPU,
	} {
		if got := fromCLDeviceType(toCLDeviceType(typ)); got != typ {
			t.Errorf("round trip of %v = %v", typ, got)
		}
	}
}

func TestBuildErrorMapping(t *testing.T) {
	err := buildError("gpu0", ocl.BuildError("<kernel>:1:40: error: use of undeclared identifier"))
	var buildErr *compute.BuildError
	if !errors.As(err, &buildErr) {
		t.Fatalf("err = %v, want a build error", err)
	}
	if buildErr.Device != "gpu0" {
		t.Errorf("device = %q, want %q", buildErr.Device, "gpu0")
	}
	if buildErr.Log != "<kernel>:1:40: error: use of undeclared identifier" {
		t.Errorf("log = %q, want the bare build log", buildErr.Log)
	}

	invalid := errors.New("cl: Invalid Device")
	err = buildError("gpu0", invalid)
	if errors.As(err, &buildErr) {
		t.Errorf("runtime failure reported as build error: %v", err)
	}
	if !errors.Is(err, invalid) {
		t.Errorf("err = %v, want wrapped %v", err, invalid)
	}
}

func TestVectorAdd(t *testing.T) {
	rt := New()
	var out bytes.Buffer
	res, err := vecadd.Run(context.Background(), rt, &vecadd.Config{
		Out:    &out,
		Verify: true,
	})
	if errors.Is(err, compute.ErrNoPlatforms) || errors.Is(err, compute.ErrNoDevices) {
		t.Skipf("no OpenCL device available: %v", err)
	}
	if err != nil {
		t.Fatalf("Run: %v\n%s", err, out.String())
	}
	want := []int32{0, 2, 4, 3, 5, 7, 6, 8, 10, 9}
	if !reflect.DeepEqual(res.C, want) {
		t.Errorf("C = %v, want %v", res.C, want)
	}
}

func TestBuildFailure(t *testing.T) {
	rt := New()
	var out bytes.Buffer
	_, err := vecadd.Run(context.Background(), rt, &vecadd.Config{
		Out:    &out,
		Source: "kernel void simple_add(global int *C) { C[0] = undeclared; }",
	})
	if errors.Is(err, compute.ErrNoPlatforms) || errors.Is(err, compute.ErrNoDevices) {
		t.Skipf("no OpenCL device available: %v", err)
	}
	var buildErr *compute.BuildError
	if !errors.As(err, &buildErr) {
		t.Fatalf("err = %v, want a build error", err)
	}
	if buildErr.Log == "" {
		t.Error("empty build log")
	}
}
