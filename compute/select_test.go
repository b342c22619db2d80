package compute_test

import (
	"errors"
	"testing"

	"github.com/decred/clvecadd/compute"
	"github.com/decred/clvecadd/compute/computetest"
)

func TestParseDeviceType(t *testing.T) {
	tests := []struct {
		in      string
		want    compute.DeviceType
		wantErr bool
	}{
		{"", compute.DeviceTypeAll, false},
		{"all", compute.DeviceTypeAll, false},
		{"GPU", compute.DeviceTypeGPU, false},
		{" cpu ", compute.DeviceTypeCPU, false},
		{"accelerator", compute.DeviceTypeAccelerator, false},
		{"default", compute.DeviceTypeDefault, false},
		{"fpga", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := compute.ParseDeviceType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDeviceType(%q) err = %v, wantErr %v", tt.in,
					err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDeviceType(%q) = %v, want %v", tt.in, got,
					tt.want)
			}
		})
	}
}

func TestDeviceTypeString(t *testing.T) {
	tests := []struct {
		t    compute.DeviceType
		want string
	}{
		{compute.DeviceTypeAll, "all"},
		{compute.DeviceTypeGPU, "gpu"},
		{compute.DeviceTypeCPU | compute.DeviceTypeDefault, "default|cpu"},
		{0, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", uint(tt.t), got, tt.want)
		}
	}
}

func TestSelectPlatform(t *testing.T) {
	rt := computetest.New()
	rt.AddPlatform("first")
	rt.AddPlatform("second")
	ps, err := rt.Platforms()
	if err != nil {
		t.Fatal(err)
	}

	p, err := compute.FirstAvailable().SelectPlatform(ps)
	if err != nil || p.Name() != "first" {
		t.Errorf("FirstAvailable picked %v (%v), want first", p, err)
	}
	p, err = compute.Selector{PlatformIndex: 1}.SelectPlatform(ps)
	if err != nil || p.Name() != "second" {
		t.Errorf("index 1 picked %v (%v), want second", p, err)
	}
	if _, err := (compute.Selector{PlatformIndex: -1}).SelectPlatform(ps); !errors.Is(err, compute.ErrDeviceIndex) {
		t.Errorf("index -1 err = %v, want %v", err, compute.ErrDeviceIndex)
	}
	if _, err := compute.FirstAvailable().SelectPlatform(nil); !errors.Is(err, compute.ErrNoPlatforms) {
		t.Errorf("empty err = %v, want %v", err, compute.ErrNoPlatforms)
	}
}

func TestSelectDevice(t *testing.T) {
	rt := computetest.New()
	p := rt.AddPlatform("p")
	p.AddDevice("Intel(R) Core(TM) i7", compute.DeviceTypeCPU)
	p.AddDevice("AMD Radeon RX 580", compute.DeviceTypeGPU)
	p.AddDevice("NVIDIA GeForce GTX 1080", compute.DeviceTypeGPU)
	ps, _ := rt.Platforms()

	tests := []struct {
		name string
		sel  compute.Selector
		want string
		err  error
	}{
		{"first", compute.FirstAvailable(), "Intel(R) Core(TM) i7", nil},
		{"second gpu", compute.Selector{Type: compute.DeviceTypeGPU, DeviceIndex: 1}, "NVIDIA GeForce GTX 1080", nil},
		{"name", compute.Selector{Match: compute.NameContains("radeon")}, "AMD Radeon RX 580", nil},
		{"no match", compute.Selector{Match: compute.NameContains("arc")}, "", compute.ErrNoDevices},
		{"out of range", compute.Selector{DeviceIndex: 3}, "", compute.ErrDeviceIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := ps[0].Devices(tt.sel.DeviceType())
			if err != nil {
				t.Fatal(err)
			}
			d, err := tt.sel.SelectDevice(tt.sel.Filter(ds))
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("err = %v, want %v", err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if d.Name() != tt.want {
				t.Errorf("selected %q, want %q", d.Name(), tt.want)
			}
		})
	}
}

func TestBuildError(t *testing.T) {
	var err error = &compute.BuildError{Device: "gpu0", Log: "syntax error"}
	var be *compute.BuildError
	if !errors.As(err, &be) || be.Log != "syntax error" {
		t.Fatalf("errors.As failed for %v", err)
	}
	want := "program build failed for gpu0: syntax error"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
