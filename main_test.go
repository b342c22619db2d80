// Copyright (c) 2016-2023 The Decred developers.

package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	flags "github.com/jessevdk/go-flags"

	"github.com/decred/clvecadd/compute"
	"github.com/decred/clvecadd/compute/computetest"
	"github.com/decred/clvecadd/vecadd"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"help", &flags.Error{Type: flags.ErrHelp}, 0},
		{"bad flag", &flags.Error{Type: flags.ErrUnknownFlag}, 1},
		{"no platforms", compute.ErrNoPlatforms, 1},
		{"no devices", compute.ErrNoDevices, 1},
		{"build", &compute.BuildError{Device: "cpu0", Log: "error"}, 1},
		{"wrapped", fmt.Errorf("run: %w", compute.ErrDeviceIndex), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRunExitStatus(t *testing.T) {
	withDevice := func() *computetest.Runtime {
		rt := computetest.New()
		rt.Kernels[vecadd.KernelName] = computetest.AddInt32
		rt.AddPlatform("p").AddDevice("cpu0", compute.DeviceTypeCPU)
		return rt
	}

	tests := []struct {
		name   string
		rt     *computetest.Runtime
		cfg    config
		status int
		out    string
	}{
		{
			name:   "no platforms",
			rt:     computetest.New(),
			cfg:    config{deviceType: compute.DeviceTypeAll},
			status: 1,
			out:    "No platforms found. Check OpenCL installation!",
		},
		{
			name: "no devices",
			rt: func() *computetest.Runtime {
				rt := computetest.New()
				rt.AddPlatform("p")
				return rt
			}(),
			cfg:    config{deviceType: compute.DeviceTypeAll},
			status: 1,
			out:    "No devices found. Check OpenCL installation!",
		},
		{
			name:   "list without platforms",
			rt:     computetest.New(),
			cfg:    config{ListDevices: true, deviceType: compute.DeviceTypeAll},
			status: 1,
			out:    "No platforms found. Check OpenCL installation!",
		},
		{
			name:   "success",
			rt:     withDevice(),
			cfg:    config{Verify: true},
			status: 0,
			out:    "output array [ 0 2 4 3 5 7 6 8 10 9 ]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(context.Background(), tt.rt, &tt.cfg, &out)
			if got := exitCode(err); got != tt.status {
				t.Errorf("exit status %d (err %v), want %d", got, err,
					tt.status)
			}
			if !strings.Contains(out.String(), tt.out) {
				t.Errorf("output %q does not contain %q", out.String(),
					tt.out)
			}
		})
	}
}
