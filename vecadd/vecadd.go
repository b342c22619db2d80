// Copyright (c) 2016-2023 The Decred developers.

// Package vecadd runs a fixed element-wise integer addition on a compute
// device and reports the inputs and the output.
package vecadd

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/decred/clvecadd/compute"
	"github.com/decred/clvecadd/util"
)

const (
	// Elements is the length of every array and the global work size.
	Elements = 10

	// KernelName is the entry point of the kernel program.
	KernelName = "simple_add"

	int32Size = 4
)

// KernelSource is the built-in kernel program.
//
//go:embed kernel.cl
var KernelSource string

// Inputs returns fresh copies of the two fixed input arrays.
func Inputs() (a, b []int32) {
	a = []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	b = []int32{0, 1, 2, 0, 1, 2, 0, 1, 2, 0}
	return a, b
}

// Expected computes the result on the host.
func Expected(a, b []int32) []int32 {
	c := make([]int32, len(a))
	for i := range a {
		c[i] = a[i] + b[i]
	}
	return c
}

// LoadKernel returns the built-in kernel source when path is empty and the
// contents of path otherwise.
func LoadKernel(path string) (string, error) {
	if path == "" {
		return KernelSource, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not load kernel source: %w", err)
	}
	return string(src), nil
}

// Config controls a run.
type Config struct {
	// Selector picks the platform and device.
	Selector compute.Selector

	// Source is the kernel program.  Empty means KernelSource.
	Source string

	// Out receives the report.
	Out io.Writer

	// Verify checks the output against Expected.
	Verify bool
}

// Result is the outcome of a successful run.
type Result struct {
	Platform string
	Device   string
	A, B, C  []int32
}

// ErrMismatch is returned by a verified run whose output differs from the
// host computation.
var ErrMismatch = errors.New("device output does not match host result")

// Run enumerates devices, builds the kernel, executes it over the fixed
// inputs and prints the report to cfg.Out.
//
// Missing platforms and devices, and kernel build failures, are reported on
// cfg.Out before the matching error is returned.  Every runtime object
// acquired by Run is released before it returns.
func Run(ctx context.Context, rt compute.Runtime, cfg *Config) (*Result, error) {
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	source := cfg.Source
	if source == "" {
		source = KernelSource
	}

	// An enumeration failure is reported the same way as an empty
	// enumeration.  Runtimes without any installed driver fail here.
	platforms, err := rt.Platforms()
	if err != nil {
		log.Errorf("Could not get platforms: %v", err)
		platforms = nil
	}
	platform, err := cfg.Selector.SelectPlatform(platforms)
	if errors.Is(err, compute.ErrNoPlatforms) {
		fmt.Fprintln(out, "No platforms found. Check OpenCL installation!")
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Using platform: %s\n", platform.Name())

	devices, err := platform.Devices(cfg.Selector.DeviceType())
	if err != nil {
		log.Errorf("Could not get devices for platform: %v", err)
		devices = nil
	}
	devices = cfg.Selector.Filter(devices)
	if len(devices) == 0 {
		fmt.Fprintln(out, "No devices found. Check OpenCL installation!")
		return nil, compute.ErrNoDevices
	}
	for _, d := range devices {
		fmt.Fprintf(out, "Available device: %s\n", d.Name())
	}
	device, err := cfg.Selector.SelectDevice(devices)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Using device: %s\n", device.Name())
	log.Debugf("Selected %s device %q (%s), %d compute units, %d bytes "+
		"global memory", device.Type(), device.Name(), device.Version(),
		device.MaxComputeUnits(), device.GlobalMemSize())
	log.Tracef("%v", newLogClosure(func() string {
		return spew.Sdump(device)
	}))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dctx, err := device.CreateContext()
	if err != nil {
		return nil, err
	}
	defer dctx.Release()

	program, err := dctx.CreateProgram(source)
	if err != nil {
		return nil, err
	}
	defer program.Release()

	if err := program.Build(""); err != nil {
		var buildErr *compute.BuildError
		if errors.As(err, &buildErr) {
			fmt.Fprintf(out, "Error Building: %s\n", buildErr.Log)
		}
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a, b := Inputs()
	c := make([]int32, Elements)

	var bufs [3]compute.Buffer
	for i := range bufs {
		buf, err := dctx.CreateBuffer(int32Size * Elements)
		if err != nil {
			return nil, err
		}
		defer buf.Release()
		bufs[i] = buf
	}

	queue, err := dctx.CreateCommandQueue()
	if err != nil {
		return nil, err
	}
	defer queue.Release()

	if err := queue.WriteInt32s(bufs[0], a); err != nil {
		return nil, err
	}
	if err := queue.WriteInt32s(bufs[1], b); err != nil {
		return nil, err
	}

	kernel, err := program.CreateKernel(KernelName)
	if err != nil {
		return nil, err
	}
	defer kernel.Release()

	if err := kernel.SetArgs(bufs[0], bufs[1], bufs[2]); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := queue.Dispatch(kernel, Elements); err != nil {
		return nil, err
	}
	if err := queue.ReadInt32s(bufs[2], c); err != nil {
		return nil, err
	}

	res := &Result{
		Platform: platform.Name(),
		Device:   device.Name(),
		A:        a,
		B:        b,
		C:        c,
	}
	Report(out, res)
	log.Infof("Result digest %v", util.Digest(a, b, c))

	if cfg.Verify {
		bad := util.Mismatches(c, Expected(a, b))
		for _, i := range bad {
			log.Errorf("Element %d: device %d, host %d", i, c[i], a[i]+b[i])
		}
		if len(bad) != 0 {
			return res, fmt.Errorf("%d of %d elements: %w", len(bad),
				Elements, ErrMismatch)
		}
		log.Debugf("Verified %d elements against host", Elements)
	}

	return res, nil
}

// Report writes the inputs and the output, one bracketed line each, in the
// order A, B, C.
func Report(w io.Writer, r *Result) {
	fmt.Fprintln(w, util.FormatArray("A input array", r.A))
	fmt.Fprintln(w, util.FormatArray("B input array", r.B))
	fmt.Fprintln(w, util.FormatArray("output array", r.C))
}
