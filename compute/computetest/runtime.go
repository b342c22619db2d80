// Copyright (c) 2016-2023 The Decred developers.

// Package computetest provides an in-memory compute.Runtime whose kernels are
// emulated by Go functions on the host.  It records every call so tests can
// assert call ordering and resource release.
package computetest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/decred/clvecadd/compute"
)

// KernelFunc emulates a kernel.  It is invoked once per dispatch with the
// global work size and the contents of the bound buffers, in argument order.
type KernelFunc func(globalSize int, args [][]int32)

// AddInt32 emulates a kernel computing args[2][i] = args[0][i] + args[1][i].
func AddInt32(globalSize int, args [][]int32) {
	a, b, c := args[0], args[1], args[2]
	for i := 0; i < globalSize; i++ {
		c[i] = a[i] + b[i]
	}
}

// Runtime is a fake compute.Runtime.
type Runtime struct {
	platforms []*Platform

	// PlatformsErr is returned by Platforms when set.
	PlatformsErr error

	// Kernels maps kernel names to their host emulation.
	Kernels map[string]KernelFunc

	// BuildLog, when non-empty, makes every Program.Build fail with a
	// compute.BuildError carrying this log.
	BuildLog string

	// FailOn makes the named call (e.g. "CreateBuffer") return the error.
	FailOn map[string]error

	calls       []string
	outstanding int
	released    int
	errs        []error
}

// New returns an empty runtime with no platforms.
func New() *Runtime {
	return &Runtime{
		Kernels: make(map[string]KernelFunc),
		FailOn:  make(map[string]error),
	}
}

// AddPlatform registers a new platform.
func (r *Runtime) AddPlatform(name string) *Platform {
	p := &Platform{rt: r, name: name}
	r.platforms = append(r.platforms, p)
	return p
}

// Calls returns the names of the calls made so far, in order.
func (r *Runtime) Calls() []string {
	return append([]string(nil), r.calls...)
}

// Called reports whether the named call was made at least once.
func (r *Runtime) Called(name string) bool {
	for _, c := range r.calls {
		if c == name {
			return true
		}
	}
	return false
}

// Outstanding returns the number of created objects not yet released.
func (r *Runtime) Outstanding() int {
	return r.outstanding
}

// Released returns the number of objects released.
func (r *Runtime) Released() int {
	return r.released
}

// Err returns the first misuse detected by the runtime, such as a double
// release or a buffer used after release.
func (r *Runtime) Err() error {
	if len(r.errs) == 0 {
		return nil
	}
	return r.errs[0]
}

func (r *Runtime) call(name string) error {
	r.calls = append(r.calls, name)
	return r.FailOn[name]
}

func (r *Runtime) acquire() {
	r.outstanding++
}

func (r *Runtime) release(what string, done *bool) {
	r.calls = append(r.calls, "Release"+what)
	if *done {
		r.errs = append(r.errs, fmt.Errorf("%s released twice", what))
		return
	}
	*done = true
	r.outstanding--
	r.released++
}

// Platforms implements compute.Runtime.
func (r *Runtime) Platforms() ([]compute.Platform, error) {
	if err := r.call("Platforms"); err != nil {
		return nil, err
	}
	if r.PlatformsErr != nil {
		return nil, r.PlatformsErr
	}
	ps := make([]compute.Platform, 0, len(r.platforms))
	for _, p := range r.platforms {
		ps = append(ps, p)
	}
	return ps, nil
}

// Platform is a fake compute.Platform.
type Platform struct {
	rt      *Runtime
	name    string
	devices []*Device
}

// AddDevice registers a device of type t on the platform.
func (p *Platform) AddDevice(name string, t compute.DeviceType) *Device {
	d := &Device{rt: p.rt, name: name, typ: t}
	p.devices = append(p.devices, d)
	return d
}

func (p *Platform) Name() string { return p.name }
func (p *Platform) Vendor() string { return "computetest" }
func (p *Platform) Version() string { return "computetest 1.0" }

// Devices implements compute.Platform.
func (p *Platform) Devices(t compute.DeviceType) ([]compute.Device, error) {
	if err := p.rt.call("Devices"); err != nil {
		return nil, err
	}
	var ds []compute.Device
	for _, d := range p.devices {
		if d.typ&t != 0 {
			ds = append(ds, d)
		}
	}
	return ds, nil
}

// Device is a fake compute.Device.
type Device struct {
	rt   *Runtime
	name string
	typ  compute.DeviceType
}

func (d *Device) Name() string { return d.name }
func (d *Device) Type() compute.DeviceType { return d.typ }
func (d *Device) Vendor() string { return "computetest" }
func (d *Device) Version() string { return "computetest 1.0" }
func (d *Device) MaxComputeUnits() int { return 1 }
func (d *Device) GlobalMemSize() int64 { return 1 << 20 }

// CreateContext implements compute.Device.
func (d *Device) CreateContext() (compute.Context, error) {
	if err := d.rt.call("CreateContext"); err != nil {
		return nil, err
	}
	d.rt.acquire()
	return &devContext{rt: d.rt, device: d}, nil
}

type devContext struct {
	rt       *Runtime
	device   *Device
	released bool
}

func (c *devContext) CreateCommandQueue() (compute.Queue, error) {
	if err := c.rt.call("CreateCommandQueue"); err != nil {
		return nil, err
	}
	c.rt.acquire()
	return &queue{rt: c.rt}, nil
}

func (c *devContext) CreateProgram(source string) (compute.Program, error) {
	if err := c.rt.call("CreateProgram"); err != nil {
		return nil, err
	}
	c.rt.acquire()
	return &program{rt: c.rt, device: c.device, source: source}, nil
}

func (c *devContext) CreateBuffer(size int) (compute.Buffer, error) {
	if err := c.rt.call("CreateBuffer"); err != nil {
		return nil, err
	}
	if size <= 0 || size%4 != 0 {
		return nil, fmt.Errorf("invalid buffer size %d", size)
	}
	c.rt.acquire()
	return &buffer{rt: c.rt, data: make([]int32, size/4)}, nil
}

func (c *devContext) Release() {
	c.rt.release("Context", &c.released)
}

type program struct {
	rt       *Runtime
	device   *Device
	source   string
	built    bool
	released bool
}

func (p *program) Build(options string) error {
	if err := p.rt.call("Build"); err != nil {
		return err
	}
	if p.rt.BuildLog != "" {
		return &compute.BuildError{Device: p.device.name, Log: p.rt.BuildLog}
	}
	p.built = true
	return nil
}

func (p *program) CreateKernel(name string) (compute.Kernel, error) {
	if err := p.rt.call("CreateKernel"); err != nil {
		return nil, err
	}
	if !p.built {
		return nil, errors.New("program not built")
	}
	fn, ok := p.rt.Kernels[name]
	if !ok || !strings.Contains(p.source, name) {
		return nil, fmt.Errorf("kernel %q not found in program", name)
	}
	p.rt.acquire()
	return &kernel{rt: p.rt, name: name, fn: fn}, nil
}

func (p *program) Release() {
	p.rt.release("Program", &p.released)
}

type kernel struct {
	rt       *Runtime
	name     string
	fn       KernelFunc
	args     []*buffer
	released bool
}

func (k *kernel) Name() string { return k.name }

func (k *kernel) SetArgs(args ...compute.Buffer) error {
	if err := k.rt.call("SetArgs"); err != nil {
		return err
	}
	k.args = k.args[:0]
	for i, a := range args {
		b, ok := a.(*buffer)
		if !ok {
			return fmt.Errorf("argument %d: foreign buffer type %T", i, a)
		}
		k.args = append(k.args, b)
	}
	return nil
}

func (k *kernel) Release() {
	k.rt.release("Kernel", &k.released)
}

type buffer struct {
	rt       *Runtime
	data     []int32
	released bool
}

func (b *buffer) Size() int { return len(b.data) * 4 }

func (b *buffer) Release() {
	b.rt.release("Buffer", &b.released)
}

type queue struct {
	rt       *Runtime
	released bool
}

func (q *queue) check(b compute.Buffer) (*buffer, error) {
	buf, ok := b.(*buffer)
	if !ok {
		return nil, fmt.Errorf("foreign buffer type %T", b)
	}
	if buf.released {
		q.rt.errs = append(q.rt.errs, errors.New("buffer used after release"))
		return nil, errors.New("buffer released")
	}
	return buf, nil
}

func (q *queue) WriteInt32s(b compute.Buffer, src []int32) error {
	if err := q.rt.call("WriteInt32s"); err != nil {
		return err
	}
	buf, err := q.check(b)
	if err != nil {
		return err
	}
	if len(src) > len(buf.data) {
		return fmt.Errorf("write of %d values overflows buffer of %d",
			len(src), len(buf.data))
	}
	copy(buf.data, src)
	return nil
}

func (q *queue) ReadInt32s(b compute.Buffer, dst []int32) error {
	if err := q.rt.call("ReadInt32s"); err != nil {
		return err
	}
	buf, err := q.check(b)
	if err != nil {
		return err
	}
	if len(dst) > len(buf.data) {
		return fmt.Errorf("read of %d values overflows buffer of %d",
			len(dst), len(buf.data))
	}
	copy(dst, buf.data)
	return nil
}

func (q *queue) Dispatch(k compute.Kernel, globalSize int) error {
	if err := q.rt.call("Dispatch"); err != nil {
		return err
	}
	kern, ok := k.(*kernel)
	if !ok {
		return fmt.Errorf("foreign kernel type %T", k)
	}
	args := make([][]int32, 0, len(kern.args))
	for _, b := range kern.args {
		buf, err := q.check(b)
		if err != nil {
			return err
		}
		if globalSize > len(buf.data) {
			return fmt.Errorf("global size %d exceeds buffer of %d",
				globalSize, len(buf.data))
		}
		args = append(args, buf.data)
	}
	kern.fn(globalSize, args)
	return nil
}

func (q *queue) Release() {
	q.rt.release("Queue", &q.released)
}
