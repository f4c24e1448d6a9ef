// Package occa adapts an OCCA device to the runner's compute contracts.
// OCCA compiles kernels straight from source and exposes neither program
// binaries nor kernel work-group queries, so this backend serves the
// source-compile path and CPU-class modes; the vendor binary path reports
// itself unsupported and setup falls back as documented.
package occa

import (
	"errors"
	"fmt"

	"github.com/notargets/gocca"

	"github.com/milkywayathome/sepcl/device"
	"github.com/milkywayathome/sepcl/runner"
)

// Backend implements runner.Backend on top of a gocca device.
type Backend struct {
	dev  *gocca.OCCADevice
	info *device.Info
}

// New creates a backend from OCCA device properties JSON and the capability
// snapshot of the underlying device.
func New(props string, info *device.Info) (*Backend, error) {
	dev, err := gocca.NewDevice(props)
	if err != nil {
		return nil, &runner.SetupError{Err: fmt.Errorf("creating OCCA device %s: %w", props, err)}
	}
	return &Backend{dev: dev, info: info}, nil
}

// PreferredBackend tries parallel OCCA modes before falling back to Serial.
func PreferredBackend(info *device.Info) (*Backend, error) {
	modes := []string{
		`{"mode": "OpenMP"}`,
		`{"mode": "CUDA", "device_id": 0}`,
		`{"mode": "Serial"}`,
	}

	for _, props := range modes {
		be, err := New(props, info)
		if err == nil {
			return be, nil
		}
	}

	return nil, &runner.SetupError{Err: errors.New("no usable OCCA backend")}
}

// Mode reports the OCCA mode of the underlying device.
func (b *Backend) Mode() string { return b.dev.Mode() }

func (b *Backend) Device() *device.Info { return b.info }

// CompileSource returns a program handle. OCCA defers compilation to kernel
// creation, so compile errors surface from CreateKernel.
func (b *Backend) CompileSource(source, flags string) (runner.Program, error) {
	return &program{be: b, source: source, flags: flags}, nil
}

func (b *Backend) LoadBinary([]byte) (runner.Program, error) {
	return nil, fmt.Errorf("OCCA backend: %w", runner.ErrBinaryUnsupported)
}

// Close releases the OCCA device.
func (b *Backend) Close() {
	b.dev.Free()
}

type program struct {
	be     *Backend
	source string
	flags  string
}

func (p *program) Binary() ([]byte, error) {
	return nil, runner.ErrBinaryUnsupported
}

func (p *program) CreateKernel(name string) (runner.Kernel, error) {
	var k *gocca.OCCAKernel
	var err error

	if p.flags != "" {
		props := gocca.JsonParse(fmt.Sprintf(`{"compiler_flags": %q}`, p.flags))
		defer props.Free()
		k, err = p.be.dev.BuildKernelFromString(p.source, name, props)
	} else {
		k, err = p.be.dev.BuildKernelFromString(p.source, name, nil)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to build kernel %s: %w", name, err)
	}
	if k == nil {
		return nil, fmt.Errorf("kernel build returned nil for %s", name)
	}

	return &kernel{k: k, info: p.be.info}, nil
}

// Release is a no-op: OCCA ties compiled artifacts to kernels, not programs.
func (p *program) Release() error { return nil }

type kernel struct {
	k    *gocca.OCCAKernel
	info *device.Info
	args []any
}

func (k *kernel) WorkGroupInfo() (device.WorkGroupInfo, error) {
	// OCCA exposes no kernel work-group query. CPU-class modes never need
	// one; anything else must come from a backend that can answer.
	if k.info != nil && k.info.IsCPU() {
		return device.WorkGroupInfo{WorkGroupSize: 1}, nil
	}
	return device.WorkGroupInfo{}, errors.New("work group info not exposed by OCCA")
}

// SetArg stages a positional argument. OCCA only accepts arguments at launch,
// so staged values are applied by Run.
func (k *kernel) SetArg(index int, value any) error {
	if index < 0 {
		return fmt.Errorf("negative argument index %d", index)
	}
	for len(k.args) <= index {
		k.args = append(k.args, nil)
	}
	k.args[index] = value
	return nil
}

// Run dispatches the kernel with the staged arguments.
func (k *kernel) Run() error {
	return k.k.RunWithArgs(k.args...)
}

func (k *kernel) Release() error {
	k.k.Free()
	return nil
}
