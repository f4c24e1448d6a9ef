package runner

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/milkywayathome/sepcl/admission"
	"github.com/milkywayathome/sepcl/device"
	"github.com/milkywayathome/sepcl/params"
)

// DefaultKernelName is the entry point of the separation probabilities
// kernel.
const DefaultKernelName = "probabilities"

// Supporting more streams or the aux profile in the hand-patched IL is too
// much work.
const maxILKernelStreams = 4

// Options configures Setup with the kernel source and the optional external
// collaborators.
type Options struct {
	Source     string
	KernelName string

	// Flags assembles compiler flags; nil compiles with none.
	Flags FlagAssembler

	// Patcher enables the vendor binary substitution path; nil disables it.
	Patcher BinaryPatcher
}

// useILKernel decides whether the vendor binary substitution path is worth
// attempting for this device and workload.
func useILKernel(di *device.Info, ap *params.AstronomyParameters, req *params.Request, opts *Options) bool {
	if !params.DoublePrec {
		return false
	}
	if req.ForceNoILKernel || opts.Patcher == nil {
		return false
	}
	if ap.NumberStreams > maxILKernelStreams || ap.AuxBGProfile {
		return false
	}
	return di.IsAMDGPU() && di.CALTarget.ILKernelTarget() && di.PlatformOfflineDevices
}

// swapILProgram attempts the vendor path: extract the compiled binary, patch
// it for the stream count and target, and reload. The source program is left
// untouched so the caller can fall back to it.
func swapILProgram(backend Backend, prog Program, patcher BinaryPatcher,
	ap *params.AstronomyParameters, di *device.Info) (Program, error) {

	bin, err := prog.Binary()
	if err != nil {
		return nil, fmt.Errorf("extracting program binary: %w", err)
	}
	if bin == nil {
		return nil, errors.New("program binary unavailable")
	}

	mod, err := patcher.Patch(bin, ap.NumberStreams, di.CALTarget)
	if err != nil {
		return nil, fmt.Errorf("patching binary: %w", err)
	}
	if mod == nil {
		return nil, errors.New("binary patch not applicable")
	}

	patched, err := backend.LoadBinary(mod)
	if err != nil {
		return nil, fmt.Errorf("loading patched binary: %w", err)
	}
	return patched, nil
}

// Setup runs the whole device setup pass: admission check, compile, the
// best-effort vendor binary substitution, and kernel creation. The returned
// session owns the kernel handle until Close.
//
// The vendor path never downgrades a working build: any failure along
// extract/patch/reload is logged and the source-compiled program is kept.
func Setup(log *zap.Logger, backend Backend, ap *params.AstronomyParameters,
	areas []params.IntegralArea, req *params.Request, opts Options) (*Session, error) {

	if log == nil {
		log = zap.NewNop()
	}

	di := backend.Device()
	if di == nil {
		return nil, &SetupError{Err: errors.New("backend reports no device")}
	}

	if err := admission.CheckDeviceCapabilities(di, ap, areas); err != nil {
		return nil, fmt.Errorf("device failed capability check: %w", err)
	}

	useIL := useILKernel(di, ap, req, &opts)

	var flags string
	if opts.Flags != nil {
		var err error
		flags, err = opts.Flags.CompilerFlags(di, ap, useIL)
		if err != nil {
			return nil, fmt.Errorf("assembling compiler flags: %w", err)
		}
	}
	if req.Verbose {
		log.Info("compiler flags", zap.String("flags", flags))
	}

	prog, err := backend.CompileSource(opts.Source, flags)
	if err != nil {
		return nil, &CompileError{Stage: "source program", Err: err}
	}

	if useIL {
		log.Info("attempting vendor IL kernel", zap.Stringer("target", di.CALTarget))
		patched, perr := swapILProgram(backend, prog, opts.Patcher, ap, di)
		if perr != nil {
			log.Warn("failed to create IL kernel, falling back to source kernel", zap.Error(perr))
		} else {
			_ = prog.Release()
			prog = patched
		}
	}

	name := opts.KernelName
	if name == "" {
		name = DefaultKernelName
	}

	kern, err := prog.CreateKernel(name)
	if err != nil {
		_ = prog.Release()
		return nil, &CompileError{Stage: "kernel " + name, Err: err}
	}

	return &Session{
		log:     log,
		backend: backend,
		di:      di,
		ap:      ap,
		prog:    prog,
		kernel:  kern,
	}, nil
}
