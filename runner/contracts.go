// Package runner orchestrates device setup for the separation kernel: the
// admission check, program compilation with the optional vendor binary
// substitution path, kernel creation, and argument binding. The compute API
// itself is consumed through the narrow contracts below, never reimplemented.
package runner

import (
	"errors"

	"github.com/milkywayathome/sepcl/device"
	"github.com/milkywayathome/sepcl/params"
)

// ErrBinaryUnsupported is returned by Program.Binary on backends that cannot
// extract a compiled binary. The IL path treats it as "not applicable".
var ErrBinaryUnsupported = errors.New("program binary extraction not supported")

// Backend is the device/context provider plus the program compile service.
// CompileSource must be idempotent: recompiling with identical inputs yields
// an equivalent program.
type Backend interface {
	Device() *device.Info
	CompileSource(source, flags string) (Program, error)
	LoadBinary(bin []byte) (Program, error)
}

// Program is one compiled program handle.
type Program interface {
	// Binary extracts the compiled binary, or fails with
	// ErrBinaryUnsupported where the backend cannot provide one.
	Binary() ([]byte, error)

	CreateKernel(name string) (Kernel, error)
	Release() error
}

// Kernel is one ready-to-dispatch kernel handle.
type Kernel interface {
	WorkGroupInfo() (device.WorkGroupInfo, error)
	SetArg(index int, value any) error
	Release() error
}

// BinaryPatcher is the vendor-specific binary transform. A nil result with a
// nil error means "not applicable", which is expected, not exceptional.
type BinaryPatcher interface {
	Patch(bin []byte, nStreams int, target device.CALTarget) ([]byte, error)
}

// FlagAssembler builds the compiler flag string for a device and workload.
type FlagAssembler interface {
	CompilerFlags(di *device.Info, ap *params.AstronomyParameters, useILKernel bool) (string, error)
}
