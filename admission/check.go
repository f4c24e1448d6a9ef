package admission

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/milkywayathome/sepcl/device"
	"github.com/milkywayathome/sepcl/params"
)

// The kernel binds this many __constant buffer arguments.
const numConstBufArgs = 5

// MemoryLimitError reports one device limit exceeded by one buffer or
// aggregate, with both the measured and the limit values.
type MemoryLimitError struct {
	Limit     string
	Buffer    string
	Required  uint64
	Available uint64
}

func (e *MemoryLimitError) Error() string {
	return fmt.Sprintf("%s: %s requires %d, limit is %d",
		e.Limit, e.Buffer, e.Required, e.Available)
}

// CapabilityError reports a device feature the build configuration requires
// but the device lacks.
type CapabilityError struct {
	Feature string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("device does not support %s", e.Feature)
}

// CutError wraps a per-cut admission failure with the failing cut's index.
type CutError struct {
	Cut int
	Err error
}

func (e *CutError) Error() string {
	return fmt.Sprintf("capability check failed for cut %d: %v", e.Cut, e.Err)
}

func (e *CutError) Unwrap() error { return e.Err }

// CheckDeviceMemory validates one cut's buffer sizes against the device
// limits. Every limit is checked independently; all violations are reported
// together.
func CheckDeviceMemory(di *device.Info, sizes *SeparationSizes) error {
	totalOut := sizes.OutBg + sizes.OutStreams
	totalConstBuf := sizes.Ap + sizes.Ia + sizes.Sc + sizes.SgDx
	totalGlobalConst := sizes.LTrig + sizes.BSin + sizes.RPts + sizes.Rc
	totalMem := totalOut + totalConstBuf + totalGlobalConst

	var errs error

	if totalMem > di.GlobalMemSize {
		errs = multierr.Append(errs, &MemoryLimitError{
			Limit: "global memory", Buffer: "all buffers",
			Required: totalMem, Available: di.GlobalMemSize,
		})
	}

	if totalOut > di.GlobalMemSize {
		errs = multierr.Append(errs, &MemoryLimitError{
			Limit: "global memory", Buffer: "output buffers",
			Required: totalOut, Available: di.GlobalMemSize,
		})
	}

	// Per-allocation limits. Some vendors allow far less per buffer than the
	// total memory suggests.
	singles := []struct {
		name string
		size uint64
	}{
		{"background output buffer", sizes.OutBg},
		{"stream output buffer", sizes.OutStreams},
		{"l trig buffer", sizes.LTrig},
		{"b sin buffer", sizes.BSin},
		{"r points buffer", sizes.RPts},
		{"r constants buffer", sizes.Rc},
	}
	for _, s := range singles {
		if s.size > di.MaxMemAlloc {
			errs = multierr.Append(errs, &MemoryLimitError{
				Limit: "max single allocation", Buffer: s.name,
				Required: s.size, Available: di.MaxMemAlloc,
			})
		}
	}

	if numConstBufArgs > di.MaxConstArgs {
		errs = multierr.Append(errs, &MemoryLimitError{
			Limit: "constant argument count", Buffer: "kernel constant arguments",
			Required: numConstBufArgs, Available: uint64(di.MaxConstArgs),
		})
	}

	if totalConstBuf > di.MaxConstBufSize {
		errs = multierr.Append(errs, &MemoryLimitError{
			Limit: "constant buffer size", Buffer: "constant buffers",
			Required: totalConstBuf, Available: di.MaxConstBufSize,
		})
	}

	return errs
}

// CheckDeviceCapabilities admits or rejects a device for a whole workunit.
// Admission is all-or-nothing: evaluation stops at the first integration cut
// that fails, and its index is reported.
func CheckDeviceCapabilities(di *device.Info, ap *params.AstronomyParameters,
	areas []params.IntegralArea) error {

	if params.DoublePrec && !di.DoubleSupport {
		return &CapabilityError{Feature: "double precision"}
	}

	for i := range areas {
		sizes := CalculateSizes(ap, &areas[i])
		if err := CheckDeviceMemory(di, sizes); err != nil {
			return &CutError{Cut: i, Err: err}
		}
	}

	return nil
}
