// Package params holds the run configuration for one separation workunit:
// the astronomy parameters shared by all integration cuts, the per-cut
// integral areas, and the externally parsed run request. Everything here is
// supplied once per run and read-only afterward.
package params

import "errors"

// DoublePrec mirrors the precision the kernel sources are built with. The
// admission checker and the vendor IL path both key off it.
const DoublePrec = true

// ErrAreaOverflow is returned when r_steps * mu_steps does not fit in the
// unsigned arithmetic width used for work-item counts.
var ErrAreaOverflow = errors.New("integral area overflows uint64")

// AstronomyParameters describes the workload shape shared by every
// integration cut of a workunit.
type AstronomyParameters struct {
	NumberStreams int
	Convolve      int

	// AuxBGProfile enables the auxiliary background profile, which adds a
	// fixed per-item cost in the kernel.
	AuxBGProfile bool
}

// IntegralArea is the iteration space of one integration cut.
type IntegralArea struct {
	NuSteps uint64
	MuSteps uint64
	RSteps  uint64
}

// Area returns the total number of work items, r_steps * mu_steps.
// The nu dimension is iterated on the host, not dispatched.
func (ia *IntegralArea) Area() (uint64, error) {
	if ia.MuSteps != 0 && ia.RSteps > ^uint64(0)/ia.MuSteps {
		return 0, ErrAreaOverflow
	}
	return ia.RSteps * ia.MuSteps, nil
}

// Request is the already-parsed run configuration. Flag parsing lives in the
// CLI; the core only ever sees this struct.
type Request struct {
	// TargetFrequency is the desired chunk dispatch rate in Hz. Higher values
	// demand finer chunking to keep a shared device responsive.
	TargetFrequency float64

	// MagicFactor overrides the derived block-size multiplier when positive.
	// Zero selects the hardware-derived default; negative values are rejected.
	MagicFactor int

	// NonResponsive forces the whole area into a single chunk.
	NonResponsive bool

	Verbose bool

	// ForceNoILKernel disables the vendor binary substitution path.
	ForceNoILKernel bool
}
