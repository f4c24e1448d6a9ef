// Package admission decides whether a device can run a separation workunit
// at all: it derives the buffer sizes each integration cut needs and checks
// them against the device's memory limits.
package admission

import "github.com/milkywayathome/sepcl/params"

// Byte sizes of the kernel-side types, double precision layout. A float
// build would retune these in one place.
const (
	realBytes = 8

	// r point: convolution point plus quadrature weight.
	rPointBytes = 2 * realBytes

	// r constants: gPrime and irv per r step.
	rConstBytes = 2 * realBytes

	// l trig pair: lsin, lcos per (nu, mu) cell.
	lTrigPairBytes = 2 * realBytes

	// Stream constants block per stream: direction, position vectors and
	// the sigma terms.
	streamConstBytes = 6 * realBytes

	// Fixed parameter blocks as laid out for the kernel.
	apBlockBytes = 56 * realBytes
	iaBlockBytes = 8 * realBytes
)

// SeparationSizes is the per-cut table of required byte sizes for each
// buffer class the kernel binds. Recomputed for every integration cut.
type SeparationSizes struct {
	// Output buffers.
	OutBg      uint64
	OutStreams uint64

	// __constant buffers.
	Ap   uint64
	Ia   uint64
	Sc   uint64
	SgDx uint64

	// Read-only global buffers.
	RPts  uint64
	Rc    uint64
	LTrig uint64
	BSin  uint64
}

// CalculateSizes derives the buffer sizes one integration cut requires.
func CalculateSizes(ap *params.AstronomyParameters, ia *params.IntegralArea) *SeparationSizes {
	nStream := uint64(ap.NumberStreams)
	convolve := uint64(ap.Convolve)
	muR := ia.MuSteps * ia.RSteps
	nuMu := ia.NuSteps * ia.MuSteps

	return &SeparationSizes{
		OutBg:      realBytes * muR,
		OutStreams: realBytes * muR * nStream,

		Ap:   apBlockBytes,
		Ia:   iaBlockBytes,
		Sc:   streamConstBytes * nStream,
		SgDx: realBytes * convolve,

		RPts:  rPointBytes * ia.RSteps * convolve,
		Rc:    rConstBytes * ia.RSteps,
		LTrig: lTrigPairBytes * nuMu,
		BSin:  realBytes * nuMu,
	}
}
