package planner

import (
	"math"

	"github.com/milkywayathome/sepcl/device"
	"github.com/milkywayathome/sepcl/params"
)

// Fraction of a device's theoretical peak we expect to sustain.
const gpuEfficiencyEstimate = 0.95

// EstimateIterGFLOPs returns the estimated floating-point cost, in GFLOPs,
// of one nu iteration of a workunit: a closed-form per-item count from the
// stream count, the optional auxiliary background profile, and the
// convolution depth, scaled by the dispatched area.
func EstimateIterGFLOPs(ap *params.AstronomyParameters, ia *params.IntegralArea) float64 {
	perConvolve := uint64(32 + 68*ap.NumberStreams)
	if ap.AuxBGProfile {
		perConvolve += 8
	}

	perItem := perConvolve*uint64(ap.Convolve) + 1 + uint64(2*ap.NumberStreams)
	perIter := perItem * ia.MuSteps * ia.RSteps

	return 1.0e-9 * float64(perIter)
}

// EstimateChunkCount picks a target chunk count from the device throughput
// and the workunit cost, so that one chunk stays within the request's time
// budget. Heuristic only: the single guarantee is a positive result.
func EstimateChunkCount(ap *params.AstronomyParameters, ia *params.IntegralArea,
	di *device.Info, req *params.Request) uint64 {

	effGFLOPs := gpuEfficiencyEstimate * di.EstimatedGFLOPs
	if effGFLOPs <= 0 || req.TargetFrequency <= 0 {
		return 1
	}

	iterGFLOPs := EstimateIterGFLOPs(ap, ia)
	estIterTime := 1000.0 * iterGFLOPs / effGFLOPs // milliseconds
	timePerChunk := 1000.0 / req.TargetFrequency

	nChunk := estIterTime / timePerChunk
	if nChunk < 1 {
		return 1
	}
	if nChunk > float64(math.MaxUint32) {
		return math.MaxUint32
	}
	return uint64(nChunk)
}
