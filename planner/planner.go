// Package planner splits a separation integral area into right-sized chunks
// for one device. It owns the performance model, the divisibility and
// alignment arithmetic, and the iterative refinement under hardware limits.
package planner

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/milkywayathome/sepcl/device"
	"github.com/milkywayathome/sepcl/params"
)

// KernelInfo exposes the work-group introspection of an already-compiled
// kernel. Satisfied by runner kernels.
type KernelInfo interface {
	WorkGroupInfo() (device.WorkGroupInfo, error)
}

// RunSizes is the finalized dispatch plan for one integration cut. It is a
// value: computed once, consumed by the binder, never mutated afterward.
type RunSizes struct {
	R  uint64
	Mu uint64
	Nu uint64

	// Area is the true number of work items, r * mu.
	Area uint64

	// NChunkEstimate is the model-derived chunk target before hardware
	// snapping.
	NChunkEstimate uint64

	NChunk    uint64
	ChunkSize uint64

	// Extra is the padding added beyond Area so chunks divide evenly.
	Extra uint64

	// EffectiveArea = ChunkSize * NChunk, always >= Area.
	EffectiveArea uint64

	Local  [1]uint64
	Global [1]uint64
}

// Cap on the oversize doubling loop. Each doubling at least halves the
// chunk, so a 64-bit chunk size can never legitimately need more.
const maxChunkDoublings = 64

func divRoundUp(a, b uint64) uint64 {
	return (a + b - 1) / b
}

func divisible(a, b uint64) bool {
	return a%b == 0
}

// FindRunSizes computes the dispatch plan for one integration cut on the
// given device. kern must be the compiled kernel the plan will bind to; its
// work-group info drives the occupancy arithmetic.
func FindRunSizes(log *zap.Logger, di *device.Info, ap *params.AstronomyParameters,
	ia *params.IntegralArea, req *params.Request, kern KernelInfo) (*RunSizes, error) {

	if log == nil {
		log = zap.NewNop()
	}

	area, err := ia.Area()
	if err != nil {
		return nil, err
	}

	sizes := &RunSizes{
		R:    ia.RSteps,
		Mu:   ia.MuSteps,
		Nu:   ia.NuSteps,
		Area: area,
	}

	// CPU-class devices need no occupancy tuning: one chunk, one work item
	// per group.
	if di.IsCPU() {
		sizes.NChunkEstimate = 1
		sizes.NChunk = 1
		sizes.ChunkSize = area
		sizes.EffectiveArea = area
		sizes.Local[0] = 1
		sizes.Global[0] = area
		return sizes, nil
	}

	wgi, err := kern.WorkGroupInfo()
	if err != nil {
		return nil, &QueryError{Err: err}
	}

	if req.Verbose {
		log.Info("kernel work group info",
			zap.Uint64("workGroupSize", wgi.WorkGroupSize),
			zap.Uint64s("compileWorkGroupSize", wgi.CompileWorkGroupSize[:]),
			zap.Uint64("localMemSize", wgi.LocalMemSize))
	}

	warp := uint64(di.WarpSize)
	if warp == 0 || !divisible(wgi.WorkGroupSize, warp) {
		return nil, &AlignmentError{WorkGroupSize: wgi.WorkGroupSize, WarpSize: di.WarpSize}
	}

	// No work-group features are used, so the wavefront is the natural
	// work-group size.
	sizes.Local[0] = warp

	// Global sizes should be multiples of
	// (warps per group for good occupancy) * (warp size) * (compute units),
	// or performance falls off badly.
	nWavefrontPerCU := wgi.WorkGroupSize / warp
	blockSize := nWavefrontPerCU * warp * uint64(di.MaxComputeUnits)
	if blockSize == 0 {
		return nil, &QueryError{Err: fmt.Errorf("device reports %d compute units", di.MaxComputeUnits)}
	}

	sizes.NChunkEstimate = EstimateChunkCount(ap, ia, di, req)

	var magic uint64
	switch {
	case req.MagicFactor < 0:
		return nil, &ConfigError{Field: "magic factor", Value: int64(req.MagicFactor)}
	case req.MagicFactor == 0:
		//   m * b ~= area / n
		magic = area / (sizes.NChunkEstimate * blockSize)
		if magic == 0 {
			magic = 1
		}
	default:
		magic = uint64(req.MagicFactor)
	}
	sizes.ChunkSize = magic * blockSize

	forceOneChunk := req.NonResponsive || di.NonOutput

	sizes.EffectiveArea = sizes.ChunkSize * divRoundUp(area, sizes.ChunkSize)
	if forceOneChunk {
		sizes.NChunk = 1
	} else {
		sizes.NChunk = divRoundUp(sizes.EffectiveArea, sizes.ChunkSize)
	}

	// Magic factor too aggressive, a very small workunit, or non-responsive
	// mode. Resize as if the magic factor were exactly 1.
	if sizes.NChunk == 1 {
		sizes.EffectiveArea = blockSize * divRoundUp(area, blockSize)
		sizes.ChunkSize = sizes.EffectiveArea
	}

	log.Debug("chunk sizing",
		zap.Uint64("blockSize", blockSize),
		zap.Uint64("magicFactor", sizes.ChunkSize/blockSize))

	sizes.ChunkSize = sizes.EffectiveArea / sizes.NChunk

	// Memory admission normally rejects workunits this large before planning
	// ever sees them.
	maxWorkDim := di.MaxWorkDim()
	if sizes.ChunkSize > maxWorkDim {
		log.Warn("area too large for one chunk",
			zap.Uint64("chunkSize", sizes.ChunkSize),
			zap.Uint64("maxWorkDim", maxWorkDim))

		for n := 0; sizes.ChunkSize > maxWorkDim; n++ {
			if n >= maxChunkDoublings {
				return nil, fmt.Errorf("%w: oversize correction did not converge after %d doublings",
					ErrInvariant, maxChunkDoublings)
			}
			prev := sizes.ChunkSize
			sizes.NChunk *= 2
			sizes.ChunkSize = sizes.EffectiveArea / sizes.NChunk
			if sizes.ChunkSize >= prev {
				return nil, fmt.Errorf("%w: chunk size %d did not decrease from %d",
					ErrInvariant, sizes.ChunkSize, prev)
			}
		}

		if !divisible(sizes.ChunkSize, sizes.Local[0]) {
			return nil, &UnsupportedSizeError{ChunkSize: sizes.ChunkSize, Local: sizes.Local[0]}
		}
		if !divisible(sizes.ChunkSize, blockSize) {
			// Slower than it should be, but still correct.
			log.Warn("oversize-corrected chunk not a block size multiple",
				zap.Uint64("chunkSize", sizes.ChunkSize),
				zap.Uint64("blockSize", blockSize))
		}
	}

	sizes.Global[0] = sizes.ChunkSize

	if sizes.EffectiveArea < sizes.Area {
		return nil, fmt.Errorf("%w: effective area %d less than area %d",
			ErrInvariant, sizes.EffectiveArea, sizes.Area)
	}
	sizes.Extra = sizes.EffectiveArea - sizes.Area

	if req.Verbose {
		log.Info("run sizes",
			zap.Uint64("nuSteps", sizes.Nu),
			zap.Uint64("muSteps", sizes.Mu),
			zap.Uint64("rSteps", sizes.R),
			zap.Uint64("area", sizes.Area),
			zap.Uint64("chunkEstimate", sizes.NChunkEstimate),
			zap.Uint64("nChunk", sizes.NChunk),
			zap.Uint64("chunkSize", sizes.ChunkSize),
			zap.Uint64("addedArea", sizes.Extra),
			zap.Uint64("effectiveArea", sizes.EffectiveArea))
	}

	return sizes, nil
}
