package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/milkywayathome/sepcl/device"
	"github.com/milkywayathome/sepcl/params"
)

func TestEstimateIterGFLOPs(t *testing.T) {
	ia := &params.IntegralArea{RSteps: 1000, MuSteps: 1000, NuSteps: 64}

	t.Run("BaseProfile", func(t *testing.T) {
		ap := &params.AstronomyParameters{NumberStreams: 3, Convolve: 120}

		// (32 + 68*3) * 120 + 1 + 2*3 = 28327 per item, over 10^6 items.
		got := EstimateIterGFLOPs(ap, ia)
		assert.InDelta(t, 28.327, got, 1e-9)
	})

	t.Run("AuxProfile", func(t *testing.T) {
		ap := &params.AstronomyParameters{NumberStreams: 3, Convolve: 120, AuxBGProfile: true}

		// The aux profile adds 8 per convolve step: 244*120 + 7 = 29287.
		got := EstimateIterGFLOPs(ap, ia)
		assert.InDelta(t, 29.287, got, 1e-9)
	})
}

func TestEstimateChunkCount(t *testing.T) {
	ap := &params.AstronomyParameters{NumberStreams: 3, Convolve: 120}
	ia := &params.IntegralArea{RSteps: 1000, MuSteps: 1000, NuSteps: 64}
	di := &device.Info{Class: device.ClassAccelerator, EstimatedGFLOPs: 100}

	t.Run("Exact", func(t *testing.T) {
		req := &params.Request{TargetFrequency: 60}

		// 28.327 GFLOP at 95 effective GFLOPs is ~298 ms; a 60 Hz budget is
		// ~16.7 ms per chunk.
		got := EstimateChunkCount(ap, ia, di, req)
		assert.Equal(t, uint64(17), got)
	})

	t.Run("FlooredAtOne", func(t *testing.T) {
		small := &params.IntegralArea{RSteps: 2, MuSteps: 2, NuSteps: 1}
		req := &params.Request{TargetFrequency: 1}
		assert.Equal(t, uint64(1), EstimateChunkCount(ap, small, di, req))
	})

	t.Run("NoThroughputEstimate", func(t *testing.T) {
		req := &params.Request{TargetFrequency: 60}
		zero := &device.Info{Class: device.ClassAccelerator}
		assert.Equal(t, uint64(1), EstimateChunkCount(ap, ia, zero, req))
	})

	t.Run("MonotoneInTargetFrequency", func(t *testing.T) {
		prev := uint64(0)
		for _, freq := range []float64{1, 5, 15, 30, 60, 120, 240} {
			req := &params.Request{TargetFrequency: freq}
			got := EstimateChunkCount(ap, ia, di, req)
			if got < prev {
				t.Fatalf("estimate decreased from %d to %d at %v Hz", prev, got, freq)
			}
			prev = got
		}
	})
}
