package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/milkywayathome/sepcl/device"
	"github.com/milkywayathome/sepcl/logutil"
	"github.com/milkywayathome/sepcl/params"
	"github.com/milkywayathome/sepcl/planner"
)

var (
	planDev deviceFlags

	rSteps  uint64
	muSteps uint64
	nuSteps uint64

	streams  int
	convolve int
	auxBG    bool

	targetFreq    float64
	magicFactor   int
	nonResponsive bool

	workGroupSize uint64
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute the chunked dispatch plan for one integration cut",
	RunE:  runPlan,
}

func init() {
	planDev.register(planCmd)

	fl := planCmd.Flags()
	fl.Uint64Var(&rSteps, "r-steps", 700, "Radius steps")
	fl.Uint64Var(&muSteps, "mu-steps", 800, "Mu steps")
	fl.Uint64Var(&nuSteps, "nu-steps", 320, "Nu steps")

	fl.IntVar(&streams, "streams", 3, "Number of streams")
	fl.IntVar(&convolve, "convolve", 120, "Convolution depth")
	fl.BoolVar(&auxBG, "aux-profile", false, "Auxiliary background profile")

	fl.Float64Var(&targetFreq, "target-frequency", 60, "Desired chunk dispatch rate in Hz")
	fl.IntVar(&magicFactor, "magic-factor", 0, "Chunk sizing override; 0 derives one")
	fl.BoolVar(&nonResponsive, "non-responsive", false, "Force a single chunk")

	fl.Uint64Var(&workGroupSize, "workgroup-size", 256, "Kernel-reported max work group size")

	rootCmd.AddCommand(planCmd)
}

// staticWorkGroupInfo stands in for a compiled kernel when planning from a
// snapshot instead of a live device.
type staticWorkGroupInfo struct {
	wgi device.WorkGroupInfo
}

func (s staticWorkGroupInfo) WorkGroupInfo() (device.WorkGroupInfo, error) {
	return s.wgi, nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	di, err := planDev.info()
	if err != nil {
		return err
	}

	ap := &params.AstronomyParameters{
		NumberStreams: streams,
		Convolve:      convolve,
		AuxBGProfile:  auxBG,
	}
	ia := &params.IntegralArea{NuSteps: nuSteps, MuSteps: muSteps, RSteps: rSteps}
	req := &params.Request{
		TargetFrequency: targetFreq,
		MagicFactor:     magicFactor,
		NonResponsive:   nonResponsive,
		Verbose:         verbose,
	}

	kern := staticWorkGroupInfo{wgi: device.WorkGroupInfo{WorkGroupSize: workGroupSize}}

	sizes, err := planner.FindRunSizes(logutil.GetLogger(), di, ap, ia, req, kern)
	if err != nil {
		return err
	}

	fmt.Printf("Range:          { nu_steps = %d, mu_steps = %d, r_steps = %d }\n", sizes.Nu, sizes.Mu, sizes.R)
	fmt.Printf("Iteration area: %d\n", sizes.Area)
	fmt.Printf("Chunk estimate: %d\n", sizes.NChunkEstimate)
	fmt.Printf("Num chunks:     %d\n", sizes.NChunk)
	fmt.Printf("Chunk size:     %d\n", sizes.ChunkSize)
	fmt.Printf("Added area:     %d\n", sizes.Extra)
	fmt.Printf("Effective area: %d\n", sizes.EffectiveArea)
	fmt.Printf("Local size:     %d\n", sizes.Local[0])
	fmt.Printf("Global size:    %d\n", sizes.Global[0])

	return nil
}
