package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/milkywayathome/sepcl/device"
)

// deviceFlags collects the capability snapshot of the target device. In a
// real host these come from the compute-API provider; here they are supplied
// on the command line.
type deviceFlags struct {
	name      string
	vendor    string
	class     string
	calTarget string

	warpSize     uint32
	computeUnits uint32
	maxConstArgs uint32
	workItems    []int64

	globalMem   uint64
	maxAlloc    uint64
	maxConstBuf uint64

	gflops  float64
	doubles bool

	nonOutput bool
	offline   bool

	computeCapMajor int
	computeCapMinor int
}

func (f *deviceFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()

	fl.StringVar(&f.name, "device-name", "synthetic", "Device name")
	fl.StringVar(&f.vendor, "vendor", "", "Device vendor string")
	fl.StringVar(&f.class, "class", "gpu", "Device class: cpu or gpu")
	fl.StringVar(&f.calTarget, "cal-target", "", "AMD CAL target: rv770, cypress or cayman")

	fl.Uint32Var(&f.warpSize, "warp-size", 32, "Warp/wavefront size")
	fl.Uint32Var(&f.computeUnits, "compute-units", 20, "Max compute units")
	fl.Uint32Var(&f.maxConstArgs, "max-const-args", 8, "Max constant kernel arguments")
	fl.Int64SliceVar(&f.workItems, "max-work-items", []int64{1 << 20, 1 << 16, 1 << 16}, "Per-dimension max work-item sizes")

	fl.Uint64Var(&f.globalMem, "global-mem", 1<<30, "Total device memory in bytes")
	fl.Uint64Var(&f.maxAlloc, "max-alloc", 1<<28, "Max single allocation in bytes")
	fl.Uint64Var(&f.maxConstBuf, "max-const-buf", 1<<16, "Max constant buffer size in bytes")

	fl.Float64Var(&f.gflops, "gflops", 100, "Estimated peak double-precision GFLOPs")
	fl.BoolVar(&f.doubles, "doubles", true, "Device supports double precision")

	fl.BoolVar(&f.nonOutput, "non-output", false, "Device drives no display")
	fl.BoolVar(&f.offline, "offline-devices", false, "Platform supports offline device compilation")

	fl.IntVar(&f.computeCapMajor, "compute-cap-major", 0, "CUDA compute capability, major")
	fl.IntVar(&f.computeCapMinor, "compute-cap-minor", 0, "CUDA compute capability, minor")
}

func (f *deviceFlags) info() (*device.Info, error) {
	di := &device.Info{
		Name:   f.name,
		Vendor: f.vendor,

		WarpSize:        f.warpSize,
		MaxComputeUnits: f.computeUnits,
		MaxConstArgs:    f.maxConstArgs,

		GlobalMemSize:   f.globalMem,
		MaxMemAlloc:     f.maxAlloc,
		MaxConstBufSize: f.maxConstBuf,

		DoubleSupport:          f.doubles,
		NonOutput:              f.nonOutput,
		PlatformOfflineDevices: f.offline,

		ComputeCapMajor: f.computeCapMajor,
		ComputeCapMinor: f.computeCapMinor,

		EstimatedGFLOPs: f.gflops,
	}

	switch f.class {
	case "cpu":
		di.Class = device.ClassCPU
	case "gpu":
		di.Class = device.ClassAccelerator
	default:
		return nil, fmt.Errorf("unknown device class %q", f.class)
	}

	switch f.calTarget {
	case "":
		di.CALTarget = device.TargetUnknown
	case "rv770":
		di.CALTarget = device.TargetRV770
	case "cypress":
		di.CALTarget = device.TargetCypress
	case "cayman":
		di.CALTarget = device.TargetCayman
	default:
		return nil, fmt.Errorf("unknown CAL target %q", f.calTarget)
	}

	if len(f.workItems) != 3 {
		return nil, fmt.Errorf("--max-work-items needs 3 values, got %d", len(f.workItems))
	}
	for i, v := range f.workItems {
		if v <= 0 {
			return nil, fmt.Errorf("--max-work-items[%d] must be positive, got %d", i, v)
		}
		di.MaxWorkItemSizes[i] = uint64(v)
	}

	return di, nil
}
