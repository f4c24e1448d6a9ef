// Package device models the capability snapshot of one compute device as
// reported by the compute-API provider. The snapshot is queried once at
// device acquisition and read-only afterward.
package device

import "strings"

// Class distinguishes CPU-like devices, which need no occupancy tuning, from
// throughput accelerators.
type Class int

const (
	ClassCPU Class = iota
	ClassAccelerator
)

func (c Class) String() string {
	switch c {
	case ClassCPU:
		return "CPU"
	case ClassAccelerator:
		return "accelerator"
	}
	return "unknown"
}

// CALTarget identifies the AMD CAL compilation target of a device, when the
// vendor reports one. Only a few targets have a patched IL kernel available.
type CALTarget int

const (
	TargetUnknown CALTarget = iota
	TargetRV770
	TargetCypress
	TargetCayman
)

func (t CALTarget) String() string {
	switch t {
	case TargetRV770:
		return "RV770"
	case TargetCypress:
		return "Cypress"
	case TargetCayman:
		return "Cayman"
	}
	return "unknown"
}

// ILKernelTarget reports whether a hand-patched IL kernel exists for this
// target.
func (t CALTarget) ILKernelTarget() bool {
	switch t {
	case TargetRV770, TargetCypress, TargetCayman:
		return true
	}
	return false
}

// Info is the immutable capability snapshot of one device.
type Info struct {
	Name   string
	Vendor string
	Class  Class

	WarpSize         uint32
	MaxComputeUnits  uint32
	MaxWorkItemSizes [3]uint64

	GlobalMemSize   uint64
	MaxMemAlloc     uint64
	MaxConstBufSize uint64
	MaxConstArgs    uint32

	DoubleSupport bool

	// NonOutput marks a device with no display attached. There is nothing to
	// keep responsive, so chunking for responsiveness is pointless.
	NonOutput bool

	CALTarget CALTarget

	// PlatformOfflineDevices reports whether the platform can compile for
	// devices it is not currently rendering to. Required by the IL path.
	PlatformOfflineDevices bool

	ComputeCapMajor int
	ComputeCapMinor int

	// EstimatedGFLOPs is the device's estimated peak double-precision
	// throughput, used only by the chunk-count heuristic.
	EstimatedGFLOPs float64
}

func (di *Info) IsCPU() bool {
	return di.Class == ClassCPU
}

// MaxWorkDim returns the largest 1D dispatch the device can address,
// assuming the per-dimension limits multiply out for a flattened range.
func (di *Info) MaxWorkDim() uint64 {
	return di.MaxWorkItemSizes[0] * di.MaxWorkItemSizes[1] * di.MaxWorkItemSizes[2]
}

func (di *Info) IsAMDGPU() bool {
	if di.IsCPU() {
		return false
	}
	return strings.Contains(di.Vendor, "Advanced Micro Devices") || strings.HasPrefix(di.Vendor, "AMD")
}

func (di *Info) ComputeCapabilityIs(major, minor int) bool {
	return di.ComputeCapMajor == major && di.ComputeCapMinor == minor
}

// WorkGroupInfo is queried from a compiled kernel for a specific device.
type WorkGroupInfo struct {
	// WorkGroupSize is the maximum work-group size the kernel supports on
	// this device.
	WorkGroupSize uint64

	CompileWorkGroupSize [3]uint64
	LocalMemSize         uint64
}

// EstimateIterTimeCUDA estimates the wall time of one nu step in
// milliseconds on an NVIDIA device. The architecture factors were measured
// against reference boards.
func EstimateIterTimeCUDA(di *Info, flopsPerIter, flops float64) float64 {
	devFactor := 1.53
	if di.ComputeCapabilityIs(1, 3) {
		devFactor = 1.87
	}
	return 1000.0 * devFactor * flopsPerIter / flops
}
