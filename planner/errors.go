package planner

import (
	"errors"
	"fmt"
)

// ErrInvariant marks internal planning defects, as opposed to bad user input
// or device limitations. An effective area smaller than the requested area,
// or a doubling loop that fails to shrink the chunk, are planner bugs.
var ErrInvariant = errors.New("run size planning invariant violated")

// ConfigError reports user-supplied run configuration the planner cannot
// honor.
type ConfigError struct {
	Field string
	Value int64
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %d: must be >= 0", e.Field, e.Value)
}

// QueryError reports failed device or kernel introspection.
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("device introspection failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// AlignmentError reports a kernel whose work-group size is not a multiple of
// the device warp size. Occupancy cannot be reasoned about for such kernels.
type AlignmentError struct {
	WorkGroupSize uint64
	WarpSize      uint32
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("kernel work group size (%d) not a multiple of warp size (%d)",
		e.WorkGroupSize, e.WarpSize)
}

// UnsupportedSizeError reports a workload the oversize correction cannot
// service: after doubling, the chunk no longer divides evenly by the local
// dispatch size. Known limitation of the alignment handling, not a defect.
type UnsupportedSizeError struct {
	ChunkSize uint64
	Local     uint64
}

func (e *UnsupportedSizeError) Error() string {
	return fmt.Sprintf("chunk size %d not divisible by local size %d: workunit too large for current alignment handling",
		e.ChunkSize, e.Local)
}
