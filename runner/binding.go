package runner

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/milkywayathome/sepcl/planner"
)

// SeparationMem holds the opaque device buffer handles for one integration
// cut, in the buffer classes the kernel expects.
type SeparationMem struct {
	// Output buffers.
	OutBg      any
	OutStreams any

	// Read-only global buffers.
	Rc    any
	RPts  any
	LTrig any
	BSin  any

	// __constant buffers.
	Ap   any
	Sc   any
	SgDx any
}

// BindConstantArgs binds the arguments that stay fixed for the life of one
// plan, in the kernel's positional order. The double-buffered per-dispatch
// output handles are rebound by the caller on every dispatch, not here.
// All bind failures are reported together; nothing is rolled back.
func (s *Session) BindConstantArgs(mem *SeparationMem, sizes *planner.RunSizes) error {
	args := []any{
		mem.OutBg,
		mem.OutStreams,

		mem.Rc,
		mem.RPts,
		mem.LTrig,
		mem.BSin,

		mem.Ap,
		mem.Sc,
		mem.SgDx,

		uint32(sizes.Extra),
		uint32(sizes.R),
		uint32(sizes.Mu),
		uint32(sizes.Nu),
	}

	var errs error
	for i, a := range args {
		if err := s.kernel.SetArg(i, a); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("argument %d: %w", i, err))
		}
	}
	if errs != nil {
		return &BindError{Err: errs}
	}
	return nil
}
