package runner

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/milkywayathome/sepcl/device"
	"github.com/milkywayathome/sepcl/params"
	"github.com/milkywayathome/sepcl/planner"
)

// Session owns the compiled program and kernel for one device. Created by
// Setup, released exactly once by Close. Each device in a multi-device host
// gets its own independent session; nothing is shared between them.
type Session struct {
	log     *zap.Logger
	backend Backend
	di      *device.Info
	ap      *params.AstronomyParameters
	prog    Program
	kernel  Kernel
	closed  bool
}

func (s *Session) Device() *device.Info { return s.di }

// Kernel returns the ready-to-dispatch kernel handle.
func (s *Session) Kernel() Kernel { return s.kernel }

// PlanRunSizes computes the dispatch plan for one integration cut using the
// session's compiled kernel.
func (s *Session) PlanRunSizes(ia *params.IntegralArea, req *params.Request) (*planner.RunSizes, error) {
	return planner.FindRunSizes(s.log, s.di, s.ap, ia, req, s.kernel)
}

// Close releases the kernel and program. Safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs error
	if s.kernel != nil {
		errs = multierr.Append(errs, s.kernel.Release())
	}
	if s.prog != nil {
		errs = multierr.Append(errs, s.prog.Release())
	}
	return errs
}
