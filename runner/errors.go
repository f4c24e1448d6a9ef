package runner

import "fmt"

// SetupError reports a failure acquiring the device or context.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("device setup failed: %v", e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// CompileError reports a failed program compilation or kernel creation.
type CompileError struct {
	Stage string
	Err   error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiling %s: %v", e.Stage, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// BindError aggregates every argument bind that failed. Binding does not
// roll back partially applied arguments.
type BindError struct {
	Err error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("kernel argument binding failed: %v", e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }
