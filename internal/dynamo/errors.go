package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for vector, series and solver operations.
var (
	// ErrDimensionMismatch indicates operands or fields of different dimension.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")

	// ErrIndexOutOfBounds indicates a positional or value-derived index outside [0, n).
	ErrIndexOutOfBounds = errors.New("dynamo: index out of bounds")

	// ErrEmptySeries indicates an initial or terminal value requested on a zero-length series.
	ErrEmptySeries = errors.New("dynamo: empty series")

	// ErrUnboundSlot indicates a field evaluated with a missing function.
	ErrUnboundSlot = errors.New("dynamo: unbound field slot")

	// ErrInvalidSampleCount indicates a sample count too small to build a grid.
	ErrInvalidSampleCount = errors.New("dynamo: invalid sample count")

	// ErrInvalidInterval indicates t0 >= tN.
	ErrInvalidInterval = errors.New("dynamo: invalid interval")

	// ErrNoIndependentVariable indicates a lookup by value without a linear grid.
	ErrNoIndependentVariable = errors.New("dynamo: no linear independent variable")

	// ErrSealed indicates a write after the fill phase ended.
	ErrSealed = errors.New("dynamo: series is sealed")

	// ErrCanceled indicates the solve was interrupted and its output discarded.
	ErrCanceled = errors.New("dynamo: solve canceled by context")

	// ErrUnknownIntegrator indicates an integrator name with no registration.
	ErrUnknownIntegrator = errors.New("dynamo: unknown integrator")
)

// StepError wraps an error with integration context.
type StepError struct {
	Step    int
	Time    float32
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
