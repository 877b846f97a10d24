package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for state stepping. Callers match them with errors.Is.
var (
	// ErrInvalidShape indicates a state vector whose length does not match the model layout.
	ErrInvalidShape = errors.New("dynamo: state length does not match model shape")

	// ErrInvalidArgument indicates a non-positive dt, malformed parameters or a non-finite state.
	ErrInvalidArgument = errors.New("dynamo: invalid argument")

	// ErrSingularity indicates two gravitating bodies at the same position.
	ErrSingularity = errors.New("dynamo: coincident bodies")

	// ErrNonConvergence indicates the adaptive integration could not reach the
	// end of the interval: the step underflowed or the step budget ran out.
	ErrNonConvergence = errors.New("dynamo: adaptive integration did not converge")
)

// StepError wraps an integration failure with the sub-step it happened on.
type StepError struct {
	Step    int
	Time    float64
	H       float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%g, h=%g): %v", e.Step, e.Time, e.H, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
