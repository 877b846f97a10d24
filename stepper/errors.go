package stepper

import "github.com/sarelg/Computational-Physics/internal/dynamo"

// Failure taxonomy. Match with errors.Is.
var (
	ErrInvalidShape    = dynamo.ErrInvalidShape
	ErrInvalidArgument = dynamo.ErrInvalidArgument
	ErrSingularity     = dynamo.ErrSingularity
	ErrNonConvergence  = dynamo.ErrNonConvergence
)

// StepError reports the integrator sub-step a failure happened on.
type StepError = dynamo.StepError
