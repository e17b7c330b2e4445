package dynamo

import "errors"

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with invalid dimensions or values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrIntegrationFailure indicates the solver produced a non-finite state.
	ErrIntegrationFailure = errors.New("dynamo: integration produced non-finite state")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrTooManySteps indicates the adaptive solver exceeded its step budget.
	ErrTooManySteps = errors.New("dynamo: adaptive solver exceeded step budget")

	// ErrInvalidAction indicates a discrete control action outside {0, 1, 2}.
	ErrInvalidAction = errors.New("dynamo: invalid action")

	// ErrDimensionMismatch indicates mismatched state/control dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return e.Wrapped.Error()
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
