package solver

import (
	"errors"
	"fmt"
)

// ErrInfeasible means no 0/1 assignment satisfies every constraint. It is an
// expected outcome, not an engine failure.
var ErrInfeasible = errors.New("model is infeasible")

// ErrTimedOutNoSolution means the time limit elapsed before any feasible
// selection was found. This is distinct from proven infeasibility.
var ErrTimedOutNoSolution = errors.New("time limit reached before any feasible selection was found")

// EngineError wraps an internal solve failure, e.g. a numerical breakdown in
// the simplex subroutine. It indicates a bug and must abort the caller.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("solver engine failure in %s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}
