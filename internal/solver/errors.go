package solver

import (
	"errors"
	"fmt"

	"github.com/san-kum/dynode/internal/dynamo"
)

var (
	// ErrNoDenseOutput indicates Eval on a trajectory solved without dense output.
	ErrNoDenseOutput = errors.New("solver: trajectory has no dense output")

	// ErrOutsideSpan indicates a query time outside the solved interval.
	ErrOutsideSpan = errors.New("solver: time outside trajectory span")
)

// SolveError reports a fatal solve failure. Step counts the attempted steps
// up to the failure; State is the last accepted state. Trajectory holds
// every point accepted before the failure and is sealed.
type SolveError struct {
	Step       int
	Time       float64
	State      dynamo.State
	Trajectory *Trajectory
	Stats      Stats
	Wrapped    error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SolveError) Unwrap() error {
	return e.Wrapped
}
