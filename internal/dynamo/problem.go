package dynamo

import (
	"fmt"
	"math"
)

// Problem is an initial-value problem: integrate System from (T0, Y0) to TF.
type Problem struct {
	System System
	T0     float64
	TF     float64
	Y0     State
}

// NewProblem builds a validated problem. Y0 is copied.
func NewProblem(sys System, t0, tf float64, y0 State) (Problem, error) {
	p := Problem{System: sys, T0: t0, TF: tf, Y0: y0.Clone()}
	if err := p.Validate(); err != nil {
		return Problem{}, err
	}
	return p, nil
}

func (p Problem) Validate() error {
	if p.System == nil {
		return fmt.Errorf("%w: nil system", ErrInvalidProblem)
	}
	if math.IsNaN(p.T0) || math.IsInf(p.T0, 0) || math.IsNaN(p.TF) || math.IsInf(p.TF, 0) {
		return fmt.Errorf("%w: non-finite time span [%g, %g]", ErrInvalidProblem, p.T0, p.TF)
	}
	if p.T0 == p.TF {
		return fmt.Errorf("%w: empty time span (t0 == tf == %g)", ErrInvalidProblem, p.T0)
	}
	if dim := p.System.Dim(); len(p.Y0) != dim {
		return fmt.Errorf("%w: %w: y0 has %d components, system expects %d",
			ErrInvalidProblem, ErrDimensionMismatch, len(p.Y0), dim)
	}
	if !p.Y0.IsValid() {
		return fmt.Errorf("%w: %w in y0", ErrInvalidProblem, ErrNonFiniteState)
	}
	return nil
}

// Direction is +1 for forward and -1 for backward integration.
func (p Problem) Direction() float64 {
	if p.TF < p.T0 {
		return -1
	}
	return 1
}

func (p Problem) Span() float64 {
	return math.Abs(p.TF - p.T0)
}
