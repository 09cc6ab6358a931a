package dynamo

import (
	"errors"
	"math"
	"testing"
)

func decay() System {
	return Func(1, func(_ float64, x State) State { return State{-x[0]} })
}

func TestNewProblem(t *testing.T) {
	y0 := State{1}
	p, err := NewProblem(decay(), 0, 1, y0)
	if err != nil {
		t.Fatalf("NewProblem: %v", err)
	}
	y0[0] = 5
	if p.Y0[0] != 1 {
		t.Error("NewProblem must copy y0")
	}
	if p.Direction() != 1 || p.Span() != 1 {
		t.Errorf("direction %v span %v", p.Direction(), p.Span())
	}

	back, err := NewProblem(decay(), 2, -1, State{1})
	if err != nil {
		t.Fatalf("backward problem: %v", err)
	}
	if back.Direction() != -1 || back.Span() != 3 {
		t.Errorf("direction %v span %v", back.Direction(), back.Span())
	}
}

func TestProblemValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Problem
		wantDim bool
	}{
		{"nil system", Problem{T0: 0, TF: 1, Y0: State{1}}, false},
		{"empty span", Problem{System: decay(), T0: 1, TF: 1, Y0: State{1}}, false},
		{"nan time", Problem{System: decay(), T0: math.NaN(), TF: 1, Y0: State{1}}, false},
		{"inf time", Problem{System: decay(), T0: 0, TF: math.Inf(1), Y0: State{1}}, false},
		{"dimension", Problem{System: decay(), T0: 0, TF: 1, Y0: State{1, 2}}, true},
		{"nan y0", Problem{System: decay(), T0: 0, TF: 1, Y0: State{math.NaN()}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if !errors.Is(err, ErrInvalidProblem) {
				t.Fatalf("expected ErrInvalidProblem, got %v", err)
			}
			if tt.wantDim && !errors.Is(err, ErrDimensionMismatch) {
				t.Errorf("expected ErrDimensionMismatch, got %v", err)
			}
		})
	}
}
