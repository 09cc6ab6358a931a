package integrators

import (
	"math"

	"github.com/san-kum/dynode/internal/dynamo"
)

// Segment is the continuous extension of one accepted step. With
// x = (t-T0)/H the interpolant is evaluated in the nested form
//
//	y0 + x*(F0 + (1-x)*(F1 + x*(F2 + (1-x)*(F3 + ...))))
//
// Three rows give the cubic Hermite interpolant through (y0, f0) and
// (y1, f1); DOP853 adds four more rows for a 7th-degree polynomial.
type Segment struct {
	T0, H float64
	Y0    dynamo.State
	F     []dynamo.State
}

func (g *Segment) T1() float64 { return g.T0 + g.H }

// Contains reports whether t lies in the closed span of the segment, for
// either integration direction.
func (g *Segment) Contains(t float64) bool {
	lo, hi := g.T0, g.T0+g.H
	if lo > hi {
		lo, hi = hi, lo
	}
	return t >= lo && t <= hi
}

// Eval evaluates the interpolant at t. Values outside the segment are
// extrapolated.
func (g *Segment) Eval(t float64) dynamo.State {
	x := (t - g.T0) / g.H
	n := len(g.Y0)
	y := make(dynamo.State, n)
	for r := len(g.F) - 1; r >= 0; r-- {
		f := g.F[r]
		w := x
		if r%2 == 1 {
			w = 1 - x
		}
		for i := 0; i < n; i++ {
			y[i] = (y[i] + f[i]) * w
		}
	}
	for i := 0; i < n; i++ {
		y[i] += g.Y0[i]
	}
	return y
}

// Dense builds the continuous extension of an accepted step. For tableaus
// with a dense extension this costs len(Dense.C) further evaluations, which
// are added to res.Evals.
func (s *Stepper) Dense(sys dynamo.System, res *StepResult) *Segment {
	n := len(res.Y0)
	h := res.H
	f0 := res.K[0]
	f1 := res.Last()

	dy := res.Y.Sub(res.Y0)
	rows := []dynamo.State{
		dy,
		make(dynamo.State, n),
		make(dynamo.State, n),
	}
	for i := 0; i < n; i++ {
		rows[1][i] = h*f0[i] - dy[i]
		rows[2][i] = 2*dy[i] - h*(f1[i]+f0[i])
	}

	ext := s.tab.Dense
	if ext != nil {
		s.ensureScratch(n)
		k := make([]dynamo.State, 0, s.tab.TotalStages())
		k = append(k, res.K...)
		for e, c := range ext.C {
			k = append(k, sys.Derive(res.T+c*h, s.stageInput(res.Y0, h, ext.A[e], k)))
			res.Evals++
		}
		for _, d := range ext.D {
			rows = append(rows, s.combine(h, d, k))
		}
	}

	return &Segment{T0: res.T, H: h, Y0: res.Y0, F: rows}
}

// Finite reports whether every interpolation row is free of NaN and Inf.
func (g *Segment) Finite() bool {
	for _, f := range g.F {
		for _, v := range f {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
