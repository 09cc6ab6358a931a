package integrators

import (
	"math"

	"github.com/san-kum/dynode/internal/dynamo"
)

// oscillator is x'' = -x written as a first-order system.
type oscillator struct{ calls int }

func (o *oscillator) Dim() int { return 2 }

func (o *oscillator) Derive(t float64, x dynamo.State) dynamo.State {
	o.calls++
	return dynamo.State{x[1], -x[0]}
}

func oscillatorExact(t float64) dynamo.State {
	return dynamo.State{math.Cos(t), -math.Sin(t)}
}

// fixedSteps advances n equal steps over [0, span] without step control.
func fixedSteps(tab *Tableau, sys dynamo.System, y0 dynamo.State, span float64, n int) dynamo.State {
	s := NewStepper(tab)
	h := span / float64(n)
	y := y0
	var k1 dynamo.State
	for i := 0; i < n; i++ {
		res := s.Step(sys, float64(i)*h, y, h, k1)
		y, k1 = res.Y, res.Last()
	}
	return y
}

func maxDiff(a, b dynamo.State) float64 {
	return a.Sub(b).MaxNorm()
}
