package solver

import (
	"math"
	"sync/atomic"

	"github.com/san-kum/dynode/internal/dynamo"
)

// counting wraps a System and counts derivative evaluations.
type counting struct {
	dynamo.System
	calls atomic.Int64
}

func (c *counting) Derive(t float64, x dynamo.State) dynamo.State {
	c.calls.Add(1)
	return c.System.Derive(t, x)
}

func decay() dynamo.System {
	return dynamo.Func(1, func(_ float64, x dynamo.State) dynamo.State {
		return dynamo.State{-x[0]}
	})
}

func oscillator() dynamo.System {
	return dynamo.Func(2, func(_ float64, x dynamo.State) dynamo.State {
		return dynamo.State{x[1], -x[0]}
	})
}

func oscillatorAt(t float64) dynamo.State {
	return dynamo.State{math.Cos(t), -math.Sin(t)}
}

func mustProblem(sys dynamo.System, t0, tf float64, y0 dynamo.State) dynamo.Problem {
	p, err := dynamo.NewProblem(sys, t0, tf, y0)
	if err != nil {
		panic(err)
	}
	return p
}

func tight(rtol, atol float64) Config {
	return DefaultConfig().WithTolerances(rtol, atol)
}
