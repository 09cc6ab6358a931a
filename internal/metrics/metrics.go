package metrics

import (
	"github.com/san-kum/dynode/internal/dynamo"
	"github.com/san-kum/dynode/internal/solver"
)

// Metric accumulates a scalar over a sequence of solution samples.
type Metric interface {
	Name() string
	Observe(t float64, x dynamo.State)
	Value() float64
	Reset()
}

// Observer feeds every accepted step of a solve to ms. The initial point is
// not an accepted step; call Observe on it first when it matters.
func Observer(ms ...Metric) solver.Observer {
	return func(info solver.StepInfo) bool {
		for _, m := range ms {
			m.Observe(info.T, info.Y)
		}
		return true
	}
}

// Evaluate resets ms, replays every point of tr through them and returns
// the values by name.
func Evaluate(tr *solver.Trajectory, ms ...Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	tr.Each(func(_ int, p solver.Point) bool {
		for _, m := range ms {
			m.Observe(p.T, p.Y)
		}
		return true
	})
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// ForSystem returns the metrics that apply to sys: energy drift for
// Hamiltonian systems and Jacobi drift for systems exposing one.
func ForSystem(sys dynamo.System) []Metric {
	var ms []Metric
	if h, ok := sys.(dynamo.Hamiltonian); ok {
		ms = append(ms, NewEnergyDrift(h))
	}
	if j, ok := sys.(interface{ Jacobi(dynamo.State) float64 }); ok {
		ms = append(ms, NewInvariantDrift("jacobi_drift", j.Jacobi))
	}
	return ms
}
