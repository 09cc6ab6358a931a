package metrics

import (
	"math"

	"github.com/san-kum/dynode/internal/dynamo"
)

// InvariantDrift tracks the largest deviation of a conserved quantity from
// its value at the first sample. The drift is relative unless the initial
// value is zero, in which case it is absolute.
type InvariantDrift struct {
	name     string
	fn       func(dynamo.State) float64
	initial  float64
	current  float64
	maxDrift float64
	samples  int
}

func NewInvariantDrift(name string, fn func(dynamo.State) float64) *InvariantDrift {
	return &InvariantDrift{name: name, fn: fn}
}

// NewEnergyDrift tracks drift of h.Energy.
func NewEnergyDrift(h dynamo.Hamiltonian) *InvariantDrift {
	return NewInvariantDrift("energy_drift", h.Energy)
}

func (e *InvariantDrift) Name() string { return e.name }

func (e *InvariantDrift) Observe(_ float64, x dynamo.State) {
	v := e.fn(x)
	if e.samples == 0 {
		e.initial = v
	}
	e.current = v
	e.samples++

	drift := math.Abs(v - e.initial)
	if e.initial != 0 {
		drift /= math.Abs(e.initial)
	}
	e.maxDrift = math.Max(e.maxDrift, drift)
}

func (e *InvariantDrift) Value() float64 {
	return e.maxDrift
}

// Initial and Current return the first and latest observed values.
func (e *InvariantDrift) Initial() float64 { return e.initial }
func (e *InvariantDrift) Current() float64 { return e.current }

func (e *InvariantDrift) Reset() {
	e.initial = 0
	e.current = 0
	e.maxDrift = 0
	e.samples = 0
}
