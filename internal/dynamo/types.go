package dynamo

import (
	"fmt"
	"math"
)

type State []float64

// Zero returns a zero vector of dimension n.
func Zero(n int) State {
	return make(State, n)
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) Dim() int { return len(s) }

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Norm is the Euclidean norm.
func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) MaxNorm() float64 {
	m := 0.0
	for _, v := range s {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

// RMSNorm is the root-mean-square of the components. The empty vector has
// norm zero.
func (s State) RMSNorm() float64 {
	if len(s) == 0 {
		return 0
	}
	return s.Norm() / math.Sqrt(float64(len(s)))
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// AddScaled returns s + h*v.
func (s State) AddScaled(h float64, v State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(v) {
			result[i] = s[i] + h*v[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is the right-hand side of an ODE. Derive must be deterministic and
// free of observable side effects; the solver calls it many times per step.
type System interface {
	Derive(t float64, x State) State
	Dim() int
}

// Hamiltonian is implemented by systems with a conserved scalar quantity.
type Hamiltonian interface {
	Energy(x State) float64
}

type Configurable interface {
	Params() map[string]float64
	SetParam(name string, value float64) error
}

// Func adapts a plain function to the System interface.
func Func(dim int, fn func(t float64, x State) State) System {
	return funcSystem{dim: dim, fn: fn}
}

type funcSystem struct {
	dim int
	fn  func(t float64, x State) State
}

func (f funcSystem) Derive(t float64, x State) State { return f.fn(t, x) }
func (f funcSystem) Dim() int                        { return f.dim }

func (s State) String() string {
	return fmt.Sprintf("%v", []float64(s))
}
