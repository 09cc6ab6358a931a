package integrators

import (
	"math"

	"github.com/san-kum/dynode/internal/dynamo"
)

// RK4 is the classical fixed-step fourth-order method. It has no error
// estimate and serves as a reference point for the adaptive pairs.
type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.scratch) != n {
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Step(sys dynamo.System, t float64, x dynamo.State, dt float64) dynamo.State {
	n := len(x)
	r.ensureScratch(n)

	r.k1 = sys.Derive(t, x)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	r.k2 = sys.Derive(t+dt*0.5, r.scratch)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	r.k3 = sys.Derive(t+dt*0.5, r.scratch)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	r.k4 = sys.Derive(t+dt, r.scratch)

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return result
}

// Integrate takes ceil(|tf-t0|/dt) equal steps from t0 to tf and returns the
// final state with the number of derivative evaluations used.
func (r *RK4) Integrate(sys dynamo.System, t0, tf float64, x0 dynamo.State, dt float64) (dynamo.State, int) {
	span := tf - t0
	steps := int(math.Ceil(math.Abs(span) / math.Abs(dt)))
	if steps < 1 {
		steps = 1
	}
	h := span / float64(steps)

	x := x0.Clone()
	for i := 0; i < steps; i++ {
		x = r.Step(sys, t0+float64(i)*h, x, h)
	}
	return x, 4 * steps
}
