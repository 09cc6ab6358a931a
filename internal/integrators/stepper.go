package integrators

import (
	"github.com/san-kum/dynode/internal/dynamo"
)

// StepResult is one candidate step. K holds the stage derivatives with the
// FSAL derivative f(T+H, Y) last; the solver hands K[len(K)-1] to the next
// Step call as its first stage.
type StepResult struct {
	T, H  float64
	Y0    dynamo.State
	Y     dynamo.State
	Err   dynamo.State
	Err3  dynamo.State
	K     []dynamo.State
	Evals int
}

// Last returns the FSAL derivative at (T+H, Y).
func (r *StepResult) Last() dynamo.State {
	return r.K[len(r.K)-1]
}

// Finite reports whether the candidate and every stage derivative are free
// of NaN and Inf.
func (r *StepResult) Finite() bool {
	if !r.Y.IsValid() {
		return false
	}
	for _, k := range r.K {
		if !k.IsValid() {
			return false
		}
	}
	return true
}

// Stepper advances single candidate steps of an embedded Runge-Kutta pair.
// A Stepper keeps scratch space and is not safe for concurrent use; create
// one per solve.
type Stepper struct {
	tab     *Tableau
	scratch dynamo.State
}

func NewStepper(tab *Tableau) *Stepper {
	return &Stepper{tab: tab}
}

func (s *Stepper) Tableau() *Tableau { return s.tab }

func (s *Stepper) ensureScratch(n int) {
	if len(s.scratch) != n {
		s.scratch = make(dynamo.State, n)
	}
}

// stageInput fills the scratch vector with y + h*sum_j a[j]*k[j].
func (s *Stepper) stageInput(y dynamo.State, h float64, a []float64, k []dynamo.State) dynamo.State {
	for i := range y {
		acc := 0.0
		for j, aj := range a {
			if aj != 0 {
				acc += aj * k[j][i]
			}
		}
		s.scratch[i] = y[i] + h*acc
	}
	return s.scratch
}

// Step computes a candidate from (t, y) with step h. k1 is f(t, y) when the
// caller already has it (FSAL); pass nil to have it evaluated.
//
// The stage recurrence is sequential: stage i reads every stage before it.
// The returned Y, Err and K are freshly allocated and never reused.
func (s *Stepper) Step(sys dynamo.System, t float64, y dynamo.State, h float64, k1 dynamo.State) StepResult {
	tab := s.tab
	n := len(y)
	s.ensureScratch(n)

	res := StepResult{
		T:  t,
		H:  h,
		Y0: y,
		K:  make([]dynamo.State, tab.Stages+1),
	}

	if k1 == nil {
		k1 = sys.Derive(t, y)
		res.Evals++
	}
	res.K[0] = k1

	for i := 1; i < tab.Stages; i++ {
		res.K[i] = sys.Derive(t+tab.C[i]*h, s.stageInput(y, h, tab.A[i], res.K[:i]))
		res.Evals++
	}

	res.Y = make(dynamo.State, n)
	for i := 0; i < n; i++ {
		acc := 0.0
		for j, b := range tab.B {
			if b != 0 {
				acc += b * res.K[j][i]
			}
		}
		res.Y[i] = y[i] + h*acc
	}

	res.K[tab.Stages] = sys.Derive(t+h, res.Y)
	res.Evals++

	res.Err = s.combine(h, tab.E, res.K)
	if tab.E3 != nil {
		res.Err3 = s.combine(h, tab.E3, res.K)
	}
	return res
}

func (s *Stepper) combine(h float64, w []float64, k []dynamo.State) dynamo.State {
	n := len(k[0])
	out := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		acc := 0.0
		for j, wj := range w {
			if wj != 0 {
				acc += wj * k[j][i]
			}
		}
		out[i] = h * acc
	}
	return out
}
