package solver

import (
	"math"

	"github.com/san-kum/dynode/internal/dynamo"
	"github.com/san-kum/dynode/internal/integrators"
)

const fallbackStep = 1e-6

// estimateStep picks a starting step magnitude from the sizes of y0, f0 and
// a finite-difference estimate of the second derivative (Hairer, Norsett &
// Wanner, Solving ODEs I, II.4). It costs one evaluation and always returns
// a finite positive step.
func estimateStep(sys dynamo.System, t0 float64, y0, f0 dynamo.State, dir float64, order int, tol integrators.Tolerance) (float64, int) {
	n := len(y0)
	sc := make([]float64, n)
	for i := range y0 {
		sc[i] = tol.Scale(i, y0[i], y0[i])
	}
	// A zero scale only arises from a pure relative tolerance on a zero
	// component; an exact zero there contributes nothing.
	rms := func(v dynamo.State) float64 {
		sum := 0.0
		for i, x := range v {
			if sc[i] == 0 && x == 0 {
				continue
			}
			r := x / sc[i]
			sum += r * r
		}
		return math.Sqrt(sum / float64(n))
	}

	d0, d1 := rms(y0), rms(f0)
	h0 := 0.01 * d0 / d1
	if !finite(d0) || !finite(d1) || d0 < 1e-5 || d1 < 1e-5 {
		h0 = fallbackStep
	}

	f1 := sys.Derive(t0+dir*h0, y0.AddScaled(dir*h0, f0))
	if !f1.IsValid() {
		return h0, 1
	}
	d2 := rms(f1.Sub(f0)) / h0

	dmax := math.Max(d1, d2)
	var h1 float64
	switch {
	case !finite(dmax) || dmax <= 1e-15:
		h1 = math.Max(fallbackStep, h0*1e-3)
	default:
		h1 = math.Pow(0.01/dmax, 1/float64(order+1))
	}

	h := math.Min(100*h0, h1)
	if !finite(h) || h <= 0 {
		h = fallbackStep
	}
	return h, 1
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
