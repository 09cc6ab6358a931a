package integrators

import "math"

// Tolerance holds scalar or per-component tolerances. Vector entries, when
// present, override the scalar for their component.
type Tolerance struct {
	RTol    float64
	ATol    float64
	RTolVec []float64
	ATolVec []float64
}

func (tol Tolerance) rtol(i int) float64 {
	if i < len(tol.RTolVec) {
		return tol.RTolVec[i]
	}
	return tol.RTol
}

func (tol Tolerance) atol(i int) float64 {
	if i < len(tol.ATolVec) {
		return tol.ATolVec[i]
	}
	return tol.ATol
}

// Scale returns atol_i + rtol_i*max(|a_i|, |b_i|).
func (tol Tolerance) Scale(i int, a, b float64) float64 {
	return tol.atol(i) + tol.rtol(i)*math.Max(math.Abs(a), math.Abs(b))
}

// Controller turns error estimates into accept/reject decisions and new
// step sizes.
type Controller struct {
	safety   float64
	minScale float64
	maxScale float64
	exponent float64
	hMax     float64
	hMin     float64
}

// NewController uses the tableau order p for the exponent -1/(p+1).
func NewController(tab *Tableau) *Controller {
	return &Controller{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
		exponent: -1.0 / float64(tab.Order+1),
	}
}

// WithFactors overrides the safety factor and the shrink/growth clamps;
// zero values keep the defaults.
func (c *Controller) WithFactors(safety, minScale, maxScale float64) *Controller {
	if safety > 0 {
		c.safety = safety
	}
	if minScale > 0 {
		c.minScale = minScale
	}
	if maxScale > 0 {
		c.maxScale = maxScale
	}
	return c
}

// WithBounds sets the step magnitude limits; zero disables a bound.
func (c *Controller) WithBounds(hMin, hMax float64) *Controller {
	c.hMin = hMin
	c.hMax = hMax
	return c
}

// ErrorNorm scales each error component by atol_i + rtol_i*max(|y_old|,
// |y_new|) and combines them by root-mean-square. With a secondary estimate
// the two are blended as err5^2 / sqrt((err5^2 + 0.01*err3^2) * n), which
// keeps the estimate from collapsing when the order 5 error sits at machine
// precision.
func (c *Controller) ErrorNorm(res *StepResult, tol Tolerance) float64 {
	n := len(res.Y)
	if n == 0 {
		return 0
	}
	e5, e3 := 0.0, 0.0
	for i := 0; i < n; i++ {
		sc := tol.Scale(i, res.Y0[i], res.Y[i])
		r := scaled(res.Err[i], sc)
		e5 += r * r
		if res.Err3 != nil {
			r3 := scaled(res.Err3[i], sc)
			e3 += r3 * r3
		}
	}
	if res.Err3 == nil || math.IsInf(e5, 1) {
		return math.Sqrt(e5 / float64(n))
	}
	if e5 == 0 && e3 == 0 {
		return 0
	}
	return e5 / math.Sqrt((e5+0.01*e3)*float64(n))
}

// scaled divides e by sc. A zero scale (pure relative tolerance on a zero
// component) counts an exact zero error as met and anything else as failed.
func scaled(e, sc float64) float64 {
	if sc == 0 {
		if e == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return e / sc
}

// Evaluate accepts the step iff norm <= 1 and proposes the next step size
// h*clamp(safety*norm^(-1/(p+1)), minScale, maxScale). After a rejection
// the step is not allowed to grow. The result keeps the sign of h and is
// limited by hMax; hMin is applied only when growing an accepted step so the
// caller can detect underflow on rejection.
func (c *Controller) Evaluate(h, norm float64, afterReject bool) (bool, float64) {
	accepted := norm <= 1

	var factor float64
	switch {
	case norm == 0:
		factor = c.maxScale
	case math.IsNaN(norm) || math.IsInf(norm, 1):
		factor = c.minScale
	default:
		factor = c.safety * math.Pow(norm, c.exponent)
		factor = math.Max(c.minScale, math.Min(c.maxScale, factor))
	}
	if afterReject {
		factor = math.Min(1, factor)
	}

	hNext := h * factor
	mag := math.Abs(hNext)
	if c.hMax > 0 && mag > c.hMax {
		mag = c.hMax
	}
	if accepted && c.hMin > 0 && mag < c.hMin {
		mag = c.hMin
	}
	return accepted, math.Copysign(mag, h)
}
