package solver

import (
	"fmt"
	"math"

	"github.com/san-kum/dynode/internal/dynamo"
	"github.com/san-kum/dynode/internal/integrators"
)

// Output selects what a solve records.
type Output string

const (
	// OutputSteps records every accepted step.
	OutputSteps Output = "steps"
	// OutputDense records every accepted step with its continuous extension.
	OutputDense Output = "dense"
	// OutputFinal records only the initial and the final point.
	OutputFinal Output = "final"
)

func ParseOutput(s string) (Output, error) {
	switch Output(s) {
	case OutputSteps, OutputDense, OutputFinal:
		return Output(s), nil
	case "":
		return OutputSteps, nil
	}
	return "", fmt.Errorf("unknown output mode: %s (want steps, dense or final)", s)
}

// Config is the complete set of solver options. It is a plain value: build
// it once, pass it to Solve, and it is never modified.
type Config struct {
	Method string `yaml:"method" json:"method"`

	RTol    float64   `yaml:"rtol" json:"rtol"`
	ATol    float64   `yaml:"atol" json:"atol"`
	RTolVec []float64 `yaml:"rtol_vec,omitempty" json:"rtol_vec,omitempty"`
	ATolVec []float64 `yaml:"atol_vec,omitempty" json:"atol_vec,omitempty"`

	H0   float64 `yaml:"h0,omitempty" json:"h0,omitempty"`
	HMin float64 `yaml:"h_min,omitempty" json:"h_min,omitempty"`
	HMax float64 `yaml:"h_max,omitempty" json:"h_max,omitempty"`

	MaxRejections int `yaml:"max_rejections" json:"max_rejections"`
	MaxSteps      int `yaml:"max_steps" json:"max_steps"`

	Safety   float64 `yaml:"safety,omitempty" json:"safety,omitempty"`
	MinScale float64 `yaml:"min_scale,omitempty" json:"min_scale,omitempty"`
	MaxScale float64 `yaml:"max_scale,omitempty" json:"max_scale,omitempty"`

	Output Output `yaml:"output" json:"output"`
}

func DefaultConfig() Config {
	return Config{
		Method:        "dop853",
		RTol:          1e-6,
		ATol:          1e-9,
		MaxRejections: 100,
		MaxSteps:      10_000_000,
		Safety:        0.9,
		MinScale:      0.2,
		MaxScale:      10,
		Output:        OutputSteps,
	}
}

// WithTolerances returns a copy of c with both scalar tolerances replaced.
func (c Config) WithTolerances(rtol, atol float64) Config {
	c.RTol = rtol
	c.ATol = atol
	return c
}

// Validate checks c against a problem of dimension dim. Errors wrap
// dynamo.ErrInvalidProblem.
func (c Config) Validate(dim int) error {
	return c.validate(dim, true)
}

func (c Config) validate(dim int, checkMethod bool) error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: config: %s", dynamo.ErrInvalidProblem, fmt.Sprintf(format, args...))
	}

	if checkMethod {
		if _, err := integrators.Lookup(c.Method); err != nil {
			return bad("%v", err)
		}
	}
	if !nonNegative(c.RTol) || !nonNegative(c.ATol) {
		return bad("tolerances must be finite and non-negative (rtol=%g, atol=%g)", c.RTol, c.ATol)
	}
	if c.RTolVec != nil && len(c.RTolVec) != dim {
		return bad("rtol vector has %d entries, want %d", len(c.RTolVec), dim)
	}
	if c.ATolVec != nil && len(c.ATolVec) != dim {
		return bad("atol vector has %d entries, want %d", len(c.ATolVec), dim)
	}
	for i := 0; i < dim; i++ {
		r, a := c.RTol, c.ATol
		if c.RTolVec != nil {
			r = c.RTolVec[i]
		}
		if c.ATolVec != nil {
			a = c.ATolVec[i]
		}
		if !nonNegative(r) || !nonNegative(a) {
			return bad("component %d: rtol=%g atol=%g", i, r, a)
		}
		if r == 0 && a == 0 {
			return bad("component %d has zero rtol and atol", i)
		}
	}

	if !nonNegative(c.H0) || !nonNegative(c.HMin) || !nonNegative(c.HMax) {
		return bad("step sizes must be finite and non-negative")
	}
	if c.HMax > 0 && c.HMin > c.HMax {
		return bad("h_min %g exceeds h_max %g", c.HMin, c.HMax)
	}
	if c.MaxRejections < 1 {
		return bad("max_rejections must be positive, got %d", c.MaxRejections)
	}
	if c.MaxSteps < 1 {
		return bad("max_steps must be positive, got %d", c.MaxSteps)
	}
	if c.Safety < 0 || c.Safety >= 1 {
		return bad("safety must lie in [0, 1), got %g", c.Safety)
	}
	if c.MinScale < 0 || c.MinScale >= 1 {
		return bad("min_scale must lie in [0, 1), got %g", c.MinScale)
	}
	if c.MaxScale != 0 && c.MaxScale <= 1 {
		return bad("max_scale must exceed 1, got %g", c.MaxScale)
	}
	if _, err := ParseOutput(string(c.Output)); err != nil {
		return bad("%v", err)
	}
	return nil
}

func (c Config) Tolerance() integrators.Tolerance {
	return integrators.Tolerance{
		RTol:    c.RTol,
		ATol:    c.ATol,
		RTolVec: c.RTolVec,
		ATolVec: c.ATolVec,
	}
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}
