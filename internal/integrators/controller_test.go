package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/dynode/internal/dynamo"
	"github.com/stretchr/testify/assert"
)

func TestTolerance_Scale(t *testing.T) {
	tol := Tolerance{RTol: 1e-3, ATol: 1e-6, ATolVec: []float64{1e-2}}

	assert.InDelta(t, 1e-2+1e-3*4, tol.Scale(0, -4, 2), 1e-15)
	assert.InDelta(t, 1e-6+1e-3*3, tol.Scale(1, 1, -3), 1e-15)
}

func TestController_ErrorNorm(t *testing.T) {
	c := NewController(DOP853())
	tol := Tolerance{RTol: 1e-6}
	one := dynamo.State{1}

	tests := []struct {
		name string
		res  StepResult
		want float64
	}{
		{
			name: "rms",
			res:  StepResult{Y0: dynamo.State{1, 1}, Y: dynamo.State{1, 1}, Err: dynamo.State{1e-6, 3e-6}},
			want: math.Sqrt(5),
		},
		{
			name: "blend without order 3 error",
			res:  StepResult{Y0: one, Y: one, Err: dynamo.State{1e-6}, Err3: dynamo.State{0}},
			want: 1,
		},
		{
			name: "blend",
			res:  StepResult{Y0: one, Y: one, Err: dynamo.State{1e-6}, Err3: dynamo.State{1e-5}},
			want: 1 / math.Sqrt(2),
		},
		{
			name: "both zero",
			res:  StepResult{Y0: one, Y: one, Err: dynamo.State{0}, Err3: dynamo.State{0}},
			want: 0,
		},
		{
			name: "larger endpoint scales",
			res:  StepResult{Y0: dynamo.State{1}, Y: dynamo.State{-2}, Err: dynamo.State{2e-6}},
			want: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, c.ErrorNorm(&tt.res, tol), 1e-12)
		})
	}
}

func TestController_Evaluate(t *testing.T) {
	c := NewController(DOP853())

	ok, h := c.Evaluate(1, math.Pow(0.45, 9), false)
	assert.True(t, ok)
	assert.InDelta(t, 2.0, h, 1e-12)

	ok, h = c.Evaluate(1, 1, false)
	assert.True(t, ok)
	assert.InDelta(t, 0.9, h, 1e-15)

	ok, h = c.Evaluate(0.5, 0, false)
	assert.True(t, ok)
	assert.Equal(t, 5.0, h)

	ok, h = c.Evaluate(1, 1e12, false)
	assert.False(t, ok)
	assert.Equal(t, 0.2, h)

	ok, h = c.Evaluate(1, math.NaN(), false)
	assert.False(t, ok)
	assert.Equal(t, 0.2, h)
}

func TestController_NoGrowthAfterReject(t *testing.T) {
	c := NewController(DOP853())
	ok, h := c.Evaluate(0.1, 1e-20, true)
	assert.True(t, ok)
	assert.Equal(t, 0.1, h)
}

func TestController_KeepsSign(t *testing.T) {
	c := NewController(DOP853())
	_, h := c.Evaluate(-0.5, 0, false)
	assert.Equal(t, -5.0, h)
	_, h = c.Evaluate(-0.5, 1e12, false)
	assert.Equal(t, -0.1, h)
}

func TestController_Bounds(t *testing.T) {
	c := NewController(DOP853()).WithBounds(0.05, 1)

	_, h := c.Evaluate(0.5, 0, false)
	assert.Equal(t, 1.0, h)

	_, h = c.Evaluate(-0.5, 0, false)
	assert.Equal(t, -1.0, h)

	// hMin only lifts accepted steps.
	ok, h := c.Evaluate(0.1, 1e12, false)
	assert.False(t, ok)
	assert.InDelta(t, 0.02, h, 1e-15)
}

func TestController_WithFactors(t *testing.T) {
	c := NewController(DormandPrince54()).WithFactors(0.8, 0.1, 5)
	_, h := c.Evaluate(1, 0, false)
	assert.Equal(t, 5.0, h)
	_, h = c.Evaluate(1, 1e12, false)
	assert.Equal(t, 0.1, h)
	_, h = c.Evaluate(1, 1, false)
	assert.InDelta(t, 0.8, h, 1e-15)
}

func TestController_ErrorNormZeroScale(t *testing.T) {
	c := NewController(DormandPrince54())
	tol := Tolerance{RTol: 1e-6}
	zero := dynamo.State{0}

	res := StepResult{Y0: zero, Y: zero, Err: dynamo.State{0}}
	assert.Equal(t, 0.0, c.ErrorNorm(&res, tol))

	res.Err = dynamo.State{1e-20}
	assert.True(t, math.IsInf(c.ErrorNorm(&res, tol), 1))
}

func TestController_ErrorNormZeroScaleBlend(t *testing.T) {
	c := NewController(DOP853())
	zero := dynamo.State{0}
	res := StepResult{Y0: zero, Y: zero, Err: dynamo.State{1e-20}, Err3: dynamo.State{1e-20}}
	assert.True(t, math.IsInf(c.ErrorNorm(&res, Tolerance{RTol: 1e-6}), 1))
}
