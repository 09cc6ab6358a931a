package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/dynode/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func segmentError(seg *Segment) float64 {
	worst := 0.0
	for i := 0; i <= 20; i++ {
		tq := seg.T0 + seg.H*float64(i)/20
		worst = math.Max(worst, maxDiff(seg.Eval(tq), oscillatorExact(tq)))
	}
	return worst
}

func TestDense_DOP853(t *testing.T) {
	sys := &oscillator{}
	s := NewStepper(DOP853())
	res := s.Step(sys, 0, dynamo.State{1, 0}, 0.5, nil)

	seg := s.Dense(sys, &res)
	require.Len(t, seg.F, 7)
	assert.Equal(t, 16, res.Evals)
	assert.True(t, seg.Finite())

	assert.Equal(t, res.Y0, seg.Eval(seg.T0))
	assert.InDelta(t, 0.0, maxDiff(seg.Eval(seg.T1()), res.Y), 1e-15)
	assert.Less(t, segmentError(seg), 1e-8)
}

func TestDense_HermiteFallback(t *testing.T) {
	sys := &oscillator{}
	s := NewStepper(DormandPrince54())
	res := s.Step(sys, 0, dynamo.State{1, 0}, 0.5, nil)
	evals := res.Evals

	seg := s.Dense(sys, &res)
	require.Len(t, seg.F, 3)
	assert.Equal(t, evals, res.Evals)

	assert.InDelta(t, 0.0, maxDiff(seg.Eval(seg.T1()), res.Y), 1e-15)
	assert.Less(t, segmentError(seg), 5e-4)
}

func TestDense_Backward(t *testing.T) {
	sys := &oscillator{}
	s := NewStepper(DOP853())
	res := s.Step(sys, 1, oscillatorExact(1), -0.4, nil)
	seg := s.Dense(sys, &res)

	assert.True(t, seg.Contains(0.8))
	assert.False(t, seg.Contains(1.1))
	assert.False(t, seg.Contains(0.5))
	assert.InDelta(t, 0.0, maxDiff(seg.Eval(0.8), oscillatorExact(0.8)), 1e-8)
}

func TestSegment_Contains(t *testing.T) {
	seg := &Segment{T0: 2, H: 0.5}
	assert.True(t, seg.Contains(2))
	assert.True(t, seg.Contains(2.5))
	assert.True(t, seg.Contains(2.2))
	assert.False(t, seg.Contains(1.99))
	assert.False(t, seg.Contains(2.51))
	assert.Equal(t, 2.5, seg.T1())
}
