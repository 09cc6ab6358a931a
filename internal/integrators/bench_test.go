package integrators

import (
	"testing"

	"github.com/san-kum/dynode/internal/dynamo"
)

type benchNBody struct{}

func (b *benchNBody) Dim() int { return 20 }
func (b *benchNBody) Derive(t float64, x dynamo.State) dynamo.State {
	dx := make(dynamo.State, 20)
	for i := 0; i < 5; i++ {
		dx[i*4] = x[i*4+2]
		dx[i*4+1] = x[i*4+3]
		dx[i*4+2] = -x[i*4] * 0.1
		dx[i*4+3] = -x[i*4+1] * 0.1
	}
	return dx
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	sys := &oscillator{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(sys, 0, x, 0.01)
	}
}

func BenchmarkDOP853Step(b *testing.B) {
	s := NewStepper(DOP853())
	sys := &oscillator{}
	x := dynamo.State{1.0, 0.0}
	var k1 dynamo.State

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res := s.Step(sys, 0, x, 0.01, k1)
		x, k1 = res.Y, res.Last()
	}
}

func BenchmarkDopri5Step(b *testing.B) {
	s := NewStepper(DormandPrince54())
	sys := &oscillator{}
	x := dynamo.State{1.0, 0.0}
	var k1 dynamo.State

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res := s.Step(sys, 0, x, 0.01, k1)
		x, k1 = res.Y, res.Last()
	}
}

func BenchmarkDOP853Dense(b *testing.B) {
	s := NewStepper(DOP853())
	sys := &oscillator{}
	res := s.Step(sys, 0, dynamo.State{1.0, 0.0}, 0.1, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		seg := s.Dense(sys, &res)
		_ = seg.Eval(0.05)
	}
}

func BenchmarkRK4_NBody5(b *testing.B) {
	integrator := NewRK4()
	sys := &benchNBody{}
	x := make(dynamo.State, 20)
	for i := range x {
		x[i] = float64(i) * 0.1
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(sys, 0, x, 0.001)
	}
}

func BenchmarkDOP853_NBody5(b *testing.B) {
	s := NewStepper(DOP853())
	sys := &benchNBody{}
	x := make(dynamo.State, 20)
	for i := range x {
		x[i] = float64(i) * 0.1
	}
	var k1 dynamo.State

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res := s.Step(sys, 0, x, 0.001, k1)
		x, k1 = res.Y, res.Last()
	}
}
