package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/dynode/internal/dynamo"
	"github.com/san-kum/dynode/internal/physics"
	"github.com/san-kum/dynode/internal/solver"
)

func TestEnergyDrift(t *testing.T) {
	p := physics.NewPendulum()
	m := NewEnergyDrift(p)

	m.Observe(0, dynamo.State{math.Pi / 4, 0})
	if m.Value() != 0 {
		t.Errorf("expected zero drift after one sample, got %g", m.Value())
	}

	e0 := p.Energy(dynamo.State{math.Pi / 4, 0})
	m.Observe(1, dynamo.State{0, 1})
	want := math.Abs(0.5-e0) / e0
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected drift %g, got %g", want, m.Value())
	}
	if m.Initial() != e0 || m.Current() != 0.5 {
		t.Errorf("initial/current = %g/%g", m.Initial(), m.Current())
	}
}

func TestEnergyDriftReset(t *testing.T) {
	m := NewEnergyDrift(physics.NewPendulum())

	m.Observe(0, dynamo.State{1.0, 1.0})
	m.Observe(1, dynamo.State{0.5, 1.0})
	if m.Value() == 0 {
		t.Error("expected non-zero drift")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestInvariantDriftAbsoluteAtZero(t *testing.T) {
	m := NewInvariantDrift("sum", func(x dynamo.State) float64 { return x[0] + x[1] })
	m.Observe(0, dynamo.State{1, -1})
	m.Observe(1, dynamo.State{1, -0.75})
	if math.Abs(m.Value()-0.25) > 1e-15 {
		t.Errorf("expected absolute drift 0.25, got %g", m.Value())
	}
}

func TestStability(t *testing.T) {
	s := NewStability(10)
	s.Observe(0, dynamo.State{1, 2})
	s.Observe(1, dynamo.State{1, 20})
	s.Observe(2, dynamo.State{math.NaN(), 0})
	s.Observe(3, dynamo.State{-9, 9})
	if s.Value() != 0.5 {
		t.Errorf("expected 0.5, got %g", s.Value())
	}
	s.Reset()
	if s.Value() != 1 {
		t.Errorf("expected 1 after reset, got %g", s.Value())
	}
}

func TestForSystem(t *testing.T) {
	if n := len(ForSystem(physics.NewLorenz())); n != 0 {
		t.Errorf("lorenz: expected no invariants, got %d", n)
	}
	if n := len(ForSystem(physics.NewTwoBody(1))); n != 1 {
		t.Errorf("twobody: expected 1 invariant, got %d", n)
	}
	ms := ForSystem(physics.NewCR3BP(physics.EarthMoonMu))
	if len(ms) != 2 || ms[1].Name() != "jacobi_drift" {
		t.Errorf("cr3bp: unexpected metrics %v", ms)
	}
}

func TestEvaluateTwoBodySolve(t *testing.T) {
	orbit := physics.CircularOrbit{Mu: 1, R: 1}
	sys := physics.NewTwoBody(1)
	p, err := dynamo.NewProblem(sys, 0, 5*orbit.Period(), orbit.Initial())
	if err != nil {
		t.Fatal(err)
	}

	ref := NewReferenceError(orbit.State)
	live := NewEnergyDrift(sys)
	live.Observe(0, p.Y0)

	sol, err := solver.Solve(context.Background(), p, solver.DefaultConfig().WithTolerances(1e-10, 1e-10),
		solver.WithObserver(Observer(live)))
	if err != nil {
		t.Fatal(err)
	}

	vals := Evaluate(sol.Trajectory, NewEnergyDrift(sys), ref, NewStability(1.5))
	if vals["energy_drift"] > 1e-8 {
		t.Errorf("energy drift %g too large", vals["energy_drift"])
	}
	if vals["energy_drift"] != live.Value() {
		t.Errorf("replayed drift %g differs from live drift %g", vals["energy_drift"], live.Value())
	}
	if vals["reference_error"] > 1e-7 {
		t.Errorf("reference error %g too large", vals["reference_error"])
	}
	if ref.Final() > vals["reference_error"] {
		t.Errorf("final error %g exceeds max %g", ref.Final(), vals["reference_error"])
	}
	if vals["stability"] != 1 {
		t.Errorf("orbit left the unit box: %g", vals["stability"])
	}
}
