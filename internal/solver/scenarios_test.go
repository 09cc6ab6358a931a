package solver_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dynode/internal/dynamo"
	"github.com/san-kum/dynode/internal/physics"
	"github.com/san-kum/dynode/internal/solver"
)

func solve(sys dynamo.System, t0, tf float64, y0 dynamo.State, cfg solver.Config, opts ...solver.Option) *solver.Solution {
	p, err := dynamo.NewProblem(sys, t0, tf, y0)
	Expect(err).NotTo(HaveOccurred())
	sol, err := solver.Solve(context.Background(), p, cfg, opts...)
	Expect(err).NotTo(HaveOccurred())
	Expect(sol.Status).To(Equal(solver.StatusCompleted))
	return sol
}

func strict() solver.Config {
	return solver.DefaultConfig().WithTolerances(1e-12, 1e-12)
}

var _ = Describe("Lorenz attractor", func() {
	It("stays on the bounded attractor for t in [0, 10000]", func() {
		cfg := strict()
		cfg.Output = solver.OutputFinal

		var maxXY, minZ, maxZ float64
		minZ = math.Inf(1)
		sys := physics.NewLorenz()
		sol := solve(sys, 0, 10000, sys.DefaultState(), cfg,
			solver.WithObserver(func(info solver.StepInfo) bool {
				maxXY = math.Max(maxXY, math.Max(math.Abs(info.Y[0]), math.Abs(info.Y[1])))
				minZ = math.Min(minZ, info.Y[2])
				maxZ = math.Max(maxZ, info.Y[2])
				return true
			}))

		Expect(sol.Trajectory.Last().T).To(Equal(10000.0))
		Expect(maxXY).To(BeNumerically("<", 40))
		Expect(minZ).To(BeNumerically(">=", 0))
		Expect(maxZ).To(BeNumerically("<", 60))
		Expect(sol.Stats.Accepted).To(BeNumerically(">", 100_000))
	})
})

var _ = Describe("Van der Pol oscillator", func() {
	It("settles on the limit cycle of amplitude 2", func() {
		sys := physics.NewVanDerPol()
		sol := solve(sys, 0, 1000, sys.DefaultState(), strict())

		var lateAmp, maxVel float64
		sol.Trajectory.Each(func(_ int, p solver.Point) bool {
			maxVel = math.Max(maxVel, math.Abs(p.Y[1]))
			if p.T > 500 {
				lateAmp = math.Max(lateAmp, math.Abs(p.Y[0]))
			}
			return true
		})
		Expect(lateAmp).To(BeNumerically("~", 2.0, 0.05))
		Expect(maxVel).To(BeNumerically("<", 3))
	})
})

var _ = Describe("Circular two-body orbit", func() {
	orbit := physics.CircularOrbit{Mu: 1, R: 1}
	sys := physics.NewTwoBody(orbit.Mu)

	finalError := func(periods, tol float64) float64 {
		cfg := solver.DefaultConfig().WithTolerances(tol, tol)
		cfg.Output = solver.OutputFinal
		tf := periods * orbit.Period()
		sol := solve(sys, 0, tf, orbit.Initial(), cfg)
		return sol.Trajectory.Last().Y.Sub(orbit.State(tf)).Norm()
	}

	It("improves monotonically as tolerances tighten", func() {
		prev := math.Inf(1)
		var errs []float64
		for _, tol := range []float64{1e-6, 1e-7, 1e-8, 1e-9, 1e-10} {
			e := finalError(10, tol)
			Expect(e).To(BeNumerically("<", prev), "tol %g", tol)
			prev = e
			errs = append(errs, e)
		}
		Expect(errs[0] / errs[len(errs)-1]).To(BeNumerically(">", 1e3))
	})

	It("stays on the orbit for 1000 periods", func() {
		Expect(finalError(1000, 1e-12)).To(BeNumerically("<", 1e-5))
	})

	It("keeps the orbital energy over 1000 periods", func() {
		cfg := strict()
		cfg.Output = solver.OutputFinal
		y0 := orbit.Initial()
		sol := solve(sys, 0, 1000*orbit.Period(), y0, cfg)
		drift := math.Abs(sys.Energy(sol.Trajectory.Last().Y) - sys.Energy(y0))
		Expect(drift).To(BeNumerically("<", 1e-8))
	})

	It("reproduces a low Earth orbit in SI units", func() {
		leo := physics.LowEarthOrbit()
		tf := 10 * leo.Period()
		cfg := strict()
		cfg.Output = solver.OutputFinal
		sol := solve(physics.NewTwoBody(leo.Mu), 0, tf, leo.Initial(), cfg)
		Expect(sol.Trajectory.Last().Y.Sub(leo.State(tf)).Norm()).To(BeNumerically("<", 1e-2))
	})
})

var _ = Describe("Earth-Moon halo orbit", func() {
	It("returns to its initial state after one period and keeps the Jacobi constant", func() {
		sys := physics.NewCR3BP(physics.EarthMoonMu)
		y0 := sys.DefaultState()
		c0 := sys.Jacobi(y0)

		var drift float64
		sol := solve(sys, 0, physics.HaloPeriod, y0, strict(),
			solver.WithObserver(func(info solver.StepInfo) bool {
				drift = math.Max(drift, math.Abs(sys.Jacobi(info.Y)-c0))
				return true
			}))

		Expect(sol.Trajectory.Last().Y.Sub(y0).MaxNorm()).To(BeNumerically("<", 1e-6))
		Expect(drift).To(BeNumerically("<", 1e-10))
	})

	It("completes ten periods", func() {
		sys := physics.NewCR3BP(physics.EarthMoonMu)
		y0 := sys.DefaultState()
		sol := solve(sys, 0, 10*physics.HaloPeriod, y0, strict())
		Expect(math.Abs(sys.Jacobi(sol.Trajectory.Last().Y) - sys.Jacobi(y0))).To(BeNumerically("<", 1e-9))
	})
})

var _ = Describe("Dense output", func() {
	It("matches the analytic orbit between steps", func() {
		orbit := physics.CircularOrbit{Mu: 1, R: 1}
		cfg := solver.DefaultConfig().WithTolerances(1e-10, 1e-10)
		cfg.Output = solver.OutputDense
		sol := solve(physics.NewTwoBody(1), 0, 3*orbit.Period(), orbit.Initial(), cfg)

		tr := sol.Trajectory
		pts, err := tr.Resample(tr.Uniform(2000))
		Expect(err).NotTo(HaveOccurred())
		for _, p := range pts {
			Expect(p.Y.Sub(orbit.State(p.T)).MaxNorm()).To(BeNumerically("<", 1e-7), "t=%g", p.T)
		}
	})
})
