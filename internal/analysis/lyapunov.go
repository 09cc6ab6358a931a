package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/dynode/internal/dynamo"
	"github.com/san-kum/dynode/internal/solver"
)

type LyapunovOptions struct {
	Transient    float64 // time discarded before measuring
	Interval     float64 // renormalisation interval
	Intervals    int
	Perturbation float64 // initial and renormalised separation
}

func (o LyapunovOptions) withDefaults() LyapunovOptions {
	if o.Interval <= 0 {
		o.Interval = 1
	}
	if o.Intervals <= 0 {
		o.Intervals = 200
	}
	if o.Perturbation <= 0 {
		o.Perturbation = 1e-8
	}
	return o
}

// LyapunovExponent estimates the largest Lyapunov exponent by following a
// reference and a perturbed trajectory, renormalising their separation
// after every interval (Benettin et al.). A positive value indicates chaos.
func LyapunovExponent(ctx context.Context, sys dynamo.System, x0 dynamo.State, cfg solver.Config, opts LyapunovOptions) (float64, error) {
	o := opts.withDefaults()
	if len(x0) == 0 {
		return 0, fmt.Errorf("empty initial state")
	}
	cfg.Output = solver.OutputFinal

	advance := func(x dynamo.State, t0, t1 float64) (dynamo.State, error) {
		p, err := dynamo.NewProblem(sys, t0, t1, x)
		if err != nil {
			return nil, err
		}
		sol, err := solver.Solve(ctx, p, cfg)
		if err != nil {
			return nil, err
		}
		return sol.Trajectory.Last().Y, nil
	}

	x := x0.Clone()
	t := 0.0
	if o.Transient > 0 {
		var err error
		if x, err = advance(x, 0, o.Transient); err != nil {
			return 0, fmt.Errorf("transient: %w", err)
		}
		t = o.Transient
	}

	d0 := o.Perturbation
	xp := x.Clone()
	xp[0] += d0

	sumLog := 0.0
	for i := 0; i < o.Intervals; i++ {
		x1, err := advance(x, t, t+o.Interval)
		if err != nil {
			return 0, fmt.Errorf("interval %d: %w", i, err)
		}
		xp1, err := advance(xp, t, t+o.Interval)
		if err != nil {
			return 0, fmt.Errorf("interval %d (perturbed): %w", i, err)
		}
		t += o.Interval

		sep := xp1.Sub(x1).Norm()
		if sep == 0 {
			return 0, fmt.Errorf("trajectories merged at t=%g", t)
		}
		sumLog += math.Log(sep / d0)

		scale := d0 / sep
		for k := range xp1 {
			xp1[k] = x1[k] + (xp1[k]-x1[k])*scale
		}
		x, xp = x1, xp1
	}

	return sumLog / (float64(o.Intervals) * o.Interval), nil
}
