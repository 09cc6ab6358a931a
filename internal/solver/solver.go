package solver

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/san-kum/dynode/internal/dynamo"
	"github.com/san-kum/dynode/internal/integrators"
)

// Status tells how a successful solve ended.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusHalted    Status = "halted"
)

// Solution is the result of a successful solve.
type Solution struct {
	Method     string
	Status     Status
	Trajectory *Trajectory
	Stats      Stats
}

// StepInfo describes an accepted step to an Observer.
type StepInfo struct {
	Step       int
	T          float64
	H          float64
	Y          dynamo.State
	ErrNorm    float64
	Rejections int
}

// Observer is called after every accepted step. Returning false halts the
// solve; the trajectory up to and including the step is kept. Y must not be
// modified.
type Observer func(StepInfo) bool

type Option func(*options)

type options struct {
	logger   zerolog.Logger
	observer Observer
	tableau  *integrators.Tableau
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithObserver(fn Observer) Option {
	return func(o *options) { o.observer = fn }
}

// WithTableau overrides Config.Method with a caller-supplied tableau.
func WithTableau(tab *integrators.Tableau) Option {
	return func(o *options) { o.tableau = tab }
}

// Solve integrates p from T0 to TF. Invalid problems and configs are
// rejected before any step with an error wrapping dynamo.ErrInvalidProblem.
// Fatal failures during stepping return *SolveError. Cancellation of ctx is
// checked between accepted steps.
func Solve(ctx context.Context, p dynamo.Problem, cfg Config, opts ...Option) (*Solution, error) {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	if cfg.Output == "" {
		cfg.Output = OutputSteps
	}
	tab := o.tableau
	if tab == nil {
		if err := cfg.Validate(len(p.Y0)); err != nil {
			return nil, err
		}
		tab, _ = integrators.Lookup(cfg.Method)
	} else {
		if err := cfg.validate(len(p.Y0), false); err != nil {
			return nil, err
		}
		if err := tab.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", dynamo.ErrInvalidProblem, err)
		}
	}

	r := newRun(p, cfg, tab, o)
	return r.solve(ctx)
}

type run struct {
	sys      dynamo.System
	cfg      Config
	tab      *integrators.Tableau
	stepper  *integrators.Stepper
	ctrl     *integrators.Controller
	tol      integrators.Tolerance
	log      zerolog.Logger
	observer Observer

	t0, tf, dir float64
	t, h        float64
	y, k1       dynamo.State

	tr    *Trajectory
	stats Stats
	start time.Time
}

func newRun(p dynamo.Problem, cfg Config, tab *integrators.Tableau, o options) *run {
	return &run{
		sys:     p.System,
		cfg:     cfg,
		tab:     tab,
		stepper: integrators.NewStepper(tab),
		ctrl: integrators.NewController(tab).
			WithFactors(cfg.Safety, cfg.MinScale, cfg.MaxScale).
			WithBounds(cfg.HMin, cfg.HMax),
		tol:      cfg.Tolerance(),
		log:      o.logger.With().Str("method", tab.Name).Logger(),
		observer: o.observer,
		t0:       p.T0,
		tf:       p.TF,
		dir:      p.Direction(),
		t:        p.T0,
		y:        p.Y0.Clone(),
		tr:       newTrajectory(p.T0, p.Y0, p.Direction(), cfg.Output),
	}
}

func (r *run) solve(ctx context.Context) (*Solution, error) {
	r.start = time.Now()

	r.k1 = r.sys.Derive(r.t, r.y)
	r.stats.Evals++
	if !r.k1.IsValid() {
		return nil, r.fail(fmt.Errorf("%w: initial derivative", dynamo.ErrNonFiniteState))
	}
	r.h = r.initialStep()

	r.log.Debug().
		Int("dim", len(r.y)).
		Float64("t0", r.t0).
		Float64("tf", r.tf).
		Float64("h0", r.h).
		Msg("solve started")

	status := StatusCompleted
	rejections := 0
	for r.dir*(r.tf-r.t) > 0 {
		if rejections == 0 {
			if err := ctx.Err(); err != nil {
				return nil, r.fail(fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, err))
			}
			if r.stats.Accepted >= r.cfg.MaxSteps {
				return nil, r.fail(fmt.Errorf("%w: %d accepted steps", dynamo.ErrMaxSteps, r.stats.Accepted))
			}
		}

		h, last := r.h, false
		if math.Abs(h) >= math.Abs(r.tf-r.t) || math.Abs(r.tf-(r.t+h)) <= 1e-12*math.Abs(r.tf) {
			h, last = r.tf-r.t, true
		}

		res := r.stepper.Step(r.sys, r.t, r.y, h, r.k1)
		r.stats.Evals += res.Evals
		if !res.Finite() {
			return nil, r.fail(fmt.Errorf("%w: stage values at t=%g, h=%g", dynamo.ErrNonFiniteState, r.t, h))
		}

		norm := r.ctrl.ErrorNorm(&res, r.tol)
		ok, hNext := r.ctrl.Evaluate(h, norm, rejections > 0)

		if !ok {
			r.stats.Rejected++
			rejections++
			r.log.Trace().
				Float64("t", r.t).
				Float64("h", h).
				Float64("err", norm).
				Int("consecutive", rejections).
				Msg("step rejected")

			if rejections > r.cfg.MaxRejections {
				return nil, r.fail(fmt.Errorf("%w: %d in a row at t=%g", dynamo.ErrMaxRejections, rejections, r.t))
			}
			floor := math.Max(r.cfg.HMin, 16*epsilon*math.Abs(r.t))
			if math.Abs(hNext) < floor {
				return nil, r.fail(fmt.Errorf("%w: |h|=%g below %g", dynamo.ErrStepSizeUnderflow, math.Abs(hNext), floor))
			}
			r.h = hNext
			continue
		}

		var seg *integrators.Segment
		if r.cfg.Output == OutputDense {
			before := res.Evals
			seg = r.stepper.Dense(r.sys, &res)
			r.stats.Evals += res.Evals - before
		}

		tNew := r.t + h
		if last {
			tNew = r.tf
		}
		r.t, r.y, r.k1 = tNew, res.Y, res.Last()
		r.tr.record(r.t, r.y, seg)
		r.stats.accept(h)

		if r.observer != nil && !r.observer(StepInfo{
			Step:       r.stats.Accepted,
			T:          r.t,
			H:          h,
			Y:          r.y,
			ErrNorm:    norm,
			Rejections: rejections,
		}) {
			status = StatusHalted
			break
		}

		rejections = 0
		r.h = hNext
	}

	r.tr.seal()
	r.stats.Elapsed = time.Since(r.start)
	r.log.Debug().
		Str("status", string(status)).
		Float64("t", r.t).
		Int("accepted", r.stats.Accepted).
		Int("rejected", r.stats.Rejected).
		Int("evals", r.stats.Evals).
		Dur("elapsed", r.stats.Elapsed).
		Msg("solve finished")

	return &Solution{
		Method:     r.tab.Name,
		Status:     status,
		Trajectory: r.tr,
		Stats:      r.stats,
	}, nil
}

const epsilon = 2.220446049250313e-16

func (r *run) initialStep() float64 {
	h := r.cfg.H0
	if h == 0 {
		var evals int
		h, evals = estimateStep(r.sys, r.t0, r.y, r.k1, r.dir, r.tab.Order, r.tol)
		r.stats.Evals += evals
	}
	h = math.Min(math.Abs(h), math.Abs(r.tf-r.t0))
	if r.cfg.HMax > 0 {
		h = math.Min(h, r.cfg.HMax)
	}
	h = math.Max(h, r.cfg.HMin)
	return r.dir * h
}

func (r *run) fail(err error) error {
	r.tr.seal()
	r.stats.Elapsed = time.Since(r.start)
	r.log.Warn().
		Err(err).
		Float64("t", r.t).
		Int("accepted", r.stats.Accepted).
		Int("rejected", r.stats.Rejected).
		Msg("solve failed")

	return &SolveError{
		Step:       r.stats.Attempts(),
		Time:       r.t,
		State:      r.y.Clone(),
		Trajectory: r.tr,
		Stats:      r.stats,
		Wrapped:    err,
	}
}
