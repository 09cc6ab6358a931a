package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/dynode/internal/config"
	"github.com/san-kum/dynode/internal/dynamo"
	"github.com/san-kum/dynode/internal/metrics"
	"github.com/san-kum/dynode/internal/solver"
)

// Experiment is a run configuration resolved against the registry: the
// system is built, its parameters applied and the problem validated.
type Experiment struct {
	cfg     *config.Config
	model   Model
	system  dynamo.System
	problem dynamo.Problem
}

func New(reg *Registry, cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	model, err := reg.GetModel(cfg.Model)
	if err != nil {
		return nil, err
	}

	sys := model.New()
	if len(cfg.Params) > 0 {
		tunable, ok := sys.(dynamo.Configurable)
		if !ok {
			return nil, fmt.Errorf("model %s has no parameters", cfg.Model)
		}
		for name, v := range cfg.Params {
			if err := tunable.SetParam(name, v); err != nil {
				return nil, err
			}
		}
	}

	y0 := dynamo.State(cfg.Y0)
	if len(y0) == 0 {
		y0 = model.Initial()
	}
	p, err := dynamo.NewProblem(sys, cfg.T0, cfg.TF, y0)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", cfg.Model, err)
	}
	if err := cfg.Solver.Validate(sys.Dim()); err != nil {
		return nil, err
	}

	return &Experiment{cfg: cfg, model: model, system: sys, problem: p}, nil
}

func (e *Experiment) Config() *config.Config  { return e.cfg }
func (e *Experiment) System() dynamo.System   { return e.system }
func (e *Experiment) Problem() dynamo.Problem { return e.problem }
func (e *Experiment) Labels() []string        { return e.model.Labels }

// Run solves the problem and measures the model's invariant drift over
// the recorded trajectory.
func (e *Experiment) Run(ctx context.Context, opts ...solver.Option) (*solver.Solution, map[string]float64, error) {
	sol, err := solver.Solve(ctx, e.problem, e.cfg.Solver, opts...)
	if err != nil {
		return nil, nil, err
	}
	ms := metrics.ForSystem(e.system)
	return sol, metrics.Evaluate(sol.Trajectory, ms...), nil
}

// Job wraps the experiment for solver.Batch.
func (e *Experiment) Job(name string, opts ...solver.Option) solver.Job {
	return solver.Job{Name: name, Problem: e.problem, Config: e.cfg.Solver, Options: opts}
}
