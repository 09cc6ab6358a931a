package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/san-kum/dynode/internal/config"
	"github.com/san-kum/dynode/internal/solver"
)

// runFlags are the flags shared by every command that solves a model.
type runFlags struct {
	preset     string
	configFile string
	method     string
	rtol, atol float64
	t0, tf     float64
	y0         []float64
	params     map[string]string
	output     string
	h0, hmax   float64
	maxSteps   int
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	def := solver.DefaultConfig()
	fs.StringVar(&f.preset, "preset", "", "use preset configuration")
	fs.StringVar(&f.configFile, "config", "", "run file path (yaml)")
	fs.StringVar(&f.method, "method", def.Method, "integration method (dop853, dopri5)")
	fs.Float64Var(&f.rtol, "rtol", def.RTol, "relative tolerance")
	fs.Float64Var(&f.atol, "atol", def.ATol, "absolute tolerance")
	fs.Float64Var(&f.t0, "t0", 0, "initial time")
	fs.Float64Var(&f.tf, "tf", config.DefaultTF, "final time")
	fs.Float64SliceVar(&f.y0, "y0", nil, "initial state (default: model default)")
	fs.StringToStringVar(&f.params, "param", nil, "model parameter, e.g. --param mu=0.5")
	fs.StringVar(&f.output, "output", string(def.Output), "recorded output (steps, dense, final)")
	fs.Float64Var(&f.h0, "h0", 0, "initial step (0: estimate)")
	fs.Float64Var(&f.hmax, "hmax", 0, "largest step (0: unbounded)")
	fs.IntVar(&f.maxSteps, "max-steps", def.MaxSteps, "accepted step limit")
}

// build resolves the run configuration for model. Flags override the run
// file, which overrides the preset.
func (f *runFlags) build(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Model = model

	if f.preset != "" {
		p := config.GetPreset(model, f.preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", f.preset, config.ListPresets(model))
		}
		cfg = p
	}

	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if loaded.Model != model {
			return nil, fmt.Errorf("run file is for model %s, not %s", loaded.Model, model)
		}
		cfg = loaded
	}

	fs := cmd.Flags()
	if fs.Changed("method") {
		cfg.Solver.Method = f.method
	}
	if fs.Changed("rtol") {
		cfg.Solver.RTol = f.rtol
	}
	if fs.Changed("atol") {
		cfg.Solver.ATol = f.atol
	}
	if fs.Changed("t0") {
		cfg.T0 = f.t0
	}
	if fs.Changed("tf") {
		cfg.TF = f.tf
	}
	if fs.Changed("y0") {
		cfg.Y0 = append([]float64(nil), f.y0...)
	}
	if fs.Changed("output") {
		out, err := solver.ParseOutput(f.output)
		if err != nil {
			return nil, err
		}
		cfg.Solver.Output = out
	}
	if fs.Changed("h0") {
		cfg.Solver.H0 = f.h0
	}
	if fs.Changed("hmax") {
		cfg.Solver.HMax = f.hmax
	}
	if fs.Changed("max-steps") {
		cfg.Solver.MaxSteps = f.maxSteps
	}
	if len(f.params) > 0 && cfg.Params == nil {
		cfg.Params = make(map[string]float64, len(f.params))
	}
	for name, raw := range f.params {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", name, err)
		}
		cfg.Params[name] = v
	}

	return cfg, cfg.Validate()
}
