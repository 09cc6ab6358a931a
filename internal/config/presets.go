package config

import (
	"sort"

	"github.com/san-kum/dynode/internal/physics"
	"github.com/san-kum/dynode/internal/solver"
)

func preset(model string, tf, tol float64, out solver.Output, y0 []float64) *Config {
	cfg := &Config{Model: model, TF: tf, Y0: y0, Solver: solver.DefaultConfig()}
	cfg.Solver.RTol = tol
	cfg.Solver.ATol = tol
	cfg.Solver.Output = out
	return cfg
}

func withParams(cfg *Config, params map[string]float64) *Config {
	cfg.Params = params
	return cfg
}

var (
	leo       = physics.LowEarthOrbit()
	unitOrbit = physics.CircularOrbit{Mu: 1, R: 1}
	halo      = []float64(physics.NewCR3BP(physics.EarthMoonMu).DefaultState())
)

// Presets reproduce the reference runs for each model. The long variants
// record only the final state.
var Presets = map[string]map[string]*Config{
	"lorenz": {
		"attractor": preset("lorenz", 50, 1e-9, solver.OutputDense, []float64{1, 1, 1}),
		"long":      preset("lorenz", 10_000, 1e-12, solver.OutputFinal, []float64{1, 1, 1}),
	},
	"rossler": {
		"attractor": preset("rossler", 200, 1e-9, solver.OutputDense, []float64{1, 1, 1}),
	},
	"vanderpol": {
		"limit_cycle": withParams(preset("vanderpol", 100, 1e-12, solver.OutputDense, []float64{0, 0.1}), map[string]float64{"mu": 0.2}),
		"relaxation":  withParams(preset("vanderpol", 50, 1e-8, solver.OutputSteps, []float64{2, 0}), map[string]float64{"mu": 5}),
	},
	"pendulum": {
		"small": preset("pendulum", 20, 1e-10, solver.OutputDense, []float64{0.2, 0}),
		"large": preset("pendulum", 20, 1e-10, solver.OutputDense, []float64{2.5, 0}),
	},
	"twobody": {
		"leo":        withParams(preset("twobody", 10*leo.Period(), 1e-12, solver.OutputDense, leo.Initial()), map[string]float64{"mu": physics.EarthMu}),
		"leo_long":   withParams(preset("twobody", 1000*leo.Period(), 1e-12, solver.OutputFinal, leo.Initial()), map[string]float64{"mu": physics.EarthMu}),
		"normalized": withParams(preset("twobody", 1000*unitOrbit.Period(), 1e-12, solver.OutputFinal, unitOrbit.Initial()), map[string]float64{"mu": 1}),
	},
	"cr3bp": {
		"halo":    withParams(preset("cr3bp", physics.HaloPeriod, 1e-12, solver.OutputDense, halo), map[string]float64{"mu": physics.EarthMoonMu}),
		"halo_10": withParams(preset("cr3bp", 10*physics.HaloPeriod, 1e-12, solver.OutputSteps, halo), map[string]float64{"mu": physics.EarthMoonMu}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
