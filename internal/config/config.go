package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dynode/internal/solver"
)

const (
	DefaultModel = "lorenz"
	DefaultTF    = 50.0
)

// Config describes one run: which model to integrate, over which span,
// from which state and with which solver settings. An empty Y0 means the
// model's default state.
type Config struct {
	Model  string             `yaml:"model"`
	Params map[string]float64 `yaml:"params,omitempty"`
	T0     float64            `yaml:"t0"`
	TF     float64            `yaml:"tf"`
	Y0     []float64          `yaml:"y0,omitempty"`
	Solver solver.Config      `yaml:"solver"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:  DefaultModel,
		TF:     DefaultTF,
		Solver: solver.DefaultConfig(),
	}
}

// Load reads a YAML run file. Fields missing from the file keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy so presets are never modified through a
// returned config.
func (c *Config) Clone() *Config {
	out := *c
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	out.Y0 = append([]float64(nil), c.Y0...)
	if len(out.Y0) == 0 {
		out.Y0 = nil
	}
	out.Solver.RTolVec = append([]float64(nil), c.Solver.RTolVec...)
	out.Solver.ATolVec = append([]float64(nil), c.Solver.ATolVec...)
	if len(out.Solver.RTolVec) == 0 {
		out.Solver.RTolVec = nil
	}
	if len(out.Solver.ATolVec) == 0 {
		out.Solver.ATolVec = nil
	}
	return &out
}

// Validate checks the parts of c that do not depend on the model.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.T0 == c.TF {
		return fmt.Errorf("empty time span: t0 == tf == %g", c.T0)
	}
	if _, err := solver.ParseOutput(string(c.Solver.Output)); err != nil {
		return err
	}
	return nil
}
