package experiment

import (
	"context"
	"testing"

	"github.com/san-kum/dynode/internal/config"
	"github.com/san-kum/dynode/internal/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryModels(t *testing.T) {
	reg := NewRegistry()
	names := reg.ListModels()
	assert.Equal(t, []string{"cr3bp", "lorenz", "pendulum", "rossler", "twobody", "vanderpol"}, names)

	for _, name := range names {
		m, err := reg.GetModel(name)
		require.NoError(t, err)
		sys := m.New()
		assert.Len(t, m.Initial(), sys.Dim(), name)
		assert.Len(t, m.Labels, sys.Dim(), name)
	}

	_, err := reg.GetModel("nope")
	assert.Error(t, err)
	assert.Contains(t, reg.ListMethods(), "dop853")
}

func TestNewAppliesParams(t *testing.T) {
	cfg := config.GetPreset("vanderpol", "relaxation")
	e, err := New(NewRegistry(), cfg)
	require.NoError(t, err)

	params := e.System().(interface{ Params() map[string]float64 }).Params()
	assert.Equal(t, 5.0, params["mu"])
	assert.Equal(t, []float64{2, 0}, []float64(e.Problem().Y0))
}

func TestNewDefaultState(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Model = "cr3bp"
	e, err := New(NewRegistry(), cfg)
	require.NoError(t, err)
	assert.Len(t, e.Problem().Y0, 6)
}

func TestNewErrors(t *testing.T) {
	reg := NewRegistry()

	cfg := config.DefaultConfig()
	cfg.Model = "unknown"
	_, err := New(reg, cfg)
	assert.Error(t, err)

	cfg = config.DefaultConfig()
	cfg.Params = map[string]float64{"omega": 1}
	_, err = New(reg, cfg)
	assert.Error(t, err)

	cfg = config.DefaultConfig()
	cfg.Y0 = []float64{1, 2}
	_, err = New(reg, cfg)
	assert.Error(t, err)

	cfg = config.DefaultConfig()
	cfg.Solver.RTol = -1
	_, err = New(reg, cfg)
	assert.Error(t, err)
}

func TestRunHalo(t *testing.T) {
	e, err := New(NewRegistry(), config.GetPreset("cr3bp", "halo"))
	require.NoError(t, err)

	sol, values, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, solver.StatusCompleted, sol.Status)
	assert.Less(t, values["jacobi_drift"], 1e-10)

	y0 := e.Problem().Y0
	assert.InDelta(t, 0, sol.Trajectory.Last().Y.Sub(y0).Norm(), 1e-6)
}
