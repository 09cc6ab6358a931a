package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/dynode/internal/dynamo"
	"github.com/san-kum/dynode/internal/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trajectory(t *testing.T) *solver.Trajectory {
	t.Helper()
	sys := dynamo.Func(2, func(_ float64, x dynamo.State) dynamo.State {
		return dynamo.State{x[1], -x[0]}
	})
	p, err := dynamo.NewProblem(sys, 0, 10, dynamo.State{1, 0})
	require.NoError(t, err)
	sol, err := solver.Solve(context.Background(), p, solver.DefaultConfig())
	require.NoError(t, err)
	return sol.Trajectory
}

func TestTimeSeriesSVG(t *testing.T) {
	p, err := TimeSeries(trajectory(t), []string{"x", "v"}, nil, "oscillator")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, p, "svg", DefaultWidth, DefaultHeight))
	assert.Contains(t, buf.String(), "<svg")
	assert.Contains(t, buf.String(), "oscillator")
}

func TestPhasePNG(t *testing.T) {
	p, err := Phase(trajectory(t), nil, 0, 1, "")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "phase.png")
	require.NoError(t, Save(p, path, DefaultWidth, DefaultHeight))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestPlotErrors(t *testing.T) {
	tr := trajectory(t)

	_, err := TimeSeries(tr, nil, []int{2}, "")
	assert.Error(t, err)
	_, err = Phase(tr, nil, 0, 3, "")
	assert.Error(t, err)

	p, err := TimeSeries(tr, nil, []int{0}, "")
	require.NoError(t, err)
	assert.Error(t, Save(p, filepath.Join(t.TempDir(), "plot.txt"), DefaultWidth, DefaultHeight))
}

func TestFormat(t *testing.T) {
	f, err := Format("out/Run.SVG")
	require.NoError(t, err)
	assert.Equal(t, "svg", f)

	_, err = Format("plot")
	assert.Error(t, err)
}
