package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/dynode/internal/dynamo"
	"github.com/san-kum/dynode/internal/solver"
)

// BifurcationPoint holds the distinct peak values of one component for a
// parameter value.
type BifurcationPoint struct {
	Param  float64
	Values []float64
}

type BifurcationOptions struct {
	Param      string
	Min, Max   float64
	Steps      int
	StateIndex int
	Transient  float64
	Record     float64
	Sample     float64 // resampling interval used to locate peaks
	Workers    int
}

// BifurcationDiagram sweeps a parameter and records the local maxima of
// one state component after a transient. newSys must return a fresh
// Configurable system per call; the sweep solves parameter values
// concurrently through solver.Batch.
func BifurcationDiagram(ctx context.Context, newSys func() dynamo.System, x0 dynamo.State, cfg solver.Config, o BifurcationOptions) ([]BifurcationPoint, error) {
	if o.Steps < 2 {
		o.Steps = 2
	}
	if o.Sample <= 0 {
		o.Sample = 0.01
	}
	if o.StateIndex < 0 || o.StateIndex >= len(x0) {
		return nil, fmt.Errorf("state index %d out of range", o.StateIndex)
	}
	cfg.Output = solver.OutputDense

	step := (o.Max - o.Min) / float64(o.Steps-1)
	jobs := make([]solver.Job, o.Steps)
	for i := range jobs {
		param := o.Min + float64(i)*step
		sys := newSys()
		tunable, ok := sys.(dynamo.Configurable)
		if !ok {
			return nil, fmt.Errorf("system is not configurable")
		}
		if err := tunable.SetParam(o.Param, param); err != nil {
			return nil, err
		}
		p, err := dynamo.NewProblem(sys, 0, o.Transient+o.Record, x0)
		if err != nil {
			return nil, err
		}
		jobs[i] = solver.Job{Name: fmt.Sprintf("%s=%g", o.Param, param), Problem: p, Config: cfg}
	}

	results := solver.Batch(ctx, jobs, o.Workers)
	out := make([]BifurcationPoint, 0, len(results))
	for i, r := range results {
		if r.Err != nil {
			return nil, fmt.Errorf("%s: %w", r.Name, r.Err)
		}
		peaks, err := localMaxima(r.Solution.Trajectory, o.StateIndex, o.Transient, o.Sample)
		if err != nil {
			return nil, err
		}
		out = append(out, BifurcationPoint{Param: o.Min + float64(i)*step, Values: peaks})
	}
	return out, nil
}

func localMaxima(tr *solver.Trajectory, idx int, from, dt float64) ([]float64, error) {
	end := tr.Last().T
	var prev2, prev1 float64
	seen := make(map[float64]bool)
	var values []float64
	for n := 0; from+float64(n)*dt <= end; n++ {
		y, err := tr.Eval(from + float64(n)*dt)
		if err != nil {
			return nil, err
		}
		v := y[idx]
		if n >= 2 && prev1 > prev2 && prev1 >= v {
			key := math.Round(prev1*1e3) / 1e3
			if !seen[key] {
				seen[key] = true
				values = append(values, prev1)
			}
		}
		prev2, prev1 = prev1, v
	}
	sort.Float64s(values)
	return values, nil
}

// BifurcationToASCII converts bifurcation data to ASCII art
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var minVal, maxVal float64
	foundFirst := false
	for _, p := range data {
		for _, v := range p.Values {
			if !foundFirst {
				minVal, maxVal = v, v
				foundFirst = true
				continue
			}
			minVal = min(minVal, v)
			maxVal = max(maxVal, v)
		}
	}
	if !foundFirst {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := newCanvas(width, height)
	for i, p := range data {
		col := min(i*width/len(data), width-1)
		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}
	return renderCanvas(canvas)
}

func newCanvas(width, height int) [][]rune {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}
	return canvas
}

func renderCanvas(canvas [][]rune) string {
	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
