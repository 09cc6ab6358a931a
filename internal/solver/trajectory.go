package solver

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/dynode/internal/dynamo"
	"github.com/san-kum/dynode/internal/integrators"
)

// Point is one accepted solution sample.
type Point struct {
	T float64      `json:"t"`
	Y dynamo.State `json:"y"`
}

// Trajectory is the ordered record of a solve. Times are strictly monotone
// in the integration direction. When solved with dense output, segment i
// spans points i and i+1.
type Trajectory struct {
	points   []Point
	segments []*integrators.Segment
	dir      float64
	keepAll  bool
	sealed   bool
}

func newTrajectory(t0 float64, y0 dynamo.State, dir float64, out Output) *Trajectory {
	tr := &Trajectory{dir: dir, keepAll: out != OutputFinal}
	tr.points = append(tr.points, Point{T: t0, Y: y0.Clone()})
	if out == OutputDense {
		tr.segments = make([]*integrators.Segment, 0)
	}
	return tr
}

// NewTrajectory builds a sealed trajectory from stored points, as loaded
// from disk. Points must already be ordered.
func NewTrajectory(points []Point) (*Trajectory, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("empty trajectory")
	}
	dir := 1.0
	if len(points) > 1 && points[1].T < points[0].T {
		dir = -1
	}
	for i := 1; i < len(points); i++ {
		if dir*(points[i].T-points[i-1].T) <= 0 {
			return nil, fmt.Errorf("trajectory times not strictly monotone at index %d", i)
		}
	}
	tr := &Trajectory{dir: dir, keepAll: true, sealed: true}
	tr.points = make([]Point, len(points))
	copy(tr.points, points)
	return tr, nil
}

func (tr *Trajectory) record(t float64, y dynamo.State, seg *integrators.Segment) {
	if tr.sealed {
		return
	}
	p := Point{T: t, Y: y}
	if !tr.keepAll && len(tr.points) == 2 {
		tr.points[1] = p
		return
	}
	tr.points = append(tr.points, p)
	if tr.segments != nil {
		tr.segments = append(tr.segments, seg)
	}
}

func (tr *Trajectory) seal() { tr.sealed = true }

func (tr *Trajectory) Len() int { return len(tr.points) }

func (tr *Trajectory) At(i int) Point { return tr.points[i] }

func (tr *Trajectory) First() Point { return tr.points[0] }

func (tr *Trajectory) Last() Point { return tr.points[len(tr.points)-1] }

// Direction is +1 for forward and -1 for backward solves.
func (tr *Trajectory) Direction() float64 { return tr.dir }

// Dense reports whether Eval is available.
func (tr *Trajectory) Dense() bool { return tr.segments != nil }

func (tr *Trajectory) Times() []float64 {
	ts := make([]float64, len(tr.points))
	for i, p := range tr.points {
		ts[i] = p.T
	}
	return ts
}

// States returns the recorded states. The slices are shared with the
// trajectory and must not be modified.
func (tr *Trajectory) States() []dynamo.State {
	ys := make([]dynamo.State, len(tr.points))
	for i, p := range tr.points {
		ys[i] = p.Y
	}
	return ys
}

// Component returns the i-th state component of every point.
func (tr *Trajectory) Component(i int) []float64 {
	out := make([]float64, len(tr.points))
	for k, p := range tr.points {
		out[k] = p.Y[i]
	}
	return out
}

// Points returns a deep copy of the recorded points.
func (tr *Trajectory) Points() []Point {
	out := make([]Point, len(tr.points))
	for i, p := range tr.points {
		out[i] = Point{T: p.T, Y: p.Y.Clone()}
	}
	return out
}

// Each calls fn for every point in order until fn returns false.
func (tr *Trajectory) Each(fn func(i int, p Point) bool) {
	for i, p := range tr.points {
		if !fn(i, p) {
			return
		}
	}
}

// search returns the first index whose time is at or beyond t in the
// integration direction.
func (tr *Trajectory) search(t float64) int {
	return sort.Search(len(tr.points), func(i int) bool {
		return tr.dir*tr.points[i].T >= tr.dir*t
	})
}

// Nearest returns the recorded point closest in time to t.
func (tr *Trajectory) Nearest(t float64) Point {
	i := tr.search(t)
	switch {
	case i == 0:
		return tr.points[0]
	case i == len(tr.points):
		return tr.Last()
	}
	if math.Abs(tr.points[i].T-t) < math.Abs(tr.points[i-1].T-t) {
		return tr.points[i]
	}
	return tr.points[i-1]
}

// Contains reports whether t lies within the solved interval.
func (tr *Trajectory) Contains(t float64) bool {
	a, b := tr.dir*tr.First().T, tr.dir*tr.Last().T
	return tr.dir*t >= a && tr.dir*t <= b
}

// Eval returns the state at any t in the solved interval using the dense
// segments.
func (tr *Trajectory) Eval(t float64) (dynamo.State, error) {
	if !tr.Dense() {
		return nil, ErrNoDenseOutput
	}
	if !tr.Contains(t) {
		return nil, fmt.Errorf("%w: t=%g not in [%g, %g]", ErrOutsideSpan, t, tr.First().T, tr.Last().T)
	}
	i := tr.search(t)
	if i < len(tr.points) && tr.points[i].T == t {
		return tr.points[i].Y.Clone(), nil
	}
	return tr.segments[i-1].Eval(t), nil
}

// Resample evaluates the dense output at each of times.
func (tr *Trajectory) Resample(times []float64) ([]Point, error) {
	out := make([]Point, 0, len(times))
	for _, t := range times {
		y, err := tr.Eval(t)
		if err != nil {
			return nil, err
		}
		out = append(out, Point{T: t, Y: y})
	}
	return out, nil
}

// Uniform returns n+1 evenly spaced times across the solved interval.
func (tr *Trajectory) Uniform(n int) []float64 {
	if n < 1 {
		n = 1
	}
	t0, t1 := tr.First().T, tr.Last().T
	ts := make([]float64, n+1)
	for i := range ts {
		ts[i] = t0 + (t1-t0)*float64(i)/float64(n)
	}
	ts[n] = t1
	return ts
}
