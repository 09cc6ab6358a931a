package analysis

import (
	"fmt"

	"github.com/san-kum/dynode/internal/solver"
)

type PhasePoint struct{ X, Y float64 }

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []PhasePoint
}

// Portrait projects a trajectory onto components xIdx and yIdx. Dense
// trajectories are resampled at n uniform times; otherwise the accepted
// points are used directly.
func Portrait(tr *solver.Trajectory, xIdx, yIdx, n int) (*PhasePortrait2D, error) {
	dim := len(tr.First().Y)
	if xIdx < 0 || yIdx < 0 || xIdx >= dim || yIdx >= dim {
		return nil, fmt.Errorf("phase indices (%d, %d) out of range for dimension %d", xIdx, yIdx, dim)
	}

	portrait := &PhasePortrait2D{XIndex: xIdx, YIndex: yIdx}
	if tr.Dense() && n > 0 {
		pts, err := tr.Resample(tr.Uniform(n))
		if err != nil {
			return nil, err
		}
		portrait.Points = make([]PhasePoint, len(pts))
		for i, p := range pts {
			portrait.Points[i] = PhasePoint{p.Y[xIdx], p.Y[yIdx]}
		}
		return portrait, nil
	}

	portrait.Points = make([]PhasePoint, 0, tr.Len())
	tr.Each(func(_ int, p solver.Point) bool {
		portrait.Points = append(portrait.Points, PhasePoint{p.Y[xIdx], p.Y[yIdx]})
		return true
	})
	return portrait, nil
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	// pad by 10%
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := newCanvas(width, height)
	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	return renderCanvas(canvas)
}

// Crossing is one upward pass of the section plane.
type Crossing struct {
	T    float64
	X, Y float64
}

// Section records upward crossings of component crossIdx through
// threshold. On dense trajectories the crossing time is refined by
// bisection on the interpolant; otherwise it is interpolated linearly
// between accepted points.
func Section(tr *solver.Trajectory, crossIdx int, threshold float64, recordX, recordY int) ([]Crossing, error) {
	dim := len(tr.First().Y)
	for _, idx := range []int{crossIdx, recordX, recordY} {
		if idx < 0 || idx >= dim {
			return nil, fmt.Errorf("section index %d out of range for dimension %d", idx, dim)
		}
	}

	var out []Crossing
	for i := 1; i < tr.Len(); i++ {
		a, b := tr.At(i-1), tr.At(i)
		va, vb := a.Y[crossIdx]-threshold, b.Y[crossIdx]-threshold
		if !(va < 0 && vb >= 0) {
			continue
		}

		if !tr.Dense() {
			frac := va / (va - vb)
			lerp := func(k int) float64 { return a.Y[k] + frac*(b.Y[k]-a.Y[k]) }
			out = append(out, Crossing{
				T: a.T + frac*(b.T-a.T),
				X: lerp(recordX),
				Y: lerp(recordY),
			})
			continue
		}

		lo, hi := a.T, b.T
		for range 50 {
			mid := 0.5 * (lo + hi)
			y, err := tr.Eval(mid)
			if err != nil {
				return nil, err
			}
			if y[crossIdx] < threshold {
				lo = mid
			} else {
				hi = mid
			}
		}
		y, err := tr.Eval(hi)
		if err != nil {
			return nil, err
		}
		out = append(out, Crossing{T: hi, X: y[recordX], Y: y[recordY]})
	}
	return out, nil
}

// PoincareSectionToASCII converts section data to ASCII plot
func PoincareSectionToASCII(section []Crossing, width, height int) string {
	if len(section) == 0 {
		return "No crossings detected"
	}

	portrait := &PhasePortrait2D{Points: make([]PhasePoint, len(section))}
	for i, c := range section {
		portrait.Points[i] = PhasePoint{c.X, c.Y}
	}
	return PhasePortraitToASCII(portrait, width, height)
}
