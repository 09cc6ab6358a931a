// Package export renders solved trajectories to image files.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/dynode/internal/solver"
)

const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

var formats = map[string]bool{"svg": true, "png": true, "pdf": true, "eps": true, "jpg": true, "jpeg": true, "tif": true, "tiff": true}

func label(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return fmt.Sprintf("x%d", i)
}

// TimeSeries plots the selected components against time. No components
// means all of them.
func TimeSeries(tr *solver.Trajectory, labels []string, comps []int, title string) (*plot.Plot, error) {
	dim := len(tr.First().Y)
	if len(comps) == 0 {
		for i := 0; i < dim; i++ {
			comps = append(comps, i)
		}
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t"
	p.Add(plotter.NewGrid())

	for n, c := range comps {
		if c < 0 || c >= dim {
			return nil, fmt.Errorf("component %d out of range for dimension %d", c, dim)
		}
		xys := make(plotter.XYs, tr.Len())
		tr.Each(func(i int, pt solver.Point) bool {
			xys[i].X = pt.T
			xys[i].Y = pt.Y[c]
			return true
		})
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(n)
		p.Add(line)
		p.Legend.Add(label(labels, c), line)
	}
	return p, nil
}

// Phase plots component y against component x.
func Phase(tr *solver.Trajectory, labels []string, x, y int, title string) (*plot.Plot, error) {
	dim := len(tr.First().Y)
	if x < 0 || y < 0 || x >= dim || y >= dim {
		return nil, fmt.Errorf("phase indices (%d, %d) out of range for dimension %d", x, y, dim)
	}

	xys := make(plotter.XYs, tr.Len())
	tr.Each(func(i int, pt solver.Point) bool {
		xys[i].X = pt.Y[x]
		xys[i].Y = pt.Y[y]
		return true
	})

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = label(labels, x)
	p.Y.Label.Text = label(labels, y)
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	line.Color = plotutil.Color(0)
	p.Add(line)
	return p, nil
}

// Format returns the image format implied by path's extension.
func Format(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if !formats[ext] {
		return "", fmt.Errorf("unsupported plot format %q", filepath.Ext(path))
	}
	return ext, nil
}

// Save writes p to path in the format named by its extension.
func Save(p *plot.Plot, path string, width, height vg.Length) error {
	if _, err := Format(path); err != nil {
		return err
	}
	return p.Save(width, height, path)
}

// Write renders p to w in the given format.
func Write(w io.Writer, p *plot.Plot, format string, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
