package viz

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/dynode/internal/dynamo"
	"github.com/san-kum/dynode/internal/solver"
)

const (
	trailCapacity   = 2000
	historyCapacity = 120
	canvasWidth     = 48
	canvasHeight    = 16
)

// StepMsg carries one accepted step into the watch model.
type StepMsg solver.StepInfo

// DoneMsg reports the end of the watched solve.
type DoneMsg struct {
	Solution *solver.Solution
	Err      error
}

// Watch is a Bubble Tea model showing an adaptive solve as it runs: the
// progress through the span, step statistics, a step size history and a
// phase trail of two components.
type Watch struct {
	title      string
	labels     []string
	t0, tf     float64
	xIdx, yIdx int
	stop       func()

	last     solver.StepInfo
	rejected int
	xs, ys   []float64
	logH     []float64

	done     bool
	solution *solver.Solution
	err      error

	theme    int
	showHelp bool
	canvas   *Canvas
}

// NewWatch builds the model for p. stop is called when the user quits
// before the solve ends.
func NewWatch(title string, labels []string, p dynamo.Problem, stop func()) Watch {
	w := Watch{
		title:  title,
		labels: labels,
		t0:     p.T0,
		tf:     p.TF,
		xIdx:   0,
		yIdx:   min(1, len(p.Y0)-1),
		stop:   stop,
		canvas: NewCanvas(canvasWidth, canvasHeight),
	}
	w.xs = append(w.xs, p.Y0[w.xIdx])
	w.ys = append(w.ys, p.Y0[w.yIdx])
	w.last.T = p.T0
	return w
}

func (w Watch) Init() tea.Cmd { return nil }

func (w Watch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !w.done && w.stop != nil {
				w.stop()
			}
			return w, tea.Quit
		case "t":
			w.theme = (w.theme + 1) % len(Themes)
		case "?":
			w.showHelp = !w.showHelp
		}
	case StepMsg:
		w.record(solver.StepInfo(msg))
	case DoneMsg:
		w.done = true
		w.solution = msg.Solution
		w.err = msg.Err
	}
	return w, nil
}

func (w *Watch) record(info solver.StepInfo) {
	w.last = info
	w.rejected += info.Rejections

	w.xs = append(w.xs, info.Y[w.xIdx])
	w.ys = append(w.ys, info.Y[w.yIdx])
	if len(w.xs) > trailCapacity {
		w.xs = w.xs[len(w.xs)-trailCapacity:]
		w.ys = w.ys[len(w.ys)-trailCapacity:]
	}

	if info.H != 0 {
		w.logH = append(w.logH, math.Log10(math.Abs(info.H)))
		if len(w.logH) > historyCapacity {
			w.logH = w.logH[1:]
		}
	}
}

// Progress is the fraction of the span covered so far.
func (w Watch) Progress() float64 {
	if w.tf == w.t0 {
		return 1
	}
	return math.Max(0, math.Min(1, (w.last.T-w.t0)/(w.tf-w.t0)))
}

func (w Watch) Done() bool { return w.done }

func (w Watch) Err() error { return w.err }

func (w Watch) Solution() *solver.Solution { return w.solution }

func (w Watch) label(i int) string {
	if i < len(w.labels) {
		return w.labels[i]
	}
	return fmt.Sprintf("x%d", i)
}

func (w Watch) View() string {
	st := newStyles(Themes[w.theme])

	w.canvas.Clear()
	w.canvas.Polyline(w.xs, w.ys)
	phase := st.panel.Render(
		st.muted.Render(fmt.Sprintf("%s vs %s", w.label(w.yIdx), w.label(w.xIdx))) + "\n" + w.canvas.String(),
	)

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(w.title)) + "\n")

	status := st.ok.Render("SOLVING")
	switch {
	case w.done && w.err != nil:
		status = st.bad.Render("FAILED")
	case w.done && w.solution != nil && w.solution.Status == solver.StatusHalted:
		status = st.warn.Render("HALTED")
	case w.done:
		status = st.ok.Render("DONE")
	}
	s.WriteString(status + "\n\n")

	s.WriteString(ProgressBar(w.Progress(), 30) + fmt.Sprintf(" %5.1f%%\n\n", 100*w.Progress()))
	row := func(name, val string) {
		s.WriteString(st.label.Render(name) + st.value.Render(val) + "\n")
	}
	row("t", fmt.Sprintf("%.6g / %.6g", w.last.T, w.tf))
	row("steps", fmt.Sprintf("%d", w.last.Step))
	row("rejected", fmt.Sprintf("%d", w.rejected))
	row("h", fmt.Sprintf("%.3e", w.last.H))
	row("err norm", fmt.Sprintf("%.3f", w.last.ErrNorm))
	if w.solution != nil {
		row("evals", fmt.Sprintf("%d", w.solution.Stats.Evals))
		row("elapsed", w.solution.Stats.Elapsed.Round(time.Microsecond).String())
	}
	if w.err != nil {
		s.WriteString("\n" + st.bad.Render(w.err.Error()) + "\n")
	}

	if len(w.logH) > 1 {
		chart := asciigraph.Plot(w.logH, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("log10 |h|"))
		s.WriteString("\n" + chart + "\n")
	} else {
		s.WriteString("\n" + SparklineChart(w.logH, 30) + "\n")
	}

	s.WriteString(st.muted.Render("\nq:quit  t:theme  ?:help"))
	view := lipgloss.JoinHorizontal(lipgloss.Top, phase, "  ", s.String())

	if w.showHelp {
		help := st.panel.Render("q  stop the solve and quit\nt  cycle themes (" + strings.Join(ThemeNames(), ", ") + ")\n?  toggle this help")
		return help + "\n\n" + view
	}
	return view
}

// Feed returns an observer that forwards every accepted step to send,
// sleeping delay after each one so fast solves stay watchable.
func Feed(send func(tea.Msg), delay time.Duration) solver.Observer {
	return func(info solver.StepInfo) bool {
		info.Y = info.Y.Clone()
		send(StepMsg(info))
		if delay > 0 {
			time.Sleep(delay)
		}
		return true
	}
}

// Run solves p while showing the watch view and returns the outcome once
// the user quits.
func Run(ctx context.Context, title string, labels []string, p dynamo.Problem, cfg solver.Config, delay time.Duration, opts ...solver.Option) (*solver.Solution, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := tea.NewProgram(NewWatch(title, labels, p, cancel))
	go func() {
		opts := append(opts, solver.WithObserver(Feed(prog.Send, delay)))
		sol, err := solver.Solve(ctx, p, cfg, opts...)
		prog.Send(DoneMsg{Solution: sol, Err: err})
	}()

	final, err := prog.Run()
	if err != nil {
		return nil, err
	}
	w := final.(Watch)
	if !w.Done() {
		return nil, context.Canceled
	}
	return w.Solution(), w.Err()
}
