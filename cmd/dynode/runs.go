package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"

	"github.com/san-kum/dynode/internal/analysis"
	"github.com/san-kum/dynode/internal/config"
	"github.com/san-kum/dynode/internal/experiment"
	"github.com/san-kum/dynode/internal/export"
	"github.com/san-kum/dynode/internal/solver"
	"github.com/san-kum/dynode/internal/storage"
)

// loadRun resolves runID (or "latest") and reads its metadata and points.
func loadRun(runID string) (*storage.RunMetadata, *solver.Trajectory, error) {
	st := openStore()
	id, err := st.Resolve(runID)
	if err != nil {
		return nil, nil, err
	}
	meta, err := st.Load(id)
	if err != nil {
		return nil, nil, err
	}
	tr, err := st.LoadTrajectory(id)
	if err != nil {
		return nil, nil, err
	}
	return meta, tr, nil
}

func label(meta *storage.RunMetadata, i int) string {
	if i < len(meta.Labels) {
		return meta.Labels[i]
	}
	return fmt.Sprintf("x%d", i)
}

// outFile opens path for writing, or stdout when path is empty or "-".
func outFile(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := openStore().List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tMODEL\tMETHOD\tTIME\tSPAN\tRTOL\tPOINTS\tSTATUS")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t[%g, %.6g]\t%.0e\t%d\t%s\n",
					run.ID,
					run.Model,
					run.Method,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.T0, run.TF,
					run.Solver.RTol,
					run.Points,
					run.Status,
				)
			}
			return w.Flush()
		},
	}
}

func newPlotCmd() *cobra.Command {
	var maxPlots int
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, tr, err := loadRun(args[0])
			if err != nil {
				return err
			}
			if tr.Len() < 2 {
				return fmt.Errorf("run %s has %d points; solve with --output steps or dense to plot", meta.ID, tr.Len())
			}

			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("model: %s\n", meta.Model)
			fmt.Printf("samples: %d\n\n", tr.Len())

			numVars := min(len(tr.First().Y), maxPlots)
			for i := 0; i < numVars; i++ {
				graph := asciigraph.Plot(tr.Component(i),
					asciigraph.Height(10),
					asciigraph.Width(80),
					asciigraph.Caption(label(meta, i)+" vs step"),
				)
				fmt.Println(graph)
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxPlots, "max", 6, "most components to plot")
	return cmd
}

func newPhaseCmd() *cobra.Command {
	var xAxis, yAxis, section int
	cmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, tr, err := loadRun(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("phase space plot: %s\n", meta.ID)
			fmt.Printf("model: %s\n", meta.Model)
			fmt.Printf("x-axis: %s, y-axis: %s\n\n", label(meta, xAxis), label(meta, yAxis))

			if section >= 0 {
				cs, err := analysis.Section(tr, section, 0, xAxis, yAxis)
				if err != nil {
					return err
				}
				fmt.Printf("poincaré section at %s = 0 (upward): %d crossings\n\n", label(meta, section), len(cs))
				fmt.Print(analysis.PoincareSectionToASCII(cs, 70, 20))
				return nil
			}

			portrait, err := analysis.Portrait(tr, xAxis, yAxis, 0)
			if err != nil {
				return err
			}
			fmt.Print(analysis.PhasePortraitToASCII(portrait, 70, 20))
			return nil
		},
	}
	cmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	cmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")
	cmd.Flags().IntVar(&section, "section", -1, "state index whose upward zero crossings form a Poincaré section")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var (
		samples  int
		lyapunov bool
		lyOpts   analysis.LyapunovOptions
	)
	cmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectral and stability analysis of a stored run",
		Long: `Re-solves a stored run with dense output, reports the dominant period of
each component and the invariant drift, and optionally estimates the largest
Lyapunov exponent from the run's initial state.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if samples < 16 {
				return fmt.Errorf("--samples must be at least 16")
			}
			meta, tr, err := loadRun(args[0])
			if err != nil {
				return err
			}

			cfg := &config.Config{
				Model:  meta.Model,
				Params: meta.Params,
				T0:     meta.T0,
				TF:     meta.TF,
				Y0:     tr.First().Y,
				Solver: meta.Solver,
			}
			cfg.Solver.Output = solver.OutputDense
			exp, err := experiment.New(experiment.NewRegistry(), cfg)
			if err != nil {
				return err
			}
			sol, values, err := exp.Run(cmd.Context(), solver.WithLogger(logger))
			if err != nil {
				return err
			}

			fmt.Printf("analysis: %s\n", meta.ID)
			fmt.Printf("model: %s\n\n", meta.Model)

			_, power, err := analysis.Spectrum(sol.Trajectory, 0, samples)
			if err != nil {
				return err
			}
			fmt.Println(asciigraph.Plot(power[:len(power)/4],
				asciigraph.Height(12),
				asciigraph.Width(80),
				asciigraph.Caption("power spectrum ("+label(meta, 0)+")"),
			))
			fmt.Println()

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "COMPONENT\tDOMINANT PERIOD")
			for i := range sol.Trajectory.First().Y {
				period, err := analysis.DominantPeriod(sol.Trajectory, i, samples)
				if err != nil {
					fmt.Fprintf(w, "%s\t-\n", label(meta, i))
					continue
				}
				fmt.Fprintf(w, "%s\t%.6g\n", label(meta, i), period)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			names := make([]string, 0, len(values))
			for name := range values {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("%s: %.3e\n", name, values[name])
			}

			if lyapunov {
				lambda, err := analysis.LyapunovExponent(cmd.Context(), exp.System(), exp.Problem().Y0, cfg.Solver, lyOpts)
				if err != nil {
					return err
				}
				verdict := "regular"
				if lambda > 0.01 {
					verdict = "chaotic"
				}
				fmt.Printf("largest lyapunov exponent: %.4f (%s)\n", lambda, verdict)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&samples, "samples", 4096, "uniform samples for the spectrum")
	cmd.Flags().BoolVar(&lyapunov, "lyapunov", false, "estimate the largest Lyapunov exponent")
	cmd.Flags().Float64Var(&lyOpts.Transient, "transient", 20, "lyapunov: time discarded first")
	cmd.Flags().Float64Var(&lyOpts.Interval, "interval", 1, "lyapunov: renormalisation interval")
	cmd.Flags().IntVar(&lyOpts.Intervals, "intervals", 200, "lyapunov: number of intervals")
	return cmd
}

func newExportCSVCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, tr, err := loadRun(args[0])
			if err != nil {
				return err
			}
			f, err := outFile(out)
			if err != nil {
				return err
			}
			defer f.Close()

			w := csv.NewWriter(f)
			header := []string{"t"}
			for i := range tr.First().Y {
				header = append(header, label(meta, i))
			}
			if err := w.Write(header); err != nil {
				return err
			}
			for i := 0; i < tr.Len(); i++ {
				p := tr.At(i)
				row := []string{strconv.FormatFloat(p.T, 'g', -1, 64)}
				for _, v := range p.Y {
					row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
			w.Flush()
			return w.Error()
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newExportJSONCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, tr, err := loadRun(args[0])
			if err != nil {
				return err
			}
			f, err := outFile(out)
			if err != nil {
				return err
			}
			defer f.Close()
			return storage.ExportJSON(f, meta, tr)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newExportPlotCmd() *cobra.Command {
	var (
		out        string
		phase      bool
		xAxis      int
		yAxis      int
		components []int
	)
	cmd := &cobra.Command{
		Use:   "export-plot [run_id]",
		Short: "render a run to an image (svg, png, pdf)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			meta, tr, err := loadRun(args[0])
			if err != nil {
				return err
			}

			title := fmt.Sprintf("%s (%s, rtol=%g)", meta.Model, meta.Method, meta.Solver.RTol)
			var p *plot.Plot
			if phase {
				p, err = export.Phase(tr, meta.Labels, xAxis, yAxis, title)
			} else {
				p, err = export.TimeSeries(tr, meta.Labels, components, title)
			}
			if err != nil {
				return err
			}
			if err := export.Save(p, out, export.DefaultWidth, export.DefaultHeight); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output image path")
	cmd.Flags().BoolVar(&phase, "phase", false, "plot a phase portrait instead of time series")
	cmd.Flags().IntVar(&xAxis, "x-axis", 0, "phase: state index for x-axis")
	cmd.Flags().IntVar(&yAxis, "y-axis", 1, "phase: state index for y-axis")
	cmd.Flags().IntSliceVar(&components, "components", nil, "time series: state indices (default all)")
	return cmd
}
