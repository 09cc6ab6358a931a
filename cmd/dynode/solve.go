package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/san-kum/dynode/internal/analysis"
	"github.com/san-kum/dynode/internal/config"
	"github.com/san-kum/dynode/internal/dynamo"
	"github.com/san-kum/dynode/internal/experiment"
	"github.com/san-kum/dynode/internal/integrators"
	"github.com/san-kum/dynode/internal/solver"
	"github.com/san-kum/dynode/internal/viz"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

func newSolveCmd() *cobra.Command {
	var (
		flags    runFlags
		save     bool
		saveConf string
	)
	cmd := &cobra.Command{
		Use:   "solve [model]",
		Short: "solve a model and store the trajectory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.build(cmd, args[0])
			if err != nil {
				return err
			}
			if saveConf != "" {
				if err := config.Save(saveConf, cfg); err != nil {
					return err
				}
			}

			exp, err := experiment.New(experiment.NewRegistry(), cfg)
			if err != nil {
				return err
			}

			fmt.Println(titleStyle.Render(fmt.Sprintf("solving %s with %s", cfg.Model, cfg.Solver.Method)))
			sol, values, err := exp.Run(cmd.Context(), solver.WithLogger(logger))
			if err != nil {
				printFailure(err)
				return err
			}
			printSolution(sol, values)

			if !save {
				return nil
			}
			st := openStore()
			if err := st.Init(); err != nil {
				return err
			}
			runID, err := st.Save(cfg, sol, exp.Labels(), values)
			if err != nil {
				return err
			}
			fmt.Printf("\nrun id: %s\n", runID)
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&save, "save", true, "store the run")
	cmd.Flags().StringVar(&saveConf, "save-config", "", "write the resolved run file to this path")
	return cmd
}

func printSolution(sol *solver.Solution, values map[string]float64) {
	row := func(k, v string) { fmt.Println(keyStyle.Render(k) + v) }
	row("status", string(sol.Status))
	row("final t", fmt.Sprintf("%.12g", sol.Trajectory.Last().T))
	row("final y", fmt.Sprintf("%.12g", []float64(sol.Trajectory.Last().Y)))
	row("accepted", fmt.Sprintf("%d", sol.Stats.Accepted))
	row("rejected", fmt.Sprintf("%d", sol.Stats.Rejected))
	row("evals", fmt.Sprintf("%d", sol.Stats.Evals))
	row("h min/max", fmt.Sprintf("%.3e / %.3e", sol.Stats.HSmall, sol.Stats.HLarge))
	row("elapsed", sol.Stats.Elapsed.Round(time.Microsecond).String())
	row("points", fmt.Sprintf("%d", sol.Trajectory.Len()))

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		row(name, fmt.Sprintf("%.3e", values[name]))
	}
}

func printFailure(err error) {
	var se *solver.SolveError
	if !errors.As(err, &se) {
		return
	}
	fmt.Println(errStyle.Render("solve failed"))
	fmt.Printf("  at step %d, t=%.12g\n", se.Step, se.Time)
	fmt.Printf("  last state %.12g\n", []float64(se.State))
	fmt.Printf("  %d accepted, %d rejected, %d evals\n", se.Stats.Accepted, se.Stats.Rejected, se.Stats.Evals)
}

func newWatchCmd() *cobra.Command {
	var (
		flags runFlags
		delay time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch [model]",
		Short: "solve a model with a live progress view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.build(cmd, args[0])
			if err != nil {
				return err
			}
			exp, err := experiment.New(experiment.NewRegistry(), cfg)
			if err != nil {
				return err
			}

			viz.Themes = themeFirst(settings.GetString(keyTheme))
			sol, err := viz.Run(cmd.Context(), cfg.Model, exp.Labels(), exp.Problem(), cfg.Solver, delay)
			if err != nil {
				return err
			}
			printSolution(sol, nil)
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().DurationVar(&delay, "delay", 2*time.Millisecond, "pause after each accepted step")
	return cmd
}

// themeFirst orders the themes so the named one is shown first.
func themeFirst(name string) []viz.Theme {
	first := viz.GetTheme(name)
	out := []viz.Theme{first}
	for _, t := range viz.Themes {
		if t.Name != first.Name {
			out = append(out, t)
		}
	}
	return out
}

func newSweepCmd() *cobra.Command {
	var (
		flags   runFlags
		tols    []float64
		workers int
	)
	cmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "solve a model at a range of tolerances concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.build(cmd, args[0])
			if err != nil {
				return err
			}
			if len(tols) == 0 {
				return fmt.Errorf("no tolerances to sweep")
			}
			cfg.Solver.Output = solver.OutputFinal

			reg := experiment.NewRegistry()
			sort.Sort(sort.Reverse(sort.Float64Slice(tols)))
			jobs := make([]solver.Job, 0, len(tols))
			for _, tol := range tols {
				c := cfg.Clone()
				c.Solver = c.Solver.WithTolerances(tol, tol)
				exp, err := experiment.New(reg, c)
				if err != nil {
					return err
				}
				jobs = append(jobs, exp.Job(fmt.Sprintf("%.0e", tol)))
			}

			results := solver.Batch(cmd.Context(), jobs, workers)
			var ref dynamo.State
			if last := results[len(results)-1]; last.Err == nil {
				ref = last.Solution.Trajectory.Last().Y
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TOL\tACCEPTED\tREJECTED\tEVALS\tTIME\tDIFF FROM TIGHTEST")
			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(w, "%s\t-\t-\t-\t-\t%v\n", r.Name, r.Err)
					continue
				}
				diff := "-"
				if ref != nil {
					diff = fmt.Sprintf("%.3e", r.Solution.Trajectory.Last().Y.Sub(ref).Norm())
				}
				s := r.Solution.Stats
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%v\t%s\n", r.Name, s.Accepted, s.Rejected, s.Evals, s.Elapsed.Round(time.Microsecond), diff)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if failed := solver.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d of %d solves failed", len(failed), len(results))
			}
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().Float64SliceVar(&tols, "tols", []float64{1e-4, 1e-6, 1e-8, 1e-10, 1e-12}, "tolerances to sweep (rtol = atol)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent solves (0: GOMAXPROCS)")
	return cmd
}

func newCompareCmd() *cobra.Command {
	var (
		flags runFlags
		dt    float64
	)
	cmd := &cobra.Command{
		Use:   "compare [model]",
		Short: "compare fixed-step RK4 with the adaptive methods",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.build(cmd, args[0])
			if err != nil {
				return err
			}
			cfg.Solver.Output = solver.OutputFinal
			reg := experiment.NewRegistry()

			refCfg := cfg.Clone()
			refCfg.Solver = refCfg.Solver.WithTolerances(1e-13, 1e-13)
			refExp, err := experiment.New(reg, refCfg)
			if err != nil {
				return err
			}
			refSol, _, err := refExp.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("reference solve: %w", err)
			}
			ref := refSol.Trajectory.Last().Y

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "METHOD\tSTEPS\tEVALS\tTIME\tFINAL ERROR")

			p := refExp.Problem()
			start := time.Now()
			y, evals := integrators.NewRK4().Integrate(p.System, p.T0, p.TF, p.Y0, dt)
			fmt.Fprintf(w, "rk4 (dt=%g)\t%d\t%d\t%v\t%.3e\n", dt, evals/4, evals, time.Since(start).Round(time.Microsecond), y.Sub(ref).Norm())

			for _, method := range integrators.Methods() {
				c := cfg.Clone()
				c.Solver.Method = method
				exp, err := experiment.New(reg, c)
				if err != nil {
					return err
				}
				sol, _, err := exp.Run(cmd.Context())
				if err != nil {
					fmt.Fprintf(w, "%s\t-\t-\t-\t%v\n", method, err)
					continue
				}
				s := sol.Stats
				fmt.Fprintf(w, "%s (tol=%g)\t%d\t%d\t%v\t%.3e\n", method, c.Solver.RTol, s.Attempts(), s.Evals,
					s.Elapsed.Round(time.Microsecond), sol.Trajectory.Last().Y.Sub(ref).Norm())
			}
			return w.Flush()
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().Float64Var(&dt, "dt", 0.01, "RK4 timestep")
	return cmd
}

func newBifurcationCmd() *cobra.Command {
	var (
		flags     runFlags
		opts      analysis.BifurcationOptions
		transient float64
	)
	cmd := &cobra.Command{
		Use:   "bifurcation [model]",
		Short: "sweep a parameter and plot the peaks of one component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.build(cmd, args[0])
			if err != nil {
				return err
			}
			exp, err := experiment.New(experiment.NewRegistry(), cfg)
			if err != nil {
				return err
			}
			model, _ := experiment.NewRegistry().GetModel(cfg.Model)
			newSys := func() dynamo.System {
				sys := model.New()
				if tunable, ok := sys.(dynamo.Configurable); ok {
					for name, v := range cfg.Params {
						_ = tunable.SetParam(name, v)
					}
				}
				return sys
			}

			opts.Transient = transient
			opts.Record = math.Max(cfg.TF-cfg.T0-transient, 0)
			if opts.Record == 0 {
				return fmt.Errorf("tf must exceed the transient (%g)", transient)
			}
			points, err := analysis.BifurcationDiagram(cmd.Context(), newSys, exp.Problem().Y0, cfg.Solver, opts)
			if err != nil {
				return err
			}

			fmt.Printf("bifurcation of %s over %s in [%g, %g]\n\n", cfg.Model, opts.Param, opts.Min, opts.Max)
			fmt.Print(analysis.BifurcationToASCII(points, 70, 20))
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&opts.Param, "sweep", "mu", "parameter to sweep")
	cmd.Flags().Float64Var(&opts.Min, "min", 0.1, "lowest parameter value")
	cmd.Flags().Float64Var(&opts.Max, "max", 2, "highest parameter value")
	cmd.Flags().IntVar(&opts.Steps, "steps", 40, "parameter values")
	cmd.Flags().IntVar(&opts.StateIndex, "index", 0, "state component")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent solves (0: GOMAXPROCS)")
	cmd.Flags().Float64Var(&transient, "transient", 30, "time discarded before recording peaks")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			models := experiment.NewRegistry().ListModels()
			if len(args) == 1 {
				models = args
			}
			for _, m := range models {
				presets := config.ListPresets(m)
				if len(presets) == 0 {
					fmt.Printf("no presets for model: %s\n", m)
					continue
				}
				fmt.Printf("presets for %s:\n", m)
				for _, name := range presets {
					p := config.GetPreset(m, name)
					fmt.Printf("  %-12s tf=%-12.6g tol=%-8.0e output=%s\n", name, p.TF, p.Solver.RTol, p.Solver.Output)
				}
			}
			return nil
		},
	}
}
