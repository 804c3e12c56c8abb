package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/dynlab/internal/analysis"
	"github.com/san-kum/dynlab/internal/api"
	"github.com/san-kum/dynlab/internal/config"
	"github.com/san-kum/dynlab/internal/dynamo"
	"github.com/san-kum/dynlab/internal/export"
	"github.com/san-kum/dynlab/internal/integrators"
	"github.com/san-kum/dynlab/internal/ivp"
	"github.com/san-kum/dynlab/internal/metrics"
	"github.com/san-kum/dynlab/internal/rhs"
	"github.com/san-kum/dynlab/internal/storage"
	"github.com/san-kum/dynlab/internal/viz"
)

// resolved is a problem ready to solve, with the names it came from.
type resolved struct {
	preset     string
	integrator string
	config     config.ProblemConfig
	problem    ivp.Problem
}

// resolveProblem starts from the loaded config, switches to the named preset
// if one is given and applies any flags set on cmd.
func resolveProblem(cmd *cobra.Command, preset string) (*resolved, error) {
	pc := cfg.Problem
	integName := cfg.Integrator
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
		pc = p.Problem
	}

	flags := cmd.Flags()
	if flags.Changed("equation") {
		pc.Equation = equation
	}
	if flags.Changed("symbols") {
		if len(symbols) != 3 {
			return nil, fmt.Errorf("--symbols needs three names, got %d", len(symbols))
		}
		pc.Symbols = ivp.Symbols{Time: symbols[0], Position: symbols[1], Velocity: symbols[2]}
	}
	if flags.Changed("t0") {
		pc.T0 = t0
	}
	if flags.Changed("tn") {
		pc.TN = tn
	}
	if flags.Changed("samples") {
		pc.Samples = samples
	}
	if flags.Changed("alpha") {
		pc.Alpha = alpha
	}
	if flags.Changed("beta") {
		pc.Beta = beta
	}
	if flags.Changed("integrator") {
		integName = integrator
	}

	if err := pc.Validate(); err != nil {
		return nil, err
	}
	p, err := pc.Build()
	if err != nil {
		return nil, err
	}
	return &resolved{preset: preset, integrator: integName, config: pc, problem: p}, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func runSolve(cmd *cobra.Command, args []string) error {
	r, err := resolveProblem(cmd, firstArg(args))
	if err != nil {
		return err
	}
	integ, err := integrators.Get(r.integrator)
	if err != nil {
		return err
	}

	solver := ivp.New(integ, ivp.WithLogger(logger))
	for _, m := range metrics.Defaults(r.preset) {
		solver.AddMetric(m)
	}

	fmt.Printf("solving %s'' = %s on [%g, %g) with %d samples (%s)\n",
		r.config.Symbols.Position, r.config.Equation, r.config.T0, r.config.TN, r.config.Samples, r.integrator)

	start := time.Now()
	sol, err := solver.Solve(cmd.Context(), r.problem)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	t, x, v, err := sol.Terminal()
	if err != nil {
		return err
	}
	sym := r.problem.Symbols
	fmt.Printf("solved in %s\n", elapsed)
	fmt.Printf("last sample: %s=%g %s=%g %s=%g\n", sym.Time, t, sym.Position, x, sym.Velocity, v)
	printMetrics(os.Stdout, sol.Metrics)

	if noSave {
		return nil
	}

	name := runName
	if name == "" {
		name = r.preset
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.Save(storage.RunMetadata{
		Name:       name,
		Integrator: r.integrator,
		Equation:   r.config.Equation,
		Symbols:    sym,
		T0:         r.config.T0,
		TN:         r.config.TN,
		Alpha:      r.config.Alpha,
		Beta:       r.config.Beta,
		Elapsed:    elapsed,
	}, sol)
	if err != nil {
		return err
	}
	fmt.Printf("saved: %s\n", id)
	return nil
}

func printMetrics(w io.Writer, ms map[string]float64) {
	if len(ms) == 0 {
		return
	}
	names := make([]string, 0, len(ms))
	for name := range ms {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "\nmetrics:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-18s %.6g\n", name, ms[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tEQUATION\tINTERVAL\tSAMPLES\tINTEG")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s''=%s\t[%g, %g)\t%d\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Symbols.Position,
			run.Equation,
			run.T0,
			run.TN,
			run.Samples,
			run.Integrator,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// loadRun opens the store and loads one run with its samples.
func loadRun(runID string) (*storage.RunMetadata, *ivp.Solution, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()
	return st.LoadSolution(runID)
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, sol, err := loadRun(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("%s'' = %s\n\n", meta.Symbols.Position, meta.Equation)
	switch plotOnly {
	case "":
		fmt.Println(viz.PlotSolution(sol, plotWidth, plotHeight))
	case sol.Position.Symbol(), "position":
		fmt.Println(viz.PlotSeries(sol.Position, plotWidth, plotHeight))
	case sol.Velocity.Symbol(), "velocity":
		fmt.Println(viz.PlotSeries(sol.Velocity, plotWidth, plotHeight))
	default:
		return fmt.Errorf("unknown series %q (want %s or %s)", plotOnly, sol.Position.Symbol(), sol.Velocity.Symbol())
	}
	return nil
}

func lookupRun(cmd *cobra.Command, args []string) error {
	_, sol, err := loadRun(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "QUERY\tINDEX\t%s\t%s\t%s\n",
		strings.ToUpper(sol.Time.Symbol()), strings.ToUpper(sol.Position.Symbol()), strings.ToUpper(sol.Velocity.Symbol()))
	for _, arg := range args[1:] {
		q, err := strconv.ParseFloat(arg, 32)
		if err != nil {
			return fmt.Errorf("invalid time %q: %w", arg, err)
		}
		index, err := sol.Position.Index(float32(q))
		if err != nil {
			fmt.Fprintf(w, "%s\t-\t%v\t\t\n", arg, err)
			continue
		}
		t, x, v, err := sol.At(index)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%g\t%g\t%g\n", arg, index, t, x, v)
	}
	return w.Flush()
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, sol, err := loadRun(args[0])
	if err != nil {
		return err
	}

	portrait := analysis.NewPhasePortrait(sol)
	label := "phase portrait"
	if period > 0 {
		portrait, err = analysis.StroboscopicSection(sol, period)
		if err != nil {
			return err
		}
		label = fmt.Sprintf("stroboscopic section, period %g", period)
	}

	fmt.Printf("%s: %s\n", label, meta.ID)
	fmt.Printf("%s vs %s, %d points\n\n", portrait.YLabel, portrait.XLabel, len(portrait.Points))
	fmt.Println(analysis.PhasePortraitToASCII(portrait, phaseWidth, phaseHeight))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, sol, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("%s'' = %s\n\n", meta.Symbols.Position, meta.Equation)

	ps := analysis.PowerSpectrum(sol.Position.Float64s())
	if len(ps) > 8 {
		plotData := ps[:len(ps)/4+1]
		fmt.Println(asciigraph.Plot(plotData,
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum ("+sol.Position.Symbol()+")"),
		))
		fmt.Println()
	}

	freq, err := analysis.DominantFrequency(sol.Position)
	if err != nil {
		return err
	}
	fmt.Printf("dominant frequency: %.4f\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.4f\n", 1.0/freq)
	}

	// The stored equation is enough to rebuild the system.
	e, err := rhs.Compile(meta.Equation, meta.Symbols)
	if err != nil {
		logger.Warn("skipping lyapunov estimate", "error", err)
		return nil
	}
	integ, err := integrators.Get(meta.Integrator)
	if err != nil {
		return err
	}
	p := ivp.Problem{
		T0: meta.T0, TN: meta.TN, Samples: meta.Samples,
		Alpha: meta.Alpha, Beta: meta.Beta, Field: e.Field(), Symbols: meta.Symbols,
	}
	if err := p.Validate(); err != nil {
		return err
	}
	lambda := analysis.LyapunovExponent(p.Field, integ, dynamo.Vector{p.Alpha, p.Beta}, p.T0, p.StepSize(), p.Samples, 1e-4)
	fmt.Printf("largest lyapunov exponent: %.4f", lambda)
	if lambda > 0.01 {
		fmt.Print(" (chaotic)")
	}
	fmt.Println()
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	names := args[1:]
	if len(names) == 0 {
		names = integrators.Names()
	}

	fmt.Printf("comparing integrators on %s\n\n", args[0])
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tFINAL X\tFINAL V\tENERGY DRIFT\tSTABLE\tTIME")

	for _, name := range names {
		// Each integrator gets its own compiled problem and metrics.
		r, err := resolveProblem(cmd, args[0])
		if err != nil {
			return err
		}
		integ, err := integrators.Get(name)
		if err != nil {
			return err
		}
		solver := ivp.New(integ, ivp.WithLogger(logger))
		for _, m := range metrics.Defaults(r.preset) {
			solver.AddMetric(m)
		}

		start := time.Now()
		sol, err := solver.Solve(cmd.Context(), r.problem)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		elapsed := time.Since(start)

		_, x, v, err := sol.Terminal()
		if err != nil {
			return err
		}
		drift := "-"
		if d, ok := sol.Metrics["energy_drift"]; ok {
			drift = fmt.Sprintf("%.3e", d)
		}
		fmt.Fprintf(w, "%s\t%.6g\t%.6g\t%s\t%.1f%%\t%s\n",
			name, x, v, drift, 100*sol.Metrics["stability"], elapsed.Round(time.Microsecond))
	}
	return w.Flush()
}

func sweepProblem(cmd *cobra.Command, args []string) error {
	r, err := resolveProblem(cmd, firstArg(args))
	if err != nil {
		return err
	}
	factory, err := integrators.Factory(r.integrator)
	if err != nil {
		return err
	}

	ens := ivp.NewEnsemble(factory, workers).WithLogger(logger)
	fmt.Printf("sweeping %s from %g to %g (%d steps)\n\n", sweepParam, sweepFrom, sweepTo, sweepSteps)

	start := time.Now()
	data, err := analysis.Sweep(cmd.Context(), ens, r.problem, sweepParam, sweepFrom, sweepTo, sweepSteps, transient)
	if err != nil {
		return err
	}
	fmt.Println(analysis.SweepToASCII(data, 80, 24))
	fmt.Printf("\n%d solves in %s\n", len(data), time.Since(start).Round(time.Millisecond))
	return nil
}

// output returns stdout or the -o file.
func output() (io.WriteCloser, error) {
	if outFile == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outFile)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, sol, err := loadRun(args[0])
	if err != nil {
		return err
	}
	out, err := output()
	if err != nil {
		return err
	}
	defer out.Close()

	if err := export.JSON(out, export.Run{
		Name: meta.Name, Equation: meta.Equation, Integrator: meta.Integrator, Solution: sol,
	}); err != nil {
		return err
	}
	if outFile != "" {
		fmt.Printf("exported to %s\n", outFile)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, sol, err := loadRun(args[0])
	if err != nil {
		return err
	}
	out, err := output()
	if err != nil {
		return err
	}
	defer out.Close()

	if err := export.CSV(out, sol); err != nil {
		return err
	}
	if outFile != "" {
		fmt.Printf("exported %d samples to %s\n", sol.Len(), outFile)
	}
	return nil
}

func exportImage(cmd *cobra.Command, args []string) error {
	meta, sol, err := loadRun(args[0])
	if err != nil {
		return err
	}
	run := export.Run{Name: meta.Name, Equation: meta.Equation, Integrator: meta.Integrator, Solution: sol}

	render := export.TrajectoryPlot
	if phaseOut {
		render = export.PhasePlot
	}
	p, err := render(run)
	if err != nil {
		return err
	}

	filename := outFile
	if filename == "" {
		filename = meta.ID + ".png"
	}
	if err := export.SaveImage(p, filename); err != nil {
		return err
	}
	fmt.Printf("saved %s\n", filename)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tEQUATION\tINTERVAL\tSAMPLES\tINITIAL")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		fmt.Fprintf(w, "%s\t%s''=%s\t[%g, %g)\t%d\t%s=%g %s=%g\n",
			name, p.Symbols.Position, p.Equation, p.T0, p.TN, p.Samples,
			p.Symbols.Position, p.Alpha, p.Symbols.Velocity, p.Beta)
	}
	return w.Flush()
}

func viewRun(cmd *cobra.Command, args []string) error {
	meta, sol, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return viz.Browse(fmt.Sprintf("%s  %s'' = %s", meta.ID, meta.Symbols.Position, meta.Equation), sol)
}

func serveRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	return api.Serve(cmd.Context(), serveAddr, api.NewRouter(st), logger)
}

func watchConfig(cmd *cobra.Command, args []string) error {
	logger.Info("watching config", "path", args[0])
	return config.Watch(cmd.Context(), args[0], func(c *config.Config) {
		p, err := c.Problem.Build()
		if err != nil {
			logger.Error("build problem failed", "error", err)
			return
		}
		integ, err := integrators.Get(c.Integrator)
		if err != nil {
			logger.Error("unknown integrator", "error", err)
			return
		}
		solver := ivp.New(integ, ivp.WithLogger(logger))
		for _, m := range metrics.Defaults("") {
			solver.AddMetric(m)
		}

		sol, err := solver.Solve(cmd.Context(), p)
		if err != nil {
			logger.Error("solve failed", "error", err)
			return
		}
		_, x, v, err := sol.Terminal()
		if err != nil {
			logger.Error("solve failed", "error", err)
			return
		}
		fmt.Printf("\n%s'' = %s  [%g, %g)  %s\n", p.Symbols.Position, c.Problem.Equation, p.T0, p.TN, c.Integrator)
		fmt.Println(viz.PlotSolution(sol, 80, 12))
		fmt.Printf("final %s=%g %s=%g\n", p.Symbols.Position, x, p.Symbols.Velocity, v)
	})
}
