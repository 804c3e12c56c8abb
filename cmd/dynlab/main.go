package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/san-kum/dynlab/internal/config"
	"github.com/san-kum/dynlab/internal/storage"
)

var (
	configFile string
	dataDir    string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger

	// problem flags
	equation   string
	symbols    []string
	t0, tn     float32
	samples    int
	alpha      float32
	beta       float32
	integrator string
	runName    string
	noSave     bool

	// command flags
	outFile     string
	phaseOut    bool
	period      float32
	sweepParam  string
	sweepFrom   float64
	sweepTo     float64
	sweepSteps  int
	transient   float64
	workers     int
	serveAddr   string
	plotWidth   int
	plotHeight  int
	plotOnly    string
	phaseWidth  int
	phaseHeight int
)

// main registers commands and flags and executes the root command.
// It exits the process with status 1 if command execution returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:               "dynlab",
		Short:             "second-order initial value problem lab",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", os.Getenv("DYNLAB_CONFIG"), "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default from config)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "solve x'' = f(x, v, t) and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSolve,
	}
	addProblemFlags(runCmd)
	runCmd.Flags().StringVar(&runName, "name", "", "run name (default preset name or \"run\")")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "solve without storing the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot position and velocity",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")
	plotCmd.Flags().StringVar(&plotOnly, "only", "", "plot a single series by symbol (or position, velocity)")

	lookupCmd := &cobra.Command{
		Use:   "lookup [run_id] [t...]",
		Short: "print the samples nearest the given times",
		Args:  cobra.MinimumNArgs(2),
		RunE:  lookupRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().Float32Var(&period, "period", 0, "plot a stroboscopic section with this period instead")
	phaseCmd.Flags().IntVar(&phaseWidth, "width", 60, "plot width")
	phaseCmd.Flags().IntVar(&phaseHeight, "height", 24, "plot height")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and stability analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [integrator...]",
		Short: "compare integrators on the same problem",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addProblemFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "solve a family of problems in parallel and plot late-time positions",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepProblem,
	}
	addProblemFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "alpha", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "first parameter value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1, "last parameter value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 40, "number of parameter values")
	sweepCmd.Flags().Float64Var(&transient, "transient", 0.5, "fraction of each run to discard")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel solves (default GOMAXPROCS)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "render run plots to PNG or SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportImage,
	}
	exportPNGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file, .png or .svg (default <run_id>.png)")
	exportPNGCmd.Flags().BoolVar(&phaseOut, "phase", false, "plot the phase portrait instead of the trajectory")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	viewCmd := &cobra.Command{
		Use:   "view [run_id]",
		Short: "browse the samples of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  viewRun,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve stored runs over HTTP",
		Args:  cobra.NoArgs,
		RunE:  serveRuns,
	}
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "listen address")

	watchCmd := &cobra.Command{
		Use:   "watch [config]",
		Short: "re-solve the configured problem whenever the config file changes",
		Args:  cobra.ExactArgs(1),
		RunE:  watchConfig,
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, lookupCmd, phaseCmd, analyzeCmd,
		compareCmd, sweepCmd, exportJSONCmd, exportCSVCmd, exportPNGCmd, presetsCmd, viewCmd,
		serveCmd, watchCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// setup loads the config and installs the logger. Flags override config.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.LoadOrDefault(configFile)
	if err != nil {
		return err
	}

	if dataDir == "" {
		dataDir = cfg.DataDir
	}
	level := cfg.LogLevel
	if logLevel != "" {
		if err := level.UnmarshalText([]byte(logLevel)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
	}

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func openStore() (*storage.Store, error) {
	return storage.Open(dataDir)
}

func addProblemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&equation, "equation", "e", "", "right-hand side f(x, v, t)")
	cmd.Flags().StringSliceVar(&symbols, "symbols", nil, "time,position,velocity names (default t,x,v)")
	cmd.Flags().Float32Var(&t0, "t0", 0, "start of the interval")
	cmd.Flags().Float32Var(&tn, "tn", 0, "end of the interval (exclusive)")
	cmd.Flags().IntVarP(&samples, "samples", "n", 0, "number of samples")
	cmd.Flags().Float32Var(&alpha, "alpha", 0, "initial position")
	cmd.Flags().Float32Var(&beta, "beta", 0, "initial velocity")
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator (euler, rk4, verlet)")
}
