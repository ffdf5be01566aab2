package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/quadsim/internal/config"
	"github.com/san-kum/quadsim/internal/control"
	"github.com/san-kum/quadsim/internal/experiment"
	"github.com/san-kum/quadsim/internal/logging"
	"github.com/san-kum/quadsim/internal/storage"
	"github.com/san-kum/quadsim/internal/viz"
)

var (
	dataDir  string
	logLevel string
	logDev   bool
	envFile  string

	configFile string
	preset     string
	tickPeriod float64
	frameDt    float64
	duration   float64
	mass       float64
	script     string
	noSave     bool

	addr    string
	thrusts []float64
	outPath string
)

var logger = zap.NewNop()

func main() {
	rootCmd := &cobra.Command{
		Use:   "quadsim",
		Short: "quadcopter flight dynamics",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(logLevel, logDev)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		// Default to the preset picker when no command is given
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPicker()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".quadsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logDev, "log-dev", false, "human readable console logs")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file with QUADSIM_* overrides")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a batch simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addFlightFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "fly interactively in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addFlightFlags(liveCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "fly in real time and stream poses over websocket",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	addFlightFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "fly the same setup at several constant thrust levels",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addFlightFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&thrusts, "thrusts", []float64{0, 0.1, 0.2, 0.3, 0.5, 1}, "thrust levels")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run samples to JSON, with world units and host rotator",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, name := range config.ListPresets() {
				fmt.Fprintf(w, "%s\t%s\n", name, config.Presets[name].Description)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, serveCmd, sweepCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, presetsCmd)
	rootCmd.AddCommand(batchCommands()...)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addFlightFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&tickPeriod, "tick", config.DefaultTickPeriod, "fixed dynamics period (s)")
	cmd.Flags().Float64Var(&frameDt, "frame", config.DefaultFrameDt, "input frame period (s)")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration (s)")
	cmd.Flags().Float64Var(&mass, "mass", 0, "quad mass (kg)")
	cmd.Flags().StringVar(&script, "script", "", "input script (yaml keyframes)")
}

// resolveConfig layers preset, config file, environment and flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p, err := config.GetPreset(preset)
		if err != nil {
			return nil, err
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, errors.WithMessage(err, "failed to load config")
		}
		if loaded.Name == "default" && preset != "" {
			loaded.Name = preset
		}
		cfg = loaded
	}

	if err := config.LoadEnvFiles(envFile); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("tick") {
		cfg.TickPeriod = tickPeriod
	}
	if flags.Changed("frame") {
		cfg.FrameDt = frameDt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("mass") {
		cfg.Quad.Mass = mass
	}
	if flags.Changed("script") {
		cfg.Input.Mode = config.InputScript
		cfg.Input.Script = script
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, nil, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("running %s simulation...\n", cfg.Name)
	start := time.Now()
	result, runErr := exp.Run(ctx)
	if result == nil {
		return runErr
	}
	elapsed := time.Since(start)

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(exp.Metadata(), result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	final := result.Final()
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("final position: %.3f %.3f %.3f m\n", final.Position[0], final.Position[1], final.Position[2])
	printMetrics(result.Metrics)

	return runErr
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

// buildLive wires a flight to a manual source for the terminal view. The
// terminal belongs to the TUI, so the flight logs nothing.
func buildLive(cfg *config.Config) (viz.Model, error) {
	manual := control.NewManual()
	exp, err := experiment.New(cfg, manual, nil)
	if err != nil {
		return viz.Model{}, err
	}
	return viz.NewModel(exp.Simulator(), manual, cfg.SimConfig(), cfg.UnitsPerMeter, cfg.Name), nil
}

func runLive(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		preset = args[0]
	}
	if preset == "" && configFile == "" {
		return runPicker()
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	m, err := buildLive(cfg)
	if err != nil {
		return err
	}
	return viz.Run(m)
}

func runPicker() error {
	names := config.ListPresets()
	presets := make([]viz.Preset, len(names))
	for i, name := range names {
		presets[i] = viz.Preset{Name: name, Description: config.Presets[name].Description}
	}

	return viz.RunPicker(viz.NewPicker(presets, func(name string) (viz.Model, error) {
		cfg, err := config.GetPreset(name)
		if err != nil {
			return viz.Model{}, err
		}
		return buildLive(cfg)
	}))
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := experiment.Sweep(ctx, cfg, thrusts, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "THRUST\tFINAL Z\tFINAL VZ\tMAX ALT\tGROUNDED")
	for i, r := range results {
		final := r.Final()
		fmt.Fprintf(w, "%.3f\t%.3f\t%.3f\t%.3f\t%.0f%%\n",
			thrusts[i],
			final.Position[2],
			final.Velocity[2],
			r.Metrics["max_altitude"],
			100*r.Metrics["ground_time"],
		)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tDURATION\tTICK\tSTEPS\tINPUT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.TickPeriod,
			run.Steps,
			run.InputMode,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	if len(samples) == 0 {
		return errors.New("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(samples))

	series := []struct {
		caption string
		value   func(i int) float64
	}{
		{"altitude z (m)", func(i int) float64 { return samples[i].Position[2] }},
		{"vertical speed vz (m/s)", func(i int) float64 { return samples[i].Velocity[2] }},
		{"horizontal x (m)", func(i int) float64 { return samples[i].Position[0] }},
		{"throttle", func(i int) float64 { return samples[i].Throttle }},
	}

	for _, s := range series {
		data := make([]float64, len(samples))
		for i := range samples {
			data[i] = s.value(i)
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// output returns stdout, or the --out file when given.
func output() (*os.File, func() error, error) {
	if outPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	if len(samples) == 0 {
		return errors.New("no data to export")
	}

	out, closeOut, err := output()
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(out, samples); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, result, err := st.LoadResult(runID)
	if err != nil {
		return err
	}

	out, closeOut, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(out, *meta, result.Samples); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}
