package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/quadsim/internal/analysis"
	"github.com/san-kum/quadsim/internal/automation"
	"github.com/san-kum/quadsim/internal/export"
	"github.com/san-kum/quadsim/internal/optim"
	"github.com/san-kum/quadsim/internal/storage"
)

var (
	kps, kis, kds []float64

	trials    int
	posSpread float64
	velSpread float64
	seed      int64

	svgView   string
	svgWidth  int
	svgHeight int
	svgStroke string

	target float64
	band   float64
)

func batchCommands() []*cobra.Command {
	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search altitude hold gains",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	addFlightFlags(tuneCmd)
	tuneCmd.Flags().Float64SliceVar(&kps, "kp", []float64{0.05, 0.1, 0.2}, "proportional gains")
	tuneCmd.Flags().Float64SliceVar(&kis, "ki", []float64{0, 0.01, 0.05}, "integral gains")
	tuneCmd.Flags().Float64SliceVar(&kds, "kd", []float64{0.05, 0.1, 0.2}, "derivative gains")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a yaml scenario in order",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "fly many copies from jittered initial states",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addFlightFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&posSpread, "pos-spread", 1, "max position jitter per axis (m)")
	monteCarloCmd.Flags().Float64Var(&velSpread, "vel-spread", 0.5, "max velocity jitter per axis (m/s)")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")

	svgCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw a stored run as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	svgCmd.Flags().StringVar(&svgView, "view", string(export.Side), "side, top or altitude")
	svgCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	svgCmd.Flags().IntVar(&svgHeight, "height", 400, "image height")
	svgCmd.Flags().StringVar(&svgStroke, "stroke", "#00ff00", "path color")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "altitude response, oscillation and phase portrait of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&target, "target", 0, "hold target (m); the response is skipped unless set")
	analyzeCmd.Flags().Float64Var(&band, "band", 0.02, "settling band as a fraction of the step")

	return []*cobra.Command{tuneCmd, scenarioCmd, monteCarloCmd, svgCmd, analyzeCmd}
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("tuning %d gain sets against a %.2f m target...\n", len(kps)*len(kis)*len(kds), cfg.Input.Hold.Target)
	gains, score, err := optim.TuneHold(ctx, cfg, kps, kis, kds, logger)
	if err != nil {
		return err
	}

	fmt.Printf("kp: %g\nki: %g\nkd: %g\n", gains.Kp, gains.Ki, gains.Kd)
	fmt.Printf("rms altitude error: %.4f m\n", score)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, runErr := automation.RunScenario(ctx, scenario, logger)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tNAME\tSTEPS\tFINAL Z\tMAX ALT\tRUN ID")
	for i, r := range results {
		runID := "-"
		if scenario.Steps[i].SaveAs != "" {
			if runID, err = st.Save(r.Experiment.Metadata(), r.Result); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%.3f\t%.3f\t%s\n",
			i+1,
			r.Name,
			r.Result.StepsTaken,
			r.Result.Final().Position[2],
			r.Result.Metrics["max_altitude"],
			runID,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:           cfg,
		PositionSpread: posSpread,
		VelocitySpread: velSpread,
		NumTrials:      trials,
		Seed:           seed,
	}, logger)
	if err != nil {
		return err
	}

	landed, diverged := automation.MonteCarloStats(results)
	logger.Info("monte carlo finished", zap.Int("trials", len(results)), zap.Int("landed", landed), zap.Int("diverged", diverged))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tSTART X\tSTART Y\tSTART Z\tFINAL Z\tLANDED")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.3f\t%.3f\t%.3f\t%.3f\t%v\n",
			r.TrialID,
			r.Initial.Position[0],
			r.Initial.Position[1],
			r.Initial.Position[2],
			r.Final.Position[2],
			r.Landed,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nlanded: %d/%d  diverged: %d\n", landed, len(results), diverged)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	out, closeOut, err := output()
	if err != nil {
		return err
	}
	if err := export.WriteSVG(out, samples, export.View(svgView), svgWidth, svgHeight, svgStroke); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("target") {
		r, err := analysis.AnalyzeResponse(samples, target, band)
		if err != nil {
			return err
		}
		fmt.Println("response:")
		if r.RiseTime >= 0 {
			fmt.Printf("  rise time: %.3f s\n", r.RiseTime)
		} else {
			fmt.Println("  rise time: never")
		}
		fmt.Printf("  overshoot: %.1f%%\n", 100*r.Overshoot)
		if r.Settled {
			fmt.Printf("  settling time: %.3f s\n", r.SettlingTime)
		} else {
			fmt.Println("  settling time: never")
		}
		fmt.Printf("  steady state error: %.4f m\n\n", r.SteadyStateErr)
	}

	osc, err := analysis.DominantOscillation(samples)
	if err != nil {
		return err
	}
	fmt.Printf("dominant oscillation: %.3f Hz, %.4f m\n\n", osc.Frequency, osc.Amplitude)

	fmt.Println("phase portrait (z vs vz):")
	fmt.Print(analysis.PhasePortraitToASCII(analysis.PhasePortrait(samples), 60, 20))
	return nil
}
