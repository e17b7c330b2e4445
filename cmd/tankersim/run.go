package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/tankersim/internal/analysis"
	"github.com/san-kum/tankersim/internal/config"
	"github.com/san-kum/tankersim/internal/env"
	"github.com/san-kum/tankersim/internal/experiment"
	"github.com/san-kum/tankersim/internal/geo"
	"github.com/san-kum/tankersim/internal/sim"
	"github.com/san-kum/tankersim/internal/storage"
	"github.com/san-kum/tankersim/internal/tui"
)

func openStore() (*storage.Store, error) {
	st := storage.New(viper.GetString("data"))
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func runInfo(cfg *config.Config, seed int64) storage.RunInfo {
	return storage.RunInfo{
		Name:       cfg.Name,
		Mode:       cfg.Mode,
		Policy:     cfg.Policy,
		Integrator: cfg.Integrator,
		Dt:         cfg.Env.Dt,
		Seed:       seed,
	}
}

func runEpisode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	exp, err := experiment.New(cfg, experiment.WithLogger(log))
	if err != nil {
		return err
	}
	runner, err := exp.Build(cfg.Seed)
	if err != nil {
		return err
	}
	if live {
		renderer := tui.NewLiveRenderer(runner.Env(), os.Stdout, frameRate)
		renderer.Start()
		defer renderer.Stop()
		runner.AddObserver(renderer)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info().Str("policy", cfg.Policy).Str("mode", cfg.Mode).Int("steps", cfg.Steps).Msg("running episode")
	start := time.Now()
	result, err := runner.Run(ctx, exp.SimConfig())
	if err != nil {
		if result == nil || result.StepsTaken == 0 {
			return err
		}
		log.Warn().Err(err).Int("steps", result.StepsTaken).Msg("episode stopped early, storing partial run")
	}
	elapsed := time.Since(start)

	runID, err := st.Save(runInfo(cfg, cfg.Seed), result)
	if err != nil {
		return err
	}

	if exportPath != "" {
		if err := exportRun(exportPath, runInfo(cfg, cfg.Seed), result); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func exportRun(path string, info storage.RunInfo, result *sim.Result) error {
	if path == "-" {
		return storage.ExportJSON(os.Stdout, info, result)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return storage.ExportJSON(f, info, result)
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if numRuns <= 0 {
		return fmt.Errorf("runs must be positive, got %d", numRuns)
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	exp, err := experiment.New(cfg, experiment.WithLogger(log))
	if err != nil {
		return err
	}
	ens := exp.Ensemble(numRuns)
	ens.Workers = workers

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	results, err := ens.Run(ctx, exp.SimConfig())
	if err != nil {
		log.Warn().Err(err).Msg("ensemble finished with errors")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTEPS\tRETURN\tCTE RMS\tWP\tRUN ID")
	values := make(map[string][]float64)
	for _, res := range results {
		if res == nil {
			continue
		}
		runID, err := st.Save(runInfo(cfg, res.Seed), res)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%d\t%.3f\t%.1f\t%.0f\t%s\n",
			res.Seed, res.StepsTaken, res.Return,
			res.Metrics["cross_track_rms"], res.Metrics["waypoints_passed"], runID)
		for name, v := range res.Metrics {
			if !math.IsInf(v, 0) && !math.IsNaN(v) {
				values[name] = append(values[name], v)
			}
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d episodes in %v\n\nmetrics (mean ± std):\n", len(results), time.Since(start))
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mean, std := meanStd(values[name])
		fmt.Printf("  %s: %.6f ± %.6f\n", name, mean, std)
	}
	return err
}

func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	var ss float64
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(ss / float64(len(xs)))
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// the monitor owns the screen, keep logs quiet
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	e, err := exp.NewEnv()
	if err != nil {
		return err
	}

	p, err := exp.Policy(cfg.Seed)
	if err != nil {
		return err
	}
	if cfg.Policy == "manual" {
		p = nil
	}

	sc := exp.SimConfig()
	m, err := tui.NewMonitor(e, p, env.ResetOptions{Mode: sc.Mode, Start: sc.Start, Heading: sc.Heading})
	if err != nil {
		return err
	}
	return tui.Run(m)
}

func printConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}

func spiralTest(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	cfg.Integrator = integrator
	solver, err := experiment.NewRegistry().GetIntegrator(cfg.Integrator, cfg.Solver)
	if err != nil {
		return err
	}

	log.Info().Int("points", points).Float64("nps", nps).Msg("running spiral test")
	res, err := analysis.SpiralTest(cfg.Env.Vessel, solver, nps, points, cfg.Env.Dt, 1800, 300)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUDDER [°]\tYAW RATE [°/min]\tSPEED [kn]")
	rates := make([]float64, len(res))
	for i, p := range res {
		rates[i] = geo.Rtd(p.YawRate) * 60
		fmt.Fprintf(w, "%+.1f\t%+.2f\t%.2f\n", geo.Rtd(p.Rudder), rates[i], geo.MpsToKnots(p.Speed))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(asciigraph.Plot(rates,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption("steady yaw rate [°/min], port to starboard rudder"),
	))
	return nil
}
