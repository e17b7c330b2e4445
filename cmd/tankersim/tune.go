package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/tankersim/internal/automation"
	"github.com/san-kum/tankersim/internal/config"
	"github.com/san-kum/tankersim/internal/experiment"
	"github.com/san-kum/tankersim/internal/optim"
)

var (
	gridSpecs   []string
	metricName  string
	sweepParam  string
	sweepMin    float64
	sweepMax    float64
	sweepPoints int
	saveRuns    bool
)

// parseGrid reads "name=lo:hi:n" into a parameter name and its values.
func parseGrid(spec string) (string, []float64, error) {
	name, rng, ok := strings.Cut(spec, "=")
	if !ok {
		return "", nil, fmt.Errorf("bad grid %q, want name=lo:hi:n", spec)
	}
	parts := strings.Split(rng, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("bad grid %q, want name=lo:hi:n", spec)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %s: %w", name, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %s: %w", name, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("grid %s: bad point count %q", name, parts[2])
	}
	return name, optim.Linspace(lo, hi, n), nil
}

func tuneGains(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(gridSpecs) == 0 {
		return fmt.Errorf("at least one --grid is required")
	}

	names := make([]string, 0, len(gridSpecs))
	ranges := make([][]float64, 0, len(gridSpecs))
	total := 1
	for _, spec := range gridSpecs {
		name, values, err := parseGrid(spec)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
		total *= len(values)
	}

	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}
	build, err := optim.ConfigBuilder(cfg, experiment.WithLogger(log))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info().Strs("params", names).Int("points", total).Str("metric", metricName).Msg("grid search")
	best, val, err := gs.Search(ctx, build, metricName)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.Join(names, "\t"), metricName)
	for _, tr := range gs.Trials() {
		for _, name := range names {
			fmt.Fprintf(w, "%.4g\t", tr.Params[name])
		}
		if tr.Err != nil {
			fmt.Fprintf(w, "error: %v\n", tr.Err)
			continue
		}
		fmt.Fprintf(w, "%.4f\n", tr.Value)
	}
	w.Flush()

	fmt.Printf("\nbest %s = %.4f at", metricName, val)
	for _, name := range names {
		fmt.Printf(" %s=%.4g", name, best[name])
	}
	fmt.Println()
	return nil
}

func runCampaign(cmd *cobra.Command, args []string) error {
	c, err := automation.LoadCampaign(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	outcomes, runErr := automation.RunCampaign(ctx, c, log)

	if saveRuns && len(outcomes) > 0 {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		for _, o := range outcomes {
			id, err := st.Save(runInfo(o.Config, o.Config.Seed), o.Result)
			if err != nil {
				return err
			}
			fmt.Printf("saved %s\n", id)
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "step\tname\tpolicy\tsteps\treturn\tcross_track_rms\twaypoints_passed")
	for i, o := range outcomes {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.3f\t%.2f\t%.0f\n",
			i+1, o.Config.Name, o.Config.Policy, o.Result.StepsTaken, o.Result.Return,
			o.Result.Metrics["cross_track_rms"], o.Result.Metrics["waypoints_passed"])
	}
	w.Flush()
	return runErr
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:     cfg,
		Param:    sweepParam,
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepPoints,
	}, log)
	if err != nil {
		return err
	}

	var names []string
	if len(results) > 0 {
		for name := range results[0].Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tsteps\treturn\t%s\n", sweepParam, strings.Join(names, "\t"))
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%d\t%.3f", r.Value, r.Steps, r.Return)
		for _, name := range names {
			v := r.Metrics[name]
			if math.IsInf(v, 0) {
				fmt.Fprint(w, "\t-")
				continue
			}
			fmt.Fprintf(w, "\t%.4f", v)
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func paramHelp() string {
	return strings.Join(config.ParamNames, ", ")
}
