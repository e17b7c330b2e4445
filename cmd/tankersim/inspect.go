package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/tankersim/internal/analysis"
	"github.com/san-kum/tankersim/internal/env"
	"github.com/san-kum/tankersim/internal/geo"
	"github.com/san-kum/tankersim/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(storage.Filter{Policy: filterPol, Limit: limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tMODE\tPOLICY\tINTEG\tSTEPS\tRETURN\tCTE RMS\tTRACK [°]")
	for _, run := range runs {
		cte, _ := run.Metric("cross_track_rms")
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%.3f\t%.1f\t%.3f\n",
			run.ID,
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.Mode,
			run.Policy,
			run.Integrator,
			run.Steps,
			run.Return,
			cte,
			run.LengthDeg,
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
	tel, err := st.LoadTelemetry(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("time: %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("mode: %s  policy: %s  integrator: %s  seed: %d\n", meta.Mode, meta.Policy, meta.Integrator, meta.Seed)
	fmt.Printf("steps: %d  return: %.3f  done: %v\n", meta.Steps, meta.Return, meta.Done)
	fmt.Println("\nmetrics:")
	printMetrics(meta.Metrics)

	if len(tel) > 0 {
		fmt.Println("\nfinal state:")
		fmt.Println(tel[len(tel)-1].String())
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tel, err := st.LoadTelemetry(args[0])
	if err != nil {
		return err
	}
	if len(tel) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("policy: %s\n", meta.Policy)
	fmt.Printf("samples: %d\n\n", len(tel))

	plots := []struct {
		caption string
		value   func(env.Telemetry) float64
	}{
		{"cross-track error [m]", func(t env.Telemetry) float64 { return t.Guidance.CrossTrack }},
		{"course error [°]", func(t env.Telemetry) float64 { return geo.Rtd(t.CourseError) }},
		{"rudder angle [°]", func(t env.Telemetry) float64 { return geo.Rtd(t.Rudder) }},
		{"surge speed [m/s]", func(t env.Telemetry) float64 { return t.State.U }},
		{"yaw rate [°/min]", func(t env.Telemetry) float64 { return geo.Rtd(t.State.R) * 60 }},
	}
	for _, p := range plots {
		graph := asciigraph.Plot(analysis.Series(tel, p.value),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	fmt.Println("track (north up, S start, E end):")
	fmt.Print(analysis.TrackToASCII(analysis.Track(tel), 80, 30))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tel, err := st.LoadTelemetry(args[0])
	if err != nil {
		return err
	}
	if len(tel) < 4 {
		return fmt.Errorf("run too short to analyze")
	}

	fmt.Printf("run: %s (%s, %d steps)\n\n", meta.ID, meta.Policy, meta.Steps)

	series := []struct {
		name  string
		value func(env.Telemetry) float64
	}{
		{"rudder", func(t env.Telemetry) float64 { return t.Rudder }},
		{"course error", func(t env.Telemetry) float64 { return t.CourseError }},
		{"cross-track", func(t env.Telemetry) float64 { return t.Guidance.CrossTrack }},
	}
	fmt.Println("dominant oscillation:")
	for _, s := range series {
		period, ok := analysis.DominantPeriod(analysis.Series(tel, s.value), meta.Dt)
		if !ok {
			fmt.Printf("  %-14s none\n", s.name)
			continue
		}
		fmt.Printf("  %-14s %.0f s\n", s.name, period)
	}

	spectrum := analysis.PowerSpectrum(analysis.Series(tel, series[0].value))
	if len(spectrum) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(spectrum[1:],
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption("rudder amplitude spectrum"),
		))
	}

	tc, err := analysis.Turning(tel)
	fmt.Println("\nturning:")
	switch {
	case errors.Is(err, analysis.ErrTurnIncomplete):
		fmt.Println("  heading never changed by 180°")
	case err != nil:
		return err
	default:
		fmt.Printf("  advance: %.0f m  transfer: %.0f m  tactical diameter: %.0f m\n",
			tc.Advance, tc.Transfer, tc.TacticalDiameter)
		fmt.Printf("  90° after %.0f s, 180° after %.0f s\n", tc.Time90, tc.Time180)
	}

	if ls, err := st.LoadTrack(args[0]); err == nil {
		fmt.Printf("\ntrack length: %.4f° (%d points)\n", ls.Length(), ls.Coordinates().Length())
	}
	return nil
}

func deleteRun(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(args[0]); err != nil {
		return err
	}
	log.Info().Str("run", args[0]).Msg("run deleted")
	return nil
}
