package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/tankersim/internal/config"
)

var (
	configFile string
	preset     string

	steps      int
	seed       int64
	mode       string
	policy     string
	integrator string
	kp         float64
	ki         float64
	kd         float64
	nps        float64
	current    bool
	wind       bool

	live       bool
	frameRate  int
	exportPath string
	numRuns    int
	points     int
	workers    int
	filterPol  string
	limit      int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tankersim",
		Short: "tanker path following simulation",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("data", ".tankersim", "data directory")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	viper.BindPFlag("data", rootCmd.PersistentFlags().Lookup("data"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run one episode and store it",
		RunE:  runEpisode,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().BoolVar(&live, "live", false, "draw the episode while it runs")
	runCmd.Flags().IntVar(&frameRate, "fps", 10, "frame rate of --live")
	runCmd.Flags().StringVar(&exportPath, "export", "", "also write the full record as JSON (- for stdout)")

	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "run an ensemble of episodes with consecutive seeds",
		RunE:  runBatch,
	}
	addScenarioFlags(batchCmd)
	batchCmd.Flags().IntVar(&numRuns, "runs", 8, "number of episodes")
	batchCmd.Flags().IntVar(&workers, "workers", 0, "concurrent episodes (0 = all cores)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "steer interactively or watch the autopilot",
		RunE:  runInteractive,
	}
	addScenarioFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}
	listCmd.Flags().StringVar(&filterPol, "policy", "", "only runs of this policy")
	listCmd.Flags().IntVar(&limit, "limit", 0, "at most this many runs")

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata and final state",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "oscillation and turning analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	spiralCmd := &cobra.Command{
		Use:   "spiral",
		Short: "steady yaw rate against rudder angle",
		RunE:  spiralTest,
	}
	spiralCmd.Flags().IntVar(&points, "points", 11, "rudder angles between the limits")
	spiralCmd.Flags().Float64Var(&nps, "nps", 3.0, "propeller revolutions [1/s]")
	spiralCmd.Flags().StringVar(&integrator, "integrator", "rk45", "integrator")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the resolved configuration as YAML",
		RunE:  printConfig,
	}
	addScenarioFlags(configCmd)

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search over policy and environment parameters",
		RunE:  tuneGains,
	}
	addScenarioFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&gridSpecs, "grid", nil, "name=lo:hi:n, repeatable; names: "+paramHelp())
	tuneCmd.Flags().StringVar(&metricName, "metric", "cross_track_rms", "metric to minimize")

	campaignCmd := &cobra.Command{
		Use:   "campaign [file]",
		Short: "run a YAML list of episodes",
		Args:  cobra.ExactArgs(1),
		RunE:  runCampaign,
	}
	campaignCmd.Flags().BoolVar(&saveRuns, "save", true, "store every completed episode")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run one episode per value of a parameter",
		RunE:  runSweep,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "nps", "parameter: "+paramHelp())
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 2, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 4, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 5, "number of values")

	rootCmd.AddCommand(runCmd, batchCmd, liveCmd, listCmd, showCmd, plotCmd, analyzeCmd, deleteCmd,
		spiralCmd, tuneCmd, campaignCmd, sweepCmd, presetsCmd, configCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "episode length in control steps")
	cmd.Flags().Int64Var(&seed, "seed", 0, "policy seed")
	cmd.Flags().StringVar(&mode, "mode", "train", "train or validate")
	cmd.Flags().StringVar(&policy, "policy", config.DefaultPolicy, "hold, random, pid, linear, script, manual")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "rk45 or rk4")
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "pid kp")
	cmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "pid ki")
	cmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "pid kd")
	cmd.Flags().Float64Var(&nps, "nps", 3.0, "propeller revolutions [1/s]")
	cmd.Flags().BoolVar(&current, "current", false, "generate a current field")
	cmd.Flags().BoolVar(&wind, "wind", false, "generate a wind field")
}

func initConfig() error {
	viper.SetEnvPrefix("tankersim")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("data", ".tankersim")
	viper.SetDefault("log.level", "info")

	log = newLogger(viper.GetString("log.level"))
	return nil
}

var log = zerolog.Nop()

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.TimeOnly,
	}).Level(lvl).With().Timestamp().Logger()
}

// loadConfig resolves preset, config file and flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("mode") {
		cfg.Mode = mode
	}
	if flags.Changed("policy") {
		cfg.Policy = policy
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("kp") {
		cfg.Params.Kp = kp
	}
	if flags.Changed("ki") {
		cfg.Params.Ki = ki
	}
	if flags.Changed("kd") {
		cfg.Params.Kd = kd
	}
	if flags.Changed("nps") {
		cfg.Env.Nps = nps
	}
	if flags.Changed("current") {
		cfg.Scenario.Current = current
	}
	if flags.Changed("wind") {
		cfg.Scenario.Wind = wind
	}
	logFlagSet := cmd.Root().PersistentFlags().Changed("log-level") || os.Getenv("TANKERSIM_LOG_LEVEL") != ""
	if cfg.Log.Level != "" && !logFlagSet {
		log = newLogger(cfg.Log.Level)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
