package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/tankersim/internal/config"
	"github.com/san-kum/tankersim/internal/experiment"
	"github.com/san-kum/tankersim/internal/sim"
)

// Campaign is a scripted sequence of episodes.
type Campaign struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one episode of a campaign: a preset with optional overrides.
type Step struct {
	Preset string             `yaml:"preset"`
	Policy string             `yaml:"policy"`
	Mode   string             `yaml:"mode"`
	Steps  int                `yaml:"steps"`
	Seed   *int64             `yaml:"seed"`
	Params map[string]float64 `yaml:"params"`
	SaveAs string             `yaml:"save_as"`
}

// Config resolves the step into a full configuration.
func (s Step) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		if cfg = config.GetPreset(s.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if s.Policy != "" {
		cfg.Policy = s.Policy
	}
	if s.Mode != "" {
		cfg.Mode = s.Mode
	}
	if s.Steps > 0 {
		cfg.Steps = s.Steps
	}
	if s.Seed != nil {
		cfg.Seed = *s.Seed
	}
	for name, v := range s.Params {
		if err := cfg.Set(name, v); err != nil {
			return nil, err
		}
	}
	if s.SaveAs != "" {
		cfg.Name = s.SaveAs
	}
	return cfg, cfg.Validate()
}

func LoadCampaign(path string) (*Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Campaign
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if len(c.Steps) == 0 {
		return nil, fmt.Errorf("campaign %q has no steps", c.Name)
	}
	return &c, nil
}

// Outcome is the result of one campaign step.
type Outcome struct {
	Config *config.Config
	Result *sim.Result
}

// RunCampaign executes all steps in order and stops at the first failure.
func RunCampaign(ctx context.Context, c *Campaign, log zerolog.Logger) ([]Outcome, error) {
	out := make([]Outcome, 0, len(c.Steps))

	for i, step := range c.Steps {
		cfg, err := step.Config()
		if err != nil {
			return out, fmt.Errorf("step %d: %w", i+1, err)
		}
		log.Info().Int("step", i+1).Int("of", len(c.Steps)).Str("preset", step.Preset).Str("policy", cfg.Policy).Msg("campaign step")

		exp, err := experiment.New(cfg, experiment.WithLogger(log))
		if err != nil {
			return out, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return out, fmt.Errorf("step %d run: %w", i+1, err)
		}
		out = append(out, Outcome{Config: cfg, Result: result})
	}

	return out, nil
}

// ParameterSweep runs one episode per value of a parameter spread evenly
// between Min and Max.
type ParameterSweep struct {
	Base     *config.Config
	Param    string
	Min      float64
	Max      float64
	NumSteps int
}

type SweepResult struct {
	Value   float64
	Steps   int
	Return  float64
	Metrics map[string]float64
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, log zerolog.Logger) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}
	results := make([]SweepResult, 0, sweep.NumSteps)
	step := (sweep.Max - sweep.Min) / float64(sweep.NumSteps-1)

	// one scenario for all values, unless the sweep changes it
	var opts []experiment.Option
	if sweep.Param != "scenario_seed" {
		exp, err := experiment.New(sweep.Base)
		if err != nil {
			return nil, err
		}
		opts = append(opts, experiment.WithScenario(exp.Scenario()))
	}

	for i := 0; i < sweep.NumSteps; i++ {
		v := sweep.Min + float64(i)*step
		cfg := *sweep.Base
		if err := cfg.Set(sweep.Param, v); err != nil {
			return nil, err
		}

		exp, err := experiment.New(&cfg, append(opts, experiment.WithLogger(log))...)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
		}

		results = append(results, SweepResult{
			Value:   v,
			Steps:   result.StepsTaken,
			Return:  result.Return,
			Metrics: result.Metrics,
		})
		log.Info().Int("point", i+1).Int("of", sweep.NumSteps).Str("param", sweep.Param).Float64("value", v).Msg("sweep point done")
	}

	return results, nil
}
