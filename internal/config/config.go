package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/tankersim/internal/env"
	"github.com/san-kum/tankersim/internal/geo"
	"github.com/san-kum/tankersim/internal/integrators"
	"github.com/san-kum/tankersim/internal/scenario"
)

const (
	DefaultSteps      = 600
	DefaultIntegrator = "rk45"
	DefaultPolicy     = "pid"
	DefaultKp         = 1.0
	DefaultKi         = 0.0
	DefaultKd         = 20.0
	DefaultLogLevel   = "info"
)

type Config struct {
	Name       string          `yaml:"name,omitempty"`
	Mode       string          `yaml:"mode"`
	Integrator string          `yaml:"integrator"`
	Policy     string          `yaml:"policy"`
	Steps      int             `yaml:"steps"`
	Seed       int64           `yaml:"seed"`
	Start      *env.LatLon     `yaml:"start,omitempty"`
	HeadingDeg *float64        `yaml:"heading_deg,omitempty"`
	Solver     SolverConfig    `yaml:"solver"`
	Params     PolicyConfig    `yaml:"policy_params"`
	Env        env.Config      `yaml:"env"`
	Scenario   scenario.Config `yaml:"scenario"`
	Log        LogConfig       `yaml:"log"`
}

type SolverConfig struct {
	RelTol   float64 `yaml:"rtol"`
	AbsTol   float64 `yaml:"atol"`
	Substeps int     `yaml:"substeps"` // fixed step solvers only
}

type PolicyConfig struct {
	Kp     float64 `yaml:"kp"`
	Ki     float64 `yaml:"ki"`
	Kd     float64 `yaml:"kd"`
	Script []int   `yaml:"script,omitempty"`
	Loop   bool    `yaml:"loop"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		Mode:       env.Train.String(),
		Integrator: DefaultIntegrator,
		Policy:     DefaultPolicy,
		Steps:      DefaultSteps,
		Solver: SolverConfig{
			RelTol:   integrators.DefaultRelTol,
			AbsTol:   integrators.DefaultAbsTol,
			Substeps: integrators.DefaultSubsteps,
		},
		Params: PolicyConfig{
			Kp: DefaultKp,
			Ki: DefaultKi,
			Kd: DefaultKd,
		},
		Env:      env.DefaultConfig(),
		Scenario: scenario.DefaultConfig(),
		Log:      LogConfig{Level: DefaultLogLevel},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := env.ParseMode(c.Mode); err != nil {
		return err
	}
	if c.Steps <= 0 {
		return fmt.Errorf("config: steps must be positive, got %d", c.Steps)
	}
	if c.Steps > env.MaxEpisodeSteps {
		return fmt.Errorf("config: steps %d exceed the episode limit %d", c.Steps, env.MaxEpisodeSteps)
	}
	if err := c.Env.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Scenario.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ModeValue returns the parsed episode mode.
func (c *Config) ModeValue() env.Mode {
	m, _ := env.ParseMode(c.Mode)
	return m
}

// Heading returns the start heading in radians, nil when unset.
func (c *Config) Heading() *float64 {
	if c.HeadingDeg == nil {
		return nil
	}
	h := geo.Dtr(*c.HeadingDeg)
	return &h
}

// ParamNames lists the names accepted by Set.
var ParamNames = []string{
	"dt", "gain", "kd", "ki", "kp", "nps",
	"rudder_max", "rudder_rate", "scenario_seed", "sensor_range",
}

// Set changes one numeric setting by name. Angles are in radians.
func (c *Config) Set(name string, v float64) error {
	switch name {
	case "nps":
		c.Env.Nps = v
	case "gain":
		c.Env.Gain = v
	case "dt":
		c.Env.Dt = v
	case "kp":
		c.Params.Kp = v
	case "ki":
		c.Params.Ki = v
	case "kd":
		c.Params.Kd = v
	case "sensor_range":
		c.Env.Sensor.Range = v
	case "rudder_max":
		c.Env.Vessel.RudderMax = v
	case "rudder_rate":
		c.Env.Vessel.RudderRate = v
	case "scenario_seed":
		c.Scenario.Seed = int64(v)
	default:
		return fmt.Errorf("config: unknown parameter %q", name)
	}
	return nil
}
