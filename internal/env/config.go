package env

import (
	"fmt"

	"github.com/san-kum/tankersim/internal/guidance"
	"github.com/san-kum/tankersim/internal/sensor"
	"github.com/san-kum/tankersim/internal/vessel"
)

const (
	DefaultDt  = vessel.DefaultDt
	DefaultNps = 3.0 // [1/s]

	// MaxEpisodeSteps bounds an episode run by a driver loop.
	MaxEpisodeSteps = 10_000
)

// Fixed start of validation episodes.
const (
	ValidationLat = 56.635
	ValidationLon = 7.421
)

type Config struct {
	Dt     float64       `yaml:"dt"`
	Nps    float64       `yaml:"nps"`
	Gain   float64       `yaml:"gain"`
	Vessel vessel.Params `yaml:"vessel"`
	Sensor sensor.Config `yaml:"sensor"`
}

func DefaultConfig() Config {
	return Config{
		Dt:     DefaultDt,
		Nps:    DefaultNps,
		Gain:   guidance.DefaultGain,
		Vessel: vessel.DefaultKVLCC2(),
		Sensor: sensor.DefaultConfig(),
	}
}

func (c Config) Validate() error {
	if !(c.Dt > 0) {
		return fmt.Errorf("env: dt must be positive, got %v", c.Dt)
	}
	if c.Nps < 0 {
		return fmt.Errorf("env: nps must not be negative, got %v", c.Nps)
	}
	if err := c.Vessel.Validate(); err != nil {
		return err
	}
	return c.Sensor.Validate()
}
