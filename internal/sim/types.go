package sim

import "github.com/san-kum/tankersim/internal/env"

type Metric interface {
	Name() string
	Observe(t env.Telemetry, action int)
	Value() float64
	Reset()
}

// Observer is notified after every committed step.
type Observer interface {
	OnStep(t env.Telemetry, action int)
}

type ObserverFunc func(t env.Telemetry, action int)

func (f ObserverFunc) OnStep(t env.Telemetry, action int) { f(t, action) }

type Config struct {
	Steps   int         `yaml:"steps" json:"steps"`
	Mode    env.Mode    `yaml:"-" json:"mode"`
	Start   *env.LatLon `yaml:"start,omitempty" json:"start,omitempty"`
	Heading *float64    `yaml:"heading,omitempty" json:"heading,omitempty"`
	Seed    int64       `yaml:"seed" json:"seed"`
}

func (c Config) resetOptions() env.ResetOptions {
	return env.ResetOptions{Mode: c.Mode, Start: c.Start, Heading: c.Heading}
}

// Result is the record of one episode. Telemetry holds the state after
// reset followed by one entry per step, Actions and Rewards one per step.
type Result struct {
	Telemetry  []env.Telemetry
	Actions    []int
	Rewards    []float64
	Metrics    map[string]float64
	StepsTaken int
	Return     float64
	Done       bool
	Seed       int64
}

// Final returns the last recorded telemetry.
func (r *Result) Final() env.Telemetry {
	if len(r.Telemetry) == 0 {
		return env.Telemetry{}
	}
	return r.Telemetry[len(r.Telemetry)-1]
}
