package metrics

import (
	"math"

	"github.com/san-kum/tankersim/internal/env"
	"github.com/san-kum/tankersim/internal/vessel"
)

// ControlEffort is the mean absolute rudder angle [rad].
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(t env.Telemetry, action int) {
	c.sum += math.Abs(t.Rudder)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// RudderActivity is the fraction of steps that moved the rudder.
type RudderActivity struct {
	name    string
	moves   int
	samples int
}

func NewRudderActivity() *RudderActivity {
	return &RudderActivity{name: "rudder_activity"}
}

func (r *RudderActivity) Name() string { return r.name }

func (r *RudderActivity) Observe(t env.Telemetry, action int) {
	if action != vessel.ActionHold {
		r.moves++
	}
	r.samples++
}

func (r *RudderActivity) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return float64(r.moves) / float64(r.samples)
}

func (r *RudderActivity) Reset() {
	r.moves = 0
	r.samples = 0
}
