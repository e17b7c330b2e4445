package control

import (
	"math"

	"github.com/san-kum/tankersim/internal/env"
)

// PID keeps course by commanding a rudder angle proportional to the course
// error, its integral and its rate.
type PID struct {
	Kp float64
	Ki float64
	Kd float64

	// Increment is the rudder change of one action [rad].
	Increment float64
	// Limit bounds the rudder command [rad].
	Limit float64

	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd, increment, limit float64) *PID {
	return &PID{
		Kp:        kp,
		Ki:        ki,
		Kd:        kd,
		Increment: increment,
		Limit:     limit,
		first:     true,
	}
}

// Command returns the rudder angle the controller asks for.
func (p *PID) Command(t env.Telemetry) float64 {
	err := t.CourseError

	if p.first {
		p.prevErr = err
		p.prevT = t.Time
		p.first = false
		return p.clip(p.Kp * err)
	}

	dt := t.Time - p.prevT
	if dt <= 0 {
		return p.clip(p.Kp * err)
	}

	derivative := (err - p.prevErr) / dt
	u := p.Kp*err + p.Ki*(p.integral+err*dt) + p.Kd*derivative

	// no integration while saturated
	if math.Abs(u) < p.Limit {
		p.integral += err * dt
	}
	p.prevErr = err
	p.prevT = t.Time
	return p.clip(u)
}

func (p *PID) Act(_ env.Observation, t env.Telemetry) int {
	return toward(p.Command(t), t.Rudder, p.Increment)
}

func (p *PID) clip(u float64) float64 {
	if p.Limit <= 0 {
		return u
	}
	return math.Max(-p.Limit, math.Min(p.Limit, u))
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.prevT = 0
	p.first = true
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp": p.Kp,
		"Ki": p.Ki,
		"Kd": p.Kd,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	}
}
