package control

import (
	"github.com/san-kum/tankersim/internal/env"
	"github.com/san-kum/tankersim/internal/vessel"
)

// Policy picks the next rudder action.
type Policy interface {
	Act(obs env.Observation, t env.Telemetry) int
}

// Resetter is implemented by policies with per-episode state.
type Resetter interface {
	Reset()
}

type Tunable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64)
}

// toward returns the action that moves rudder closer to target when the
// gap exceeds half an increment.
func toward(target, rudder, increment float64) int {
	switch d := target - rudder; {
	case d > increment/2:
		return vessel.ActionStarboard
	case d < -increment/2:
		return vessel.ActionPort
	}
	return vessel.ActionHold
}
