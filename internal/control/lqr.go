package control

import "github.com/san-kum/tankersim/internal/env"

// Linear is a state feedback policy on the normalized observation. The
// rudder command is -K·obs scaled to the rudder limit.
type Linear struct {
	K         []float64
	Increment float64
	Limit     float64
}

// DefaultLinearGains act on cross-track error and yaw rate.
var DefaultLinearGains = map[int]float64{
	env.ObsR:          1.5,
	env.ObsCrossTrack: 4.0,
}

func NewLinear(k []float64, increment, limit float64) *Linear {
	return &Linear{K: k, Increment: increment, Limit: limit}
}

// NewTrackKeeping builds a Linear policy from DefaultLinearGains.
func NewTrackKeeping(increment, limit float64) *Linear {
	k := make([]float64, env.ObsCloseness)
	for i, g := range DefaultLinearGains {
		k[i] = g
	}
	return NewLinear(k, increment, limit)
}

// Command returns the rudder angle the policy asks for [rad].
func (l *Linear) Command(obs env.Observation) float64 {
	u := 0.0
	for i, k := range l.K {
		if i < len(obs) {
			u -= k * obs[i]
		}
	}
	u *= l.Limit
	if u > l.Limit {
		return l.Limit
	}
	if u < -l.Limit {
		return -l.Limit
	}
	return u
}

func (l *Linear) Act(obs env.Observation, t env.Telemetry) int {
	return toward(l.Command(obs), t.Rudder, l.Increment)
}
