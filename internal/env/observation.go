package env

import (
	"math"

	"github.com/san-kum/tankersim/internal/guidance"
	"github.com/san-kum/tankersim/internal/vessel"
)

// Observation layout. The sensor closeness values follow from ObsCloseness
// on, one per beam.
const (
	ObsU = iota
	ObsV
	ObsR
	ObsRDot
	ObsRudder
	ObsCrossTrack
	ObsCourse
	ObsCloseness
)

// Normalization divisors of the observation entries.
const (
	ScaleU    = 7.0
	ScaleV    = 0.7
	ScaleR    = 0.004
	ScaleRDot = 8e-5
)

// Observation is the normalized input of a control policy.
type Observation []float64

func (o Observation) Clone() Observation {
	if o == nil {
		return nil
	}
	c := make(Observation, len(o))
	copy(c, o)
	return c
}

// Closeness returns the sensor part of the observation.
func (o Observation) Closeness() []float64 {
	if len(o) < ObsCloseness {
		return nil
	}
	return o[ObsCloseness:]
}

func assemble(st vessel.State, rDot, rudder, rudderMax float64, g guidance.Result, lpp float64, closeness []float64) Observation {
	obs := make(Observation, ObsCloseness, ObsCloseness+len(closeness))
	obs[ObsU] = st.U / ScaleU
	obs[ObsV] = st.V / ScaleV
	obs[ObsR] = st.R / ScaleR
	obs[ObsRDot] = rDot / ScaleRDot
	obs[ObsRudder] = rudder / rudderMax
	obs[ObsCrossTrack] = g.CrossTrack / lpp
	obs[ObsCourse] = g.DesiredCourse / math.Pi
	return append(obs, closeness...)
}
