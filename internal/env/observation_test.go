package env

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/tankersim/internal/guidance"
	"github.com/san-kum/tankersim/internal/vessel"
)

func TestAssemble(t *testing.T) {
	st := vessel.State{U: 7, V: -0.35, R: 0.002}
	g := guidance.Result{CrossTrack: 160, DesiredCourse: math.Pi / 2}

	obs := assemble(st, 4e-5, 0.1, 0.2, g, 320, []float64{0.5, 0})

	require.Len(t, obs, ObsCloseness+2)
	assert.InDelta(t, 1.0, obs[ObsU], 1e-12)
	assert.InDelta(t, -0.5, obs[ObsV], 1e-12)
	assert.InDelta(t, 0.5, obs[ObsR], 1e-12)
	assert.InDelta(t, 0.5, obs[ObsRDot], 1e-12)
	assert.InDelta(t, 0.5, obs[ObsRudder], 1e-12)
	assert.InDelta(t, 0.5, obs[ObsCrossTrack], 1e-12)
	assert.InDelta(t, 0.5, obs[ObsCourse], 1e-12)
	assert.Equal(t, []float64{0.5, 0}, obs.Closeness())
}

func TestObservationClone(t *testing.T) {
	o := Observation{1, 2, 3}
	c := o.Clone()
	c[0] = 9
	assert.Equal(t, 1.0, o[0])
	assert.Nil(t, Observation(nil).Clone())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("validate")
	require.NoError(t, err)
	assert.Equal(t, Validate, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, Train, m)

	_, err = ParseMode("race")
	assert.Error(t, err)
}
