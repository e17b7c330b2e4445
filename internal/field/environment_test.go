package field

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalmEnvironment(t *testing.T) {
	s := CalmEnvironment().At(56, 7)
	assert.Equal(t, DeepWater, s.Depth)
	assert.Zero(t, s.CurrentSpeed)
	assert.Zero(t, s.WindSpeed)
}

func TestPolarWrapsDirection(t *testing.T) {
	speed, angle := Uniform(0.3, -math.Pi/2).At(0, 0)
	assert.Equal(t, 0.3, speed)
	assert.InDelta(t, 1.5*math.Pi, angle, 1e-12)
}

func TestEnvironmentSamplesEveryField(t *testing.T) {
	env := NewEnvironment(Constant(12), Uniform(0.4, 1), Uniform(9, 2))
	s := env.At(0, 0)
	assert.Equal(t, Sample{Depth: 12, CurrentSpeed: 0.4, CurrentAngle: 1, WindSpeed: 9, WindAngle: 2}, s)
	assert.Equal(t, 12.0, env.DepthAt(3, 3))
}

func TestEnvironmentClampsNegativeSpeed(t *testing.T) {
	env := NewEnvironment(nil, Uniform(-1, 0), nil)
	assert.Zero(t, env.At(0, 0).CurrentSpeed)
}
