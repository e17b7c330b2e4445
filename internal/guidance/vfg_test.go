package guidance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeOnSegment(t *testing.T) {
	wp1 := Point{North: 0, East: 0}
	wp2 := Point{North: 100, East: 100}

	res := Compute(wp1, wp2, Point{North: 40, East: 40}, DefaultGain, 0)

	assert.InDelta(t, 0, res.CrossTrack, 1e-9)
	assert.InDelta(t, math.Pi/4, res.PathBearing, 1e-12)
	assert.InDelta(t, res.PathBearing, res.DesiredCourse, 1e-12)
}

func TestComputeSign(t *testing.T) {
	wp1 := Point{North: 0, East: 0}
	wp2 := Point{North: 1000, East: 0}

	starboard := Compute(wp1, wp2, Point{North: 10, East: 50}, DefaultGain, 0)
	assert.InDelta(t, 50, starboard.CrossTrack, 1e-9)
	// steer back to port: course just below 2π
	assert.InDelta(t, 2*math.Pi-math.Atan(0.05), starboard.DesiredCourse, 1e-12)

	port := Compute(wp1, wp2, Point{North: 10, East: -50}, DefaultGain, 0)
	assert.InDelta(t, -50, port.CrossTrack, 1e-9)
	assert.InDelta(t, math.Atan(0.05), port.DesiredCourse, 1e-12)
}

func TestComputeSaturates(t *testing.T) {
	wp1 := Point{North: 0, East: 0}
	wp2 := Point{North: 0, East: 1000}

	res := Compute(wp1, wp2, Point{North: -1e7, East: 0}, DefaultGain, 0)

	assert.InDelta(t, math.Pi/2, res.PathBearing, 1e-12)
	assert.InDelta(t, 0, res.DesiredCourse, 1e-3)
}

func TestComputeDegenerateSegment(t *testing.T) {
	wp := Point{North: 5, East: 5}

	res := Compute(wp, wp, Point{North: 100, East: -30}, DefaultGain, 1.25)

	assert.Equal(t, 0.0, res.CrossTrack)
	assert.Equal(t, 1.25, res.PathBearing)
	assert.Equal(t, 1.25, res.DesiredCourse)
	assert.False(t, math.IsNaN(res.DesiredCourse))
}

func TestShouldAdvance(t *testing.T) {
	wp1 := Point{North: 0, East: 0}
	wp2 := Point{North: 100, East: 0}

	tests := []struct {
		name string
		pos  Point
		want bool
	}{
		{"before", Point{North: 50, East: 10}, false},
		{"abeam wp2", Point{North: 100, East: 30}, false},
		{"on wp2", Point{North: 100, East: 0}, true},
		{"beyond", Point{North: 100.5, East: -20}, true},
		{"behind wp1", Point{North: -10, East: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldAdvance(wp1, wp2, tt.pos))
		})
	}

	assert.True(t, ShouldAdvance(wp1, wp1, Point{North: -5, East: 3}), "zero-length segment")
}
