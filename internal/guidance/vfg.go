package guidance

import (
	"math"

	"github.com/san-kum/tankersim/internal/geo"
)

// DefaultGain is the VFG convergence gain [1/m].
const DefaultGain = 0.001

// Point is a planar position, north and east in meters.
type Point struct {
	North float64
	East  float64
}

// Result is the guidance output for one position.
type Result struct {
	CrossTrack    float64 // [m], positive to starboard of the segment
	DesiredCourse float64 // [rad], [0, 2π)
	PathBearing   float64 // [rad], [0, 2π)
}

// Compute evaluates the vector field of segment wp1->wp2 at pos. For a
// zero-length segment the bearing stays at prevBearing and the cross-track
// error is zero.
func Compute(wp1, wp2, pos Point, gain, prevBearing float64) Result {
	if wp1 == wp2 {
		return Result{
			DesiredCourse: geo.AngleTo2Pi(prevBearing),
			PathBearing:   geo.AngleTo2Pi(prevBearing),
		}
	}

	pi := geo.Bearing(wp1.North, wp1.East, wp2.North, wp2.East)
	ye := -(pos.North-wp1.North)*math.Sin(pi) + (pos.East-wp1.East)*math.Cos(pi)

	return Result{
		CrossTrack:    ye,
		DesiredCourse: geo.AngleTo2Pi(pi - math.Atan(gain*ye)),
		PathBearing:   pi,
	}
}

// ShouldAdvance reports whether pos has passed wp2, i.e. its projection on
// the segment lies strictly beyond wp2. Standing exactly on wp2 also counts
// as reached. A zero-length segment is always passed.
func ShouldAdvance(wp1, wp2, pos Point) bool {
	dn, de := wp2.North-wp1.North, wp2.East-wp1.East
	length := math.Hypot(dn, de)
	if length == 0 || pos == wp2 {
		return true
	}
	along := ((pos.North-wp1.North)*dn + (pos.East-wp1.East)*de) / length
	return along > length
}
