package geo

import "math"

const (
	twoPi = 2 * math.Pi

	metersPerNauticalMile = 1852.0
	knotsPerMps           = 3600.0 / 1852.0
)

// AngleTo2Pi wraps an angle into [0, 2π).
func AngleTo2Pi(angle float64) float64 {
	a := math.Mod(angle, twoPi)
	if a < 0 {
		a += twoPi
	}
	// math.Mod of a tiny negative angle can round back up to 2π
	if a >= twoPi {
		a = 0
	}
	return a
}

// AngleToPi wraps an angle into [-π, π).
func AngleToPi(angle float64) float64 {
	a := AngleTo2Pi(angle)
	if a >= math.Pi {
		a -= twoPi
	}
	return a
}

// Dtr converts degrees to radians.
func Dtr(deg float64) float64 { return deg * math.Pi / 180 }

// Rtd converts radians to degrees.
func Rtd(rad float64) float64 { return rad * 180 / math.Pi }

func NMToMeter(nm float64) float64 { return nm * metersPerNauticalMile }

func MpsToKnots(mps float64) float64 { return mps * knotsPerMps }

// XYFromPolar returns the (east, north) offset of a point at distance r in
// direction angle.
func XYFromPolar(r, angle float64) (x, y float64) {
	return r * math.Sin(angle), r * math.Cos(angle)
}

// Bearing returns the absolute bearing in [0, 2π) from (n0, e0) to (n1, e1).
func Bearing(n0, e0, n1, e1 float64) float64 {
	return AngleTo2Pi(math.Atan2(e1-e0, n1-n0))
}

// Distance is the planar Euclidean distance between two points.
func Distance(n0, e0, n1, e1 float64) float64 {
	return math.Hypot(n1-n0, e1-e0)
}
