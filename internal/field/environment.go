package field

import (
	"math"

	"github.com/san-kum/tankersim/internal/geo"
)

// DeepWater is the depth reported where no depth field is configured.
const DeepWater = 10000.0

// Vector is a directional quantity such as current or wind, reported as a
// speed in m/s and a direction in [0, 2π).
type Vector interface {
	At(lat, lon float64) (speed, angle float64)
}

// Polar combines a speed field and a direction field. Directions are
// interpolated as plain scalars and wrapped afterwards.
type Polar struct {
	Speed Scalar
	Angle Scalar
}

func (p Polar) At(lat, lon float64) (float64, float64) {
	return p.Speed.At(lat, lon), geo.AngleTo2Pi(p.Angle.At(lat, lon))
}

// Calm is a vector field that is zero everywhere.
func Calm() Vector {
	return Polar{Speed: Constant(0), Angle: Constant(0)}
}

// Uniform is a vector field with constant speed and direction.
func Uniform(speed, angle float64) Vector {
	return Polar{Speed: Constant(speed), Angle: Constant(angle)}
}

// Sample is the environmental state at one position.
type Sample struct {
	Depth        float64
	CurrentSpeed float64
	CurrentAngle float64
	WindSpeed    float64
	WindAngle    float64
}

// Environment bundles the depth, current and wind fields of an episode.
type Environment struct {
	Depth   Scalar
	Current Vector
	Wind    Vector
}

// NewEnvironment fills missing fields with deep, calm water.
func NewEnvironment(depth Scalar, current, wind Vector) *Environment {
	if depth == nil {
		depth = Constant(DeepWater)
	}
	if current == nil {
		current = Calm()
	}
	if wind == nil {
		wind = Calm()
	}
	return &Environment{Depth: depth, Current: current, Wind: wind}
}

// CalmEnvironment returns deep water without current or wind.
func CalmEnvironment() *Environment {
	return NewEnvironment(nil, nil, nil)
}

// DepthAt implements the depth query used by the ranging sensor.
func (e *Environment) DepthAt(lat, lon float64) float64 {
	return e.Depth.At(lat, lon)
}

// At samples every field at (lat, lon).
func (e *Environment) At(lat, lon float64) Sample {
	cs, ca := e.Current.At(lat, lon)
	ws, wa := e.Wind.At(lat, lon)
	return Sample{
		Depth:        e.Depth.At(lat, lon),
		CurrentSpeed: math.Max(0, cs),
		CurrentAngle: ca,
		WindSpeed:    math.Max(0, ws),
		WindAngle:    wa,
	}
}
