// Package sensor implements a multi-beam depth ranging sensor. Beams fan out
// evenly around the heading and march outwards until the water gets too
// shallow.
package sensor

import (
	"fmt"
	"math"

	"github.com/san-kum/tankersim/internal/field"
	"github.com/san-kum/tankersim/internal/geo"
)

const (
	DefaultBeams     = 25
	DefaultSamples   = 25
	DefaultThreshold = 15.0 // [m]
)

// DefaultRange is one nautical mile.
var DefaultRange = geo.NMToMeter(1)

type Config struct {
	Range     float64 `yaml:"range"`     // [m]
	Beams     int     `yaml:"beams"`     // evenly spaced around the hull
	Samples   int     `yaml:"samples"`   // per beam
	Threshold float64 `yaml:"threshold"` // depth at or below which a beam stops [m]
}

func DefaultConfig() Config {
	return Config{
		Range:     DefaultRange,
		Beams:     DefaultBeams,
		Samples:   DefaultSamples,
		Threshold: DefaultThreshold,
	}
}

func (c Config) Validate() error {
	if !(c.Range > 0) {
		return fmt.Errorf("sensor: range must be positive, got %v", c.Range)
	}
	if c.Beams < 1 || c.Samples < 1 {
		return fmt.Errorf("sensor: need at least one beam and one sample, got %d/%d", c.Beams, c.Samples)
	}
	return nil
}

// Hit is the geographic end point of a beam.
type Hit struct {
	Lat, Lon float64
}

// Reading is one sweep: per beam the distance to the first shallow sample,
// or the range when nothing was found, and the corresponding end point.
type Reading struct {
	Distances []float64
	Hits      []Hit
}

// Sensor is stateless after construction and safe for concurrent use.
type Sensor struct {
	cfg     Config
	offsets []float64 // beam angle relative to heading
	dists   []float64 // sample distances along a beam
}

func New(cfg Config) (*Sensor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Sensor{cfg: cfg}
	s.offsets = make([]float64, cfg.Beams)
	for i := range s.offsets {
		s.offsets[i] = 2 * math.Pi * float64(i) / float64(cfg.Beams)
	}
	s.dists = make([]float64, cfg.Samples)
	step := cfg.Range / float64(cfg.Samples)
	for i := range s.dists {
		s.dists[i] = step * float64(i+1)
	}
	s.dists[len(s.dists)-1] = cfg.Range
	return s, nil
}

func (s *Sensor) Config() Config { return s.cfg }

// Sense sweeps all beams from (north, east) with beam 0 along heading.
func (s *Sensor) Sense(north, east, heading float64, depth field.Scalar, proj geo.Projector) Reading {
	r := Reading{
		Distances: make([]float64, len(s.offsets)),
		Hits:      make([]Hit, len(s.offsets)),
	}
	for i, off := range s.offsets {
		angle := geo.AngleTo2Pi(heading + off)
		r.Distances[i] = s.cfg.Range

		for _, d := range s.dists {
			dE, dN := geo.XYFromPolar(d, angle)
			lat, lon := proj.ToLatLon(north+dN, east+dE)
			r.Hits[i] = Hit{Lat: lat, Lon: lon}
			if depth.At(lat, lon) <= s.cfg.Threshold {
				r.Distances[i] = d
				break
			}
		}
	}
	return r
}

// Closeness maps distances to [0, 1], 1 being in contact.
func (s *Sensor) Closeness(distances []float64) []float64 {
	out := make([]float64, len(distances))
	for i, d := range distances {
		out[i] = Closeness(d, s.cfg.Range)
	}
	return out
}

// Closeness is clip(1 - ln(d+1)/ln(r+1), 0, 1).
func Closeness(d, r float64) float64 {
	c := 1 - math.Log(d+1)/math.Log(r+1)
	return math.Max(0, math.Min(1, c))
}
