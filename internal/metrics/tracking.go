package metrics

import (
	"math"

	"github.com/san-kum/tankersim/internal/env"
)

// CrossTrackRMS is the root mean square cross-track error [m].
type CrossTrackRMS struct {
	name    string
	sumSq   float64
	samples int
}

func NewCrossTrackRMS() *CrossTrackRMS {
	return &CrossTrackRMS{name: "cross_track_rms"}
}

func (c *CrossTrackRMS) Name() string { return c.name }

func (c *CrossTrackRMS) Observe(t env.Telemetry, action int) {
	ye := t.Guidance.CrossTrack
	c.sumSq += ye * ye
	c.samples++
}

func (c *CrossTrackRMS) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return math.Sqrt(c.sumSq / float64(c.samples))
}

func (c *CrossTrackRMS) Reset() {
	c.sumSq = 0
	c.samples = 0
}

// MaxCrossTrack is the largest absolute cross-track error seen [m].
type MaxCrossTrack struct {
	name string
	max  float64
}

func NewMaxCrossTrack() *MaxCrossTrack {
	return &MaxCrossTrack{name: "cross_track_max"}
}

func (m *MaxCrossTrack) Name() string { return m.name }

func (m *MaxCrossTrack) Observe(t env.Telemetry, action int) {
	m.max = math.Max(m.max, math.Abs(t.Guidance.CrossTrack))
}

func (m *MaxCrossTrack) Value() float64 { return m.max }

func (m *MaxCrossTrack) Reset() { m.max = 0 }

// Progress is the number of waypoints passed since the first observation.
type Progress struct {
	name    string
	first   int
	last    int
	samples int
}

func NewProgress() *Progress {
	return &Progress{name: "waypoints_passed"}
}

func (p *Progress) Name() string { return p.name }

func (p *Progress) Observe(t env.Telemetry, action int) {
	if p.samples == 0 {
		p.first = t.WP1
	}
	p.last = t.WP1
	p.samples++
}

func (p *Progress) Value() float64 { return float64(p.last - p.first) }

func (p *Progress) Reset() {
	p.first = 0
	p.last = 0
	p.samples = 0
}
