package metrics

import (
	"math"

	"github.com/san-kum/tankersim/internal/env"
)

// DefaultCourseTolerance is 5 degrees.
const DefaultCourseTolerance = 5 * math.Pi / 180

// Stability is the fraction of steps with the course error within a
// threshold [rad].
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(t env.Telemetry, action int) {
	s.samples++
	if math.Abs(t.CourseError) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// MinClearance is the shortest sensor distance seen on any beam [m].
type MinClearance struct {
	name string
	min  float64
}

func NewMinClearance() *MinClearance {
	return &MinClearance{name: "min_clearance", min: math.Inf(1)}
}

func (m *MinClearance) Name() string { return m.name }

func (m *MinClearance) Observe(t env.Telemetry, action int) {
	for _, d := range t.Reading.Distances {
		m.min = math.Min(m.min, d)
	}
}

// Value is +Inf until a reading was observed.
func (m *MinClearance) Value() float64 { return m.min }

func (m *MinClearance) Reset() { m.min = math.Inf(1) }
