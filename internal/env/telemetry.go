package env

import (
	"fmt"
	"strings"

	"github.com/san-kum/tankersim/internal/field"
	"github.com/san-kum/tankersim/internal/geo"
	"github.com/san-kum/tankersim/internal/guidance"
	"github.com/san-kum/tankersim/internal/sensor"
	"github.com/san-kum/tankersim/internal/vessel"
)

// Telemetry is the full state of an episode after Reset or Step.
type Telemetry struct {
	Step int     `json:"step"`
	Time float64 `json:"time"`

	Lat   float64      `json:"lat"`
	Lon   float64      `json:"lon"`
	State vessel.State `json:"state"`

	Rudder float64 `json:"rudder"`
	Nps    float64 `json:"nps"`

	Env field.Sample `json:"env"`

	Guidance    guidance.Result `json:"guidance"`
	Course      float64         `json:"course"`
	CourseError float64         `json:"course_error"` // desired minus actual course, [-π, π)
	WP1         int             `json:"wp1"`
	WP2         int             `json:"wp2"`

	Reading sensor.Reading `json:"-"`
}

// String renders a multi-line status report.
func (t Telemetry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Step: %d\n", t.Step)
	fmt.Fprintf(&b, "Lat [°]: %.4f, Lon [°]: %.4f, psi [°]: %.2f\n", t.Lat, t.Lon, geo.Rtd(t.State.Psi))
	fmt.Fprintf(&b, "u [m/s]: %.3f, v [m/s]: %.3f, r [rad/s]: %.3f\n", t.State.U, t.State.V, t.State.R)
	fmt.Fprintf(&b, "Rudder angle [°]: %.2f, nps [1/s]: %.2f\n", geo.Rtd(t.Rudder), t.Nps)
	fmt.Fprintf(&b, "Water depth [m]: %.2f\n", t.Env.Depth)
	fmt.Fprintf(&b, "Wind speed [kn]: %.2f, Wind direction [°]: %.2f\n", geo.MpsToKnots(t.Env.WindSpeed), geo.Rtd(t.Env.WindAngle))
	fmt.Fprintf(&b, "Current speed [m/s]: %.2f, Current direction [°]: %.2f\n", t.Env.CurrentSpeed, geo.Rtd(t.Env.CurrentAngle))
	fmt.Fprintf(&b, "CTE [m]: %.2f, Desired course [°]: %.2f, Course error [°]: %.2f",
		t.Guidance.CrossTrack, geo.Rtd(t.Guidance.DesiredCourse), geo.Rtd(t.CourseError))
	return b.String()
}
