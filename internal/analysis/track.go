package analysis

import (
	"errors"
	"math"
	"strings"

	"github.com/san-kum/tankersim/internal/env"
	"github.com/san-kum/tankersim/internal/geo"
)

// ErrTurnIncomplete is returned when a record never turns far enough.
var ErrTurnIncomplete = errors.New("analysis: turn not completed")

type Point struct {
	North, East float64
}

// Track extracts the planar positions of a run.
func Track(tel []env.Telemetry) []Point {
	pts := make([]Point, len(tel))
	for i, t := range tel {
		pts[i] = Point{North: t.State.North, East: t.State.East}
	}
	return pts
}

// Series extracts one value per telemetry record.
func Series(tel []env.Telemetry, f func(env.Telemetry) float64) []float64 {
	out := make([]float64, len(tel))
	for i, t := range tel {
		out[i] = f(t)
	}
	return out
}

// TurningCircle holds the standard turning measures [m]. Advance is
// measured along the initial heading, transfer across it, both at 90° of
// heading change. The tactical diameter is the transfer at 180°.
type TurningCircle struct {
	Advance          float64
	Transfer         float64
	TacticalDiameter float64
	Time90           float64 // [s]
	Time180          float64 // [s]
}

// Turning measures a constant rudder turn starting at tel[0]. Heading change
// is accumulated through wraps, in either turn direction.
func Turning(tel []env.Telemetry) (TurningCircle, error) {
	var tc TurningCircle
	if len(tel) < 2 {
		return tc, ErrTurnIncomplete
	}

	start := tel[0].State
	sin, cos := math.Sincos(start.Psi)
	along := func(p env.Telemetry) (float64, float64) {
		dn := p.State.North - start.North
		de := p.State.East - start.East
		return dn*cos + de*sin, -dn*sin + de*cos
	}

	turned := 0.0
	have90 := false
	for i := 1; i < len(tel); i++ {
		turned += geo.AngleToPi(tel[i].State.Psi - tel[i-1].State.Psi)
		a, c := along(tel[i])
		if !have90 && math.Abs(turned) >= math.Pi/2 {
			tc.Advance = a
			tc.Transfer = math.Abs(c)
			tc.Time90 = tel[i].Time - tel[0].Time
			have90 = true
		}
		if math.Abs(turned) >= math.Pi {
			tc.TacticalDiameter = math.Abs(c)
			tc.Time180 = tel[i].Time - tel[0].Time
			return tc, nil
		}
	}
	return tc, ErrTurnIncomplete
}

// TrackToASCII draws the track on a width x height canvas with north up.
// The start is marked 'S' and the end 'E'.
func TrackToASCII(pts []Point, width, height int) string {
	if len(pts) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minN, maxN := pts[0].North, pts[0].North
	minE, maxE := pts[0].East, pts[0].East
	for _, p := range pts {
		minN = math.Min(minN, p.North)
		maxN = math.Max(maxN, p.North)
		minE = math.Min(minE, p.East)
		maxE = math.Max(maxE, p.East)
	}

	// equal scale on both axes
	span := math.Max(maxN-minN, maxE-minE)
	if span == 0 {
		span = 1
	}
	midN, midE := 0.5*(minN+maxN), 0.5*(minE+maxE)
	minN, minE = midN-0.55*span, midE-0.55*span
	span *= 1.1

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	cell := func(p Point) (int, int, bool) {
		col := int((p.East - minE) / span * float64(width-1))
		row := height - 1 - int((p.North-minN)/span*float64(height-1))
		return row, col, row >= 0 && row < height && col >= 0 && col < width
	}

	for _, p := range pts {
		if row, col, ok := cell(p); ok {
			canvas[row][col] = '•'
		}
	}
	if row, col, ok := cell(pts[0]); ok {
		canvas[row][col] = 'S'
	}
	if row, col, ok := cell(pts[len(pts)-1]); ok {
		canvas[row][col] = 'E'
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(strings.TrimRight(string(row), " "))
		sb.WriteRune('\n')
	}
	return sb.String()
}
