package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/san-kum/tankersim/internal/env"
	"github.com/san-kum/tankersim/internal/geo"
	"github.com/san-kum/tankersim/internal/vessel"
)

const (
	width       = 70
	height      = 24
	trailLen    = 200
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// DefaultRadius is the half width of the chart window [m].
var DefaultRadius = geo.NMToMeter(2)

type point struct{ north, east float64 }

// chart is a north-up window centered on the vessel. A column spans half
// the distance of a row so the picture keeps its aspect in a terminal.
type chart struct {
	w, h   int
	radius float64
	canvas [][]rune
}

func newChart(w, h int, radius float64) *chart {
	c := &chart{w: w, h: h, radius: radius, canvas: make([][]rune, h)}
	for i := range c.canvas {
		c.canvas[i] = make([]rune, w)
	}
	c.clear()
	return c
}

func (c *chart) clear() {
	for y := range c.canvas {
		for x := range c.canvas[y] {
			c.canvas[y][x] = ' '
		}
	}
}

func (c *chart) set(x, y int, r rune) {
	if x >= 0 && x < c.w && y >= 0 && y < c.h {
		c.canvas[y][x] = r
	}
}

// cell maps a position to canvas coordinates around center.
func (c *chart) cell(p, center point) (int, int) {
	rowM := 2 * c.radius / float64(c.h)
	colM := rowM / 2
	x := c.w/2 + int(math.Round((p.east-center.east)/colM))
	y := c.h/2 - int(math.Round((p.north-center.north)/rowM))
	return x, y
}

func (c *chart) near(p, center point) bool {
	return math.Abs(p.north-center.north) < 3*c.radius && math.Abs(p.east-center.east) < 3*c.radius
}

func (c *chart) line(x1, y1, x2, y2 int, r rune) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		c.set(x1, y1, r)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// draw renders the path around the active segment, the trail, the depth
// sensor hits and the vessel.
func (c *chart) draw(e *env.Env, t env.Telemetry, trail []point) {
	c.clear()
	center := point{t.State.North, t.State.East}

	if path := e.Path(); path != nil {
		lo, hi := max(0, t.WP1-20), min(path.Len()-1, t.WP1+40)
		for i := lo; i < hi; i++ {
			a, b := path.At(i), path.At(i+1)
			pa, pb := point{a.North, a.East}, point{b.North, b.East}
			if !c.near(pa, center) || !c.near(pb, center) {
				continue
			}
			x1, y1 := c.cell(pa, center)
			x2, y2 := c.cell(pb, center)
			r := '·'
			if i == t.WP1 {
				r = '-'
			}
			c.line(x1, y1, x2, y2, r)
		}
	}

	for _, p := range trail {
		if c.near(p, center) {
			x, y := c.cell(p, center)
			c.set(x, y, '•')
		}
	}

	if proj := e.Projector(); proj != nil {
		rng := e.Config().Sensor.Range
		for i, h := range t.Reading.Hits {
			if i >= len(t.Reading.Distances) || t.Reading.Distances[i] >= rng {
				continue
			}
			n, east := proj.ToPlanar(h.Lat, h.Lon)
			x, y := c.cell(point{n, east}, center)
			c.set(x, y, 'x')
		}
	}

	c.set(c.w/2, c.h/2, headingRune(t.State.Psi))
}

func (c *chart) String() string {
	var b strings.Builder
	for _, row := range c.canvas {
		b.WriteString(string(row))
		b.WriteRune('\n')
	}
	return b.String()
}

// headingRune is an arrow for the nearest of eight compass directions.
func headingRune(psi float64) rune {
	arrows := []rune{'↑', '↗', '→', '↘', '↓', '↙', '←', '↖'}
	i := int(math.Round(geo.AngleTo2Pi(psi)/(math.Pi/4))) % 8
	return arrows[i]
}

// LiveRenderer redraws a chart and status report after steps, at most
// frameRate times a second. It is a sim.Observer.
type LiveRenderer struct {
	env       *env.Env
	out       io.Writer
	frameRate int
	lastFrame time.Time
	chart     *chart
	trail     []point
}

func NewLiveRenderer(e *env.Env, out io.Writer, frameRate int) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 10
	}
	return &LiveRenderer{
		env:       e,
		out:       out,
		frameRate: frameRate,
		chart:     newChart(width, height, DefaultRadius),
		trail:     make([]point, 0, trailLen),
	}
}

func (r *LiveRenderer) OnStep(t env.Telemetry, action int) {
	r.trail = append(r.trail, point{t.State.North, t.State.East})
	if len(r.trail) > trailLen {
		r.trail = r.trail[1:]
	}

	elapsed := time.Since(r.lastFrame)
	if elapsed < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()

	r.chart.draw(r.env, t, r.trail)
	r.render(t, action)
}

func (r *LiveRenderer) render(t env.Telemetry, action int) {
	var b strings.Builder
	b.WriteString(clearScreen)
	fmt.Fprintf(&b, "  t=%.0fs  wp %d/%d  action %s\n", t.Time, t.WP1, t.WP2, actionName(action))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	for _, row := range strings.Split(strings.TrimSuffix(r.chart.String(), "\n"), "\n") {
		b.WriteString("  " + row + "\n")
	}
	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	b.WriteString(t.String() + "\n")

	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }

func actionName(a int) string {
	switch a {
	case vessel.ActionStarboard:
		return "starboard"
	case vessel.ActionPort:
		return "port"
	}
	return "hold"
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
