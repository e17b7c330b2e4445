// Package scenario generates synthetic episodes: a smoothed random-walk
// route and sampled depth, current and wind fields around it.
package scenario

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/tankersim/internal/field"
	"github.com/san-kum/tankersim/internal/geo"
	"github.com/san-kum/tankersim/internal/guidance"
)

const (
	DefaultWaypoints = 2000
	DefaultSpacing   = 0.01 // [deg]
	DefaultGridSize  = 60

	maxCurrent = 0.5  // [m/s]
	maxWind    = 15.0 // [m/s]
	landDepth  = 1.0  // [m], no current where shallower
)

// Bounds is a lat/lon box in degrees.
type Bounds struct {
	LatMin float64 `yaml:"lat_min" json:"lat_min"`
	LatMax float64 `yaml:"lat_max" json:"lat_max"`
	LonMin float64 `yaml:"lon_min" json:"lon_min"`
	LonMax float64 `yaml:"lon_max" json:"lon_max"`
}

// DefaultBounds covers the eastern North Sea inside UTM zone 32.
func DefaultBounds() Bounds {
	return Bounds{LatMin: 53.5, LatMax: 58.5, LonMin: 6.0, LonMax: 11.5}
}

func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.LatMin && lat <= b.LatMax && lon >= b.LonMin && lon <= b.LonMax
}

func (b Bounds) validate() error {
	if !(b.LatMax > b.LatMin) || !(b.LonMax > b.LonMin) {
		return fmt.Errorf("scenario: empty bounds %+v", b)
	}
	return nil
}

// Depth kinds.
const (
	DepthDeep     = "deep"
	DepthConstant = "constant"
	DepthShoal    = "shoal"
)

type DepthConfig struct {
	Kind string `yaml:"kind" json:"kind"`

	// Value is the water depth for "constant" and the depth on top of the
	// bank for "shoal" [m].
	Value float64 `yaml:"value" json:"value"`

	// Waypoint places the shoal center on the route, Radius is its extent
	// [deg].
	Waypoint int     `yaml:"waypoint" json:"waypoint"`
	Radius   float64 `yaml:"radius" json:"radius"`
	Offset   float64 `yaml:"offset" json:"offset"` // eastward shift of the center [deg]
}

type Config struct {
	Seed      int64       `yaml:"seed" json:"seed"`
	Waypoints int         `yaml:"waypoints" json:"waypoints"`
	Spacing   float64     `yaml:"spacing" json:"spacing"`
	Bounds    Bounds      `yaml:"bounds" json:"bounds"`
	GridSize  int         `yaml:"grid_size" json:"grid_size"`
	Current   bool        `yaml:"current" json:"current"`
	Wind      bool        `yaml:"wind" json:"wind"`
	Depth     DepthConfig `yaml:"depth" json:"depth"`
}

func DefaultConfig() Config {
	return Config{
		Waypoints: DefaultWaypoints,
		Spacing:   DefaultSpacing,
		Bounds:    DefaultBounds(),
		GridSize:  DefaultGridSize,
		Depth:     DepthConfig{Kind: DepthDeep},
	}
}

func (c Config) Validate() error {
	if c.Waypoints < 2 {
		return fmt.Errorf("scenario: need at least 2 waypoints, got %d", c.Waypoints)
	}
	if !(c.Spacing > 0) {
		return fmt.Errorf("scenario: spacing must be positive, got %v", c.Spacing)
	}
	if c.GridSize < 2 {
		return fmt.Errorf("scenario: grid size must be at least 2, got %d", c.GridSize)
	}
	switch c.Depth.Kind {
	case "", DepthDeep:
	case DepthConstant, DepthShoal:
		if !(c.Depth.Value > 0) {
			return fmt.Errorf("scenario: %s depth must be positive, got %v", c.Depth.Kind, c.Depth.Value)
		}
	default:
		return fmt.Errorf("scenario: unknown depth kind %q", c.Depth.Kind)
	}
	return c.Bounds.validate()
}

// Scenario is one generated episode setting. It is immutable and may be
// shared between environments.
type Scenario struct {
	Route       guidance.Route
	Environment *field.Environment
}

// Generate builds a scenario from cfg. The same config always yields the
// same scenario.
func Generate(cfg Config) (*Scenario, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := NewGenerator(cfg.Seed, cfg.Bounds)

	route := g.Route(cfg.Waypoints, cfg.Spacing)

	depth, err := g.Depth(cfg.Depth, route, cfg.GridSize)
	if err != nil {
		return nil, err
	}

	var current, wind field.Vector
	if cfg.Current {
		if current, err = g.Current(depth, cfg.GridSize); err != nil {
			return nil, err
		}
	}
	if cfg.Wind {
		if wind, err = g.Wind(cfg.GridSize); err != nil {
			return nil, err
		}
	}

	return &Scenario{Route: route, Environment: field.NewEnvironment(depth, current, wind)}, nil
}

// Generator draws scenario parts from one seeded source.
type Generator struct {
	rng    *rand.Rand
	bounds Bounds
}

func NewGenerator(seed int64, b Bounds) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed)), bounds: b}
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*g.rng.Float64()
}

// Route draws n waypoints spaced by step degrees. The heading changes
// through a doubly smoothed random walk, and points are clipped to the
// bounds. The start lies in the central half of the bounds.
func (g *Generator) Route(n int, step float64) guidance.Route {
	b := g.bounds
	latRange, lonRange := b.LatMax-b.LatMin, b.LonMax-b.LonMin

	r := guidance.Route{Lat: make([]float64, n), Lon: make([]float64, n)}
	r.Lat[0] = g.uniform(b.LatMin+0.25*latRange, b.LatMax-0.25*latRange)
	r.Lon[0] = g.uniform(b.LonMin+0.25*lonRange, b.LonMax-0.25*lonRange)

	ang := g.uniform(0, 2*math.Pi)
	var turn, turn2 float64
	for i := 1; i < n; i++ {
		turn2 = 0.5*turn2 + 0.5*geo.Dtr(g.uniform(-5, 5))
		turn = 0.5*turn + 0.5*turn2
		ang = geo.AngleTo2Pi(ang + turn)

		dLon, dLat := geo.XYFromPolar(step, ang)
		r.Lat[i] = clamp(r.Lat[i-1]+dLat, b.LatMin, b.LatMax)
		r.Lon[i] = clamp(r.Lon[i-1]+dLon, b.LonMin, b.LonMax)
	}
	return r
}

// Depth builds the depth field described by cfg.
func (g *Generator) Depth(cfg DepthConfig, route guidance.Route, size int) (field.Scalar, error) {
	switch cfg.Kind {
	case "", DepthDeep:
		return field.Constant(field.DeepWater), nil
	case DepthConstant:
		return field.Constant(cfg.Value), nil
	case DepthShoal:
		idx := cfg.Waypoint
		if idx < 0 || idx >= route.Len() {
			return nil, fmt.Errorf("scenario: shoal waypoint %d outside route of %d", idx, route.Len())
		}
		radius := cfg.Radius
		if radius <= 0 {
			radius = 0.02
		}
		return Shoal(g.bounds, size, route.Lat[idx], route.Lon[idx]+cfg.Offset, radius, cfg.Value, field.DeepWater)
	}
	return nil, fmt.Errorf("scenario: unknown depth kind %q", cfg.Kind)
}

// Shoal is a Gaussian bank of minimum depth top centered at (lat, lon) in
// otherwise uniform water of depth deep.
func Shoal(b Bounds, size int, lat, lon, radius, top, deep float64) (*field.Grid, error) {
	lats := field.Axis(b.LatMin, b.LatMax, size)
	lons := field.Axis(b.LonMin, b.LonMax, size)

	// refine around the bank so the grid resolves it
	lats = refine(lats, lat, radius, size)
	lons = refine(lons, lon, radius, size)

	return field.Filled(lats, lons, func(i, j int) float64 {
		d2 := (lats[i]-lat)*(lats[i]-lat) + (lons[j]-lon)*(lons[j]-lon)
		return deep - (deep-top)*math.Exp(-d2/(2*radius*radius))
	})
}

// refine merges n extra nodes covering ±3 radius around c into a sorted
// axis.
func refine(axis []float64, c, radius float64, n int) []float64 {
	// odd count puts a node on the center
	if n%2 == 0 {
		n++
	}
	extra := field.Axis(c-3*radius, c+3*radius, n)
	out := make([]float64, 0, len(axis)+len(extra))
	i, j := 0, 0
	for i < len(axis) || j < len(extra) {
		var v float64
		if j >= len(extra) || (i < len(axis) && axis[i] < extra[j]) {
			v = axis[i]
			i++
		} else {
			v = extra[j]
			j++
		}
		if len(out) == 0 || v > out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// areas assigns each grid index to one of k homogeneous bands.
func areas(n, k int) []int {
	out := make([]int, n)
	per := n / k
	if per == 0 {
		per = 1
	}
	for i := range out {
		out[i] = min(i/per, k-1)
	}
	return out
}

// Current draws an area-wise homogeneous current of at most 0.5 m/s, zero
// where the water is shallower than 1 m.
func (g *Generator) Current(depth field.Scalar, size int) (field.Polar, error) {
	nLat, nLon := 4+g.rng.Intn(3), 4+g.rng.Intn(3)
	speed := make([][]float64, nLat)
	angle := make([][]float64, nLat)
	for i := range speed {
		speed[i] = make([]float64, nLon)
		angle[i] = make([]float64, nLon)
		for j := range speed[i] {
			speed[i][j] = clamp(g.rng.ExpFloat64()*0.2, 0, maxCurrent)
			angle[i][j] = g.uniform(0, 2*math.Pi)
		}
	}

	return g.polar(size, nLat, nLon, func(lat, lon float64, a, b int) (float64, float64) {
		if depth.At(lat, lon) < landDepth {
			return 0, 0
		}
		s := clamp(speed[a][b]+0.25*g.rng.NormFloat64(), 0, maxCurrent)
		return s, angle[a][b] + geo.Dtr(5*g.rng.NormFloat64())
	})
}

// Wind draws an area-wise homogeneous wind of up to 15 m/s plus noise.
func (g *Generator) Wind(size int) (field.Polar, error) {
	nLat, nLon := 4+g.rng.Intn(3), 4+g.rng.Intn(3)
	speed := make([][]float64, nLat)
	angle := make([][]float64, nLat)
	for i := range speed {
		speed[i] = make([]float64, nLon)
		angle[i] = make([]float64, nLon)
		for j := range speed[i] {
			speed[i][j] = g.uniform(0, maxWind)
			angle[i][j] = g.uniform(0, 2*math.Pi)
		}
	}

	return g.polar(size, nLat, nLon, func(_, _ float64, a, b int) (float64, float64) {
		s := math.Max(0, speed[a][b]+g.rng.NormFloat64())
		return s, angle[a][b] + geo.Dtr(5*g.rng.NormFloat64())
	})
}

func (g *Generator) polar(size, nLat, nLon int, sample func(lat, lon float64, a, b int) (float64, float64)) (field.Polar, error) {
	b := g.bounds
	lats := field.Axis(b.LatMin, b.LatMax, size)
	lons := field.Axis(b.LonMin, b.LonMax, size)
	latArea, lonArea := areas(size, nLat), areas(size, nLon)

	speed := make([][]float64, size)
	angle := make([][]float64, size)
	for i := range lats {
		speed[i] = make([]float64, size)
		angle[i] = make([]float64, size)
		for j := range lons {
			speed[i][j], angle[i][j] = sample(lats[i], lons[j], latArea[i], lonArea[j])
		}
	}

	sg, err := field.NewGrid(lats, lons, speed)
	if err != nil {
		return field.Polar{}, err
	}
	ag, err := field.NewGrid(lats, lons, angle)
	if err != nil {
		return field.Polar{}, err
	}
	return field.Polar{Speed: sg, Angle: ag}, nil
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
