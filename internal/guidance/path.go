package guidance

import (
	"errors"
	"fmt"
	"math"

	"github.com/peterstace/simplefeatures/geom"

	"github.com/san-kum/tankersim/internal/geo"
)

var ErrPathTooShort = errors.New("guidance: path needs at least two waypoints")

// Route is a path in geographic coordinates, before projection.
type Route struct {
	Lat []float64 `json:"lat"`
	Lon []float64 `json:"lon"`
}

func (r Route) Len() int { return len(r.Lat) }

// Project builds the planar path of r in proj.
func (r Route) Project(proj geo.Projector) (*Path, error) {
	return NewPath(r.Lat, r.Lon, proj)
}

// Waypoint is a path vertex in geographic and projected coordinates.
type Waypoint struct {
	Lat, Lon float64
	Point
}

// Path is an immutable sequence of waypoints projected into one planar frame.
// It is safe to share between goroutines.
type Path struct {
	wps []Waypoint
}

// NewPath projects the given coordinates with proj.
func NewPath(lat, lon []float64, proj geo.Projector) (*Path, error) {
	if len(lat) != len(lon) {
		return nil, fmt.Errorf("guidance: %d latitudes, %d longitudes", len(lat), len(lon))
	}
	if len(lat) < 2 {
		return nil, ErrPathTooShort
	}

	wps := make([]Waypoint, len(lat))
	for i := range lat {
		n, e := proj.ToPlanar(lat[i], lon[i])
		if math.IsNaN(n) || math.IsNaN(e) {
			return nil, fmt.Errorf("guidance: waypoint %d (%.5f, %.5f) does not project", i, lat[i], lon[i])
		}
		wps[i] = Waypoint{Lat: lat[i], Lon: lon[i], Point: Point{North: n, East: e}}
	}
	return &Path{wps: wps}, nil
}

func (p *Path) Len() int { return len(p.wps) }

func (p *Path) At(i int) Waypoint { return p.wps[i] }

// LineString returns the projected path with X = east, Y = north. It fails
// when every waypoint lies on the same point.
func (p *Path) LineString() (geom.LineString, error) {
	coords := make([]float64, 0, 2*len(p.wps))
	for _, w := range p.wps {
		coords = append(coords, w.East, w.North)
	}
	return geom.NewLineString(geom.NewSequence(coords, geom.DimXY))
}

// Length is the planar length of the path [m], zero for a path that never
// leaves its first waypoint.
func (p *Path) Length() float64 {
	ls, err := p.LineString()
	if err != nil {
		return 0
	}
	return ls.Length()
}

// Nearest returns the index i of the segment (i, i+1) closest to pos.
func (p *Path) Nearest(pos Point) int {
	best, bestDist := 0, math.Inf(1)
	for i := 0; i+1 < len(p.wps); i++ {
		if d := segmentDistance(p.wps[i].Point, p.wps[i+1].Point, pos); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func segmentDistance(a, b, pos Point) float64 {
	dn, de := b.North-a.North, b.East-a.East
	l2 := dn*dn + de*de
	t := 0.0
	if l2 > 0 {
		t = ((pos.North-a.North)*dn + (pos.East-a.East)*de) / l2
		t = math.Max(0, math.Min(1, t))
	}
	return math.Hypot(pos.North-(a.North+t*dn), pos.East-(a.East+t*de))
}
