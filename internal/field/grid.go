package field

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrEmptyGrid    = errors.New("field: grid needs at least one latitude and longitude")
	ErrShape        = errors.New("field: values do not match lat/lon axes")
	ErrNotAscending = errors.New("field: axis must be strictly ascending")
	ErrNonFinite    = errors.New("field: grid contains NaN or Inf")
)

// Scalar is a scalar quantity defined over lat/lon.
type Scalar interface {
	At(lat, lon float64) float64
}

// Grid holds Values[i][j] at (Lat[i], Lon[j]).
type Grid struct {
	Lat    []float64
	Lon    []float64
	Values [][]float64
}

// NewGrid validates the axes and values. The slices are retained, callers
// must not modify them afterwards.
func NewGrid(lat, lon []float64, values [][]float64) (*Grid, error) {
	if len(lat) == 0 || len(lon) == 0 {
		return nil, ErrEmptyGrid
	}
	if err := checkAxis("lat", lat); err != nil {
		return nil, err
	}
	if err := checkAxis("lon", lon); err != nil {
		return nil, err
	}
	if len(values) != len(lat) {
		return nil, fmt.Errorf("%w: %d rows for %d latitudes", ErrShape, len(values), len(lat))
	}
	for i, row := range values {
		if len(row) != len(lon) {
			return nil, fmt.Errorf("%w: row %d has %d columns for %d longitudes", ErrShape, i, len(row), len(lon))
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: row %d", ErrNonFinite, i)
			}
		}
	}
	return &Grid{Lat: lat, Lon: lon, Values: values}, nil
}

// Filled returns a grid over the given axes with every node set by fn.
func Filled(lat, lon []float64, fn func(i, j int) float64) (*Grid, error) {
	values := make([][]float64, len(lat))
	for i := range values {
		values[i] = make([]float64, len(lon))
		for j := range values[i] {
			values[i][j] = fn(i, j)
		}
	}
	return NewGrid(lat, lon, values)
}

// Axis returns n equally spaced values from lo to hi inclusive.
func Axis(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

func checkAxis(name string, axis []float64) error {
	for i := 1; i < len(axis); i++ {
		if !(axis[i] > axis[i-1]) {
			return fmt.Errorf("%w: %s[%d]", ErrNotAscending, name, i)
		}
	}
	return nil
}

// At interpolates bilinearly, clamping to the nearest edge outside the grid.
func (g *Grid) At(lat, lon float64) float64 {
	i0, i1, ti := bracket(g.Lat, lat)
	j0, j1, tj := bracket(g.Lon, lon)

	v00 := g.Values[i0][j0]
	v01 := g.Values[i0][j1]
	v10 := g.Values[i1][j0]
	v11 := g.Values[i1][j1]

	return (1-ti)*(1-tj)*v00 + (1-ti)*tj*v01 + ti*(1-tj)*v10 + ti*tj*v11
}

// Bounds returns the geographic extent of the grid.
func (g *Grid) Bounds() (latMin, latMax, lonMin, lonMax float64) {
	return g.Lat[0], g.Lat[len(g.Lat)-1], g.Lon[0], g.Lon[len(g.Lon)-1]
}

// bracket finds the neighbours of x on an ascending axis and the fractional
// position between them. Outside the axis both indices are the edge.
func bracket(axis []float64, x float64) (int, int, float64) {
	n := len(axis)
	if n == 1 || x <= axis[0] || math.IsNaN(x) {
		return 0, 0, 0
	}
	if x >= axis[n-1] {
		return n - 1, n - 1, 0
	}
	k := sort.Search(n, func(k int) bool { return axis[k] > x })
	i0, i1 := k-1, k
	return i0, i1, (x - axis[i0]) / (axis[i1] - axis[i0])
}

// Constant is a spatially uniform scalar.
type Constant float64

func (c Constant) At(lat, lon float64) float64 { return float64(c) }
