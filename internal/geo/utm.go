package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/wroge/wgs84"
)

const epsgLonLat = 4326

// ErrInvalidZone is returned for UTM zones outside 1..60 or projections the
// transform library cannot evaluate.
var ErrInvalidZone = errors.New("geo: invalid UTM zone")

// Projector converts between geographic and planar coordinates.
type Projector interface {
	ToPlanar(lat, lon float64) (north, east float64)
	ToLatLon(north, east float64) (lat, lon float64)
}

// UTM is a fixed-zone transverse Mercator projection. The zone is not
// re-evaluated as the vessel moves, so an episode stays in one planar frame
// even when it crosses a zone boundary.
type UTM struct {
	Zone     int
	Northern bool

	forward wgs84.Func
	inverse wgs84.Func
}

// NewUTM builds the projection for the given zone and hemisphere.
func NewUTM(zone int, northern bool) (*UTM, error) {
	if zone < 1 || zone > 60 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidZone, zone)
	}

	code := 32600 + zone
	if !northern {
		code = 32700 + zone
	}

	epsg := wgs84.EPSG()
	u := &UTM{
		Zone:     zone,
		Northern: northern,
		forward:  epsg.Transform(epsgLonLat, code),
		inverse:  epsg.Transform(code, epsgLonLat),
	}
	if u.forward == nil || u.inverse == nil {
		return nil, fmt.Errorf("%w: no transform for EPSG:%d", ErrInvalidZone, code)
	}

	// project the central meridian so a broken transform fails at construction
	n, e := u.ToPlanar(0, CentralMeridian(zone))
	if math.IsNaN(n) || math.IsNaN(e) {
		return nil, fmt.Errorf("%w: EPSG:%d yields NaN", ErrInvalidZone, code)
	}
	return u, nil
}

// UTMFor returns the projection of the zone containing (lat, lon).
func UTMFor(lat, lon float64) (*UTM, error) {
	return NewUTM(ZoneFor(lon), lat >= 0)
}

// ZoneFor returns the standard 6° UTM zone of a longitude.
func ZoneFor(lon float64) int {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	zone := int(lon/6) + 1
	if zone > 60 {
		zone = 60
	}
	return zone
}

// CentralMeridian returns the central longitude of a UTM zone in degrees.
func CentralMeridian(zone int) float64 {
	return float64(zone)*6 - 183
}

func (u *UTM) ToPlanar(lat, lon float64) (north, east float64) {
	east, north, _ = u.forward(lon, lat, 0)
	return north, east
}

// Newton refinement of the inverse projection.
const (
	inverseIter = 8
	inverseTol  = 1e-4 // [m]
	jacobianH   = 1e-6 // [deg]
)

// ToLatLon inverts ToPlanar. The library inverse is only a first guess; it
// is refined by Newton steps against the forward projection until the
// position reprojects within a tenth of a millimetre.
func (u *UTM) ToLatLon(north, east float64) (lat, lon float64) {
	lon, lat, _ = u.inverse(east, north, 0)
	for i := 0; i < inverseIter; i++ {
		n0, e0 := u.ToPlanar(lat, lon)
		dn, de := north-n0, east-e0
		if math.Hypot(dn, de) < inverseTol {
			break
		}

		n1, e1 := u.ToPlanar(lat+jacobianH, lon)
		n2, e2 := u.ToPlanar(lat, lon+jacobianH)
		a, b := (n1-n0)/jacobianH, (n2-n0)/jacobianH
		c, d := (e1-e0)/jacobianH, (e2-e0)/jacobianH
		det := a*d - b*c
		if det == 0 || math.IsNaN(det) {
			break
		}
		lat += (d*dn - b*de) / det
		lon += (a*de - c*dn) / det
	}
	return lat, lon
}

func (u *UTM) String() string {
	hemi := "N"
	if !u.Northern {
		hemi = "S"
	}
	return fmt.Sprintf("UTM %d%s", u.Zone, hemi)
}
