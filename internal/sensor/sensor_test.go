package sensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/tankersim/internal/field"
)

// flat maps one degree to 1000 m on both axes.
type flat struct{}

func (flat) ToPlanar(lat, lon float64) (float64, float64)    { return lat * 1000, lon * 1000 }
func (flat) ToLatLon(north, east float64) (float64, float64) { return north / 1000, east / 1000 }

// shoal is shallow north of a latitude.
type shoal struct{ lat float64 }

func (s shoal) At(lat, lon float64) float64 {
	if lat >= s.lat {
		return 5
	}
	return 50
}

func newSensor(t *testing.T) *Sensor {
	t.Helper()
	s, err := New(DefaultConfig())
	require.NoError(t, err)
	return s
}

func TestSampleDistances(t *testing.T) {
	s := newSensor(t)

	require.Len(t, s.dists, DefaultSamples)
	step := DefaultRange / DefaultSamples
	assert.InDelta(t, step, s.dists[0], 1e-9)
	assert.Equal(t, DefaultRange, s.dists[len(s.dists)-1])
	assert.InDelta(t, 0, s.offsets[0], 0)
	assert.InDelta(t, 2*math.Pi/DefaultBeams, s.offsets[1], 1e-12)
}

func TestDeepWaterReadsRange(t *testing.T) {
	s := newSensor(t)

	r := s.Sense(0, 0, 1.0, field.Constant(100), flat{})

	require.Len(t, r.Distances, DefaultBeams)
	for i, d := range r.Distances {
		assert.Equal(t, DefaultRange, d, "beam %d", i)
	}
	for i, c := range s.Closeness(r.Distances) {
		assert.Equal(t, 0.0, c, "beam %d", i)
	}

	// farthest point of beam 0 lies along the heading
	h := r.Hits[0]
	assert.InDelta(t, DefaultRange*math.Cos(1.0), h.Lat*1000, 1e-6)
	assert.InDelta(t, DefaultRange*math.Sin(1.0), h.Lon*1000, 1e-6)
}

func TestObstacleAhead(t *testing.T) {
	s := newSensor(t)
	d := 500.0

	r := s.Sense(0, 0, 0, shoal{lat: d / 1000}, flat{})

	step := DefaultRange / DefaultSamples
	assert.GreaterOrEqual(t, r.Distances[0], d)
	assert.Less(t, r.Distances[0], d+step)
	assert.InDelta(t, Closeness(r.Distances[0], DefaultRange), s.Closeness(r.Distances)[0], 0)
	assert.Greater(t, s.Closeness(r.Distances)[0], 0.0)

	// the beam pointing astern never reaches the shoal
	astern := DefaultBeams / 2
	assert.Equal(t, DefaultRange, r.Distances[astern+1])
}

func TestShallowUnderKeel(t *testing.T) {
	s := newSensor(t)

	r := s.Sense(0, 0, 0, field.Constant(DefaultThreshold), flat{})
	for _, d := range r.Distances {
		assert.InDelta(t, DefaultRange/DefaultSamples, d, 1e-9)
	}
}

func TestCloseness(t *testing.T) {
	tests := []struct {
		d, want float64
	}{
		{0, 1},
		{DefaultRange, 0},
		{2 * DefaultRange, 0},
		{100, 1 - math.Log(101)/math.Log(DefaultRange+1)},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Closeness(tt.d, DefaultRange), 1e-12, "d=%v", tt.d)
	}
	assert.Greater(t, Closeness(10, DefaultRange), Closeness(20, DefaultRange))
}

func TestConfigValidate(t *testing.T) {
	c := DefaultConfig()
	c.Beams = 0
	_, err := New(c)
	assert.Error(t, err)

	c = DefaultConfig()
	c.Range = -1
	assert.Error(t, c.Validate())
}
