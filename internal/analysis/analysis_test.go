package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/tankersim/internal/env"
	"github.com/san-kum/tankersim/internal/vessel"
)

func TestPowerSpectrumLength(t *testing.T) {
	assert.Len(t, PowerSpectrum(make([]float64, 100)), 51)
	assert.Len(t, PowerSpectrum(make([]float64, 7)), 4)
	assert.Nil(t, PowerSpectrum(nil))
}

func TestPowerSpectrumRemovesMean(t *testing.T) {
	data := make([]float64, 30)
	for i := range data {
		data[i] = 3 + math.Cos(2*math.Pi*float64(i)/10)
	}
	ps := PowerSpectrum(data)
	assert.InDelta(t, 0, ps[0], 1e-9)
	// a unit cosine over 3 periods of 30 samples has amplitude N/2 in bin 3
	assert.InDelta(t, 15, ps[3], 1e-9)
}

func TestDominantPeriod(t *testing.T) {
	const dt = 3.0
	data := make([]float64, 64)
	for i := range data {
		data[i] = 5 + math.Sin(2*math.Pi*float64(i)/8)
	}
	period, ok := DominantPeriod(data, dt)
	require.True(t, ok)
	assert.InDelta(t, 8*dt, period, 1e-9)
}

func TestDominantPeriodAnyLength(t *testing.T) {
	const dt = 3.0
	data := make([]float64, 90)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * float64(i) / 15)
	}
	period, ok := DominantPeriod(data, dt)
	require.True(t, ok)
	assert.InDelta(t, 15*dt, period, 1e-9)
}

func TestDominantPeriodFlatSignal(t *testing.T) {
	_, ok := DominantPeriod([]float64{2, 2, 2, 2, 2, 2}, 1)
	assert.False(t, ok)

	_, ok = DominantPeriod([]float64{1}, 1)
	assert.False(t, ok)
}

func TestSpiralTest(t *testing.T) {
	p := vessel.DefaultKVLCC2()
	points, err := SpiralTest(p, nil, 3.0, 3, 3, 600, 60)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.InDelta(t, -p.RudderMax, points[0].Rudder, 1e-12)
	assert.InDelta(t, 0.0, points[1].Rudder, 1e-12)
	assert.InDelta(t, p.RudderMax, points[2].Rudder, 1e-12)

	assert.Less(t, points[0].YawRate, 0.0)
	assert.InDelta(t, 0.0, points[1].YawRate, 1e-9)
	assert.Greater(t, points[2].YawRate, 0.0)

	// turning costs speed
	assert.Less(t, points[2].Speed, points[1].Speed)
}

func TestSpiralTestRejectsBadInput(t *testing.T) {
	p := vessel.DefaultKVLCC2()
	_, err := SpiralTest(p, nil, 3, 1, 3, 10, 10)
	assert.Error(t, err)
	_, err = SpiralTest(p, nil, 3, 3, 0, 10, 10)
	assert.Error(t, err)
}

func turningRun(t *testing.T, rudder float64, seconds float64) []env.Telemetry {
	t.Helper()
	v, err := vessel.New(vessel.DefaultKVLCC2())
	require.NoError(t, err)
	u := v.SpeedFromPropellerRate(3, 0, vessel.Forcing{})
	v.Reset(vessel.State{Psi: 0.3, U: u}, 3)
	v.Rudder = rudder

	tel := []env.Telemetry{{State: v.State}}
	for time := v.Dt; time <= seconds; time += v.Dt {
		require.NoError(t, v.Step(vessel.Forcing{}))
		tel = append(tel, env.Telemetry{Time: time, State: v.State})
	}
	return tel
}

func TestTurning(t *testing.T) {
	p := vessel.DefaultKVLCC2()
	for _, rudder := range []float64{p.RudderMax, -p.RudderMax} {
		tc, err := Turning(turningRun(t, rudder, 3000))
		require.NoError(t, err)

		assert.Greater(t, tc.Advance, 0.0)
		assert.Greater(t, tc.Transfer, 0.0)
		assert.Greater(t, tc.TacticalDiameter, tc.Transfer)
		assert.Greater(t, tc.Time180, tc.Time90)
	}
}

func TestTurningIncomplete(t *testing.T) {
	_, err := Turning(turningRun(t, 0, 300))
	assert.ErrorIs(t, err, ErrTurnIncomplete)

	_, err = Turning(nil)
	assert.ErrorIs(t, err, ErrTurnIncomplete)
}

func TestTrackToASCII(t *testing.T) {
	pts := []Point{{0, 0}, {50, 0}, {100, 0}}
	out := TrackToASCII(pts, 20, 10)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, 10)
	assert.Contains(t, out, "S")
	assert.Contains(t, out, "E")
	// north is up
	assert.Less(t, strings.Index(out, "E"), strings.Index(out, "S"))

	assert.Empty(t, TrackToASCII(nil, 20, 10))
}

func TestSeries(t *testing.T) {
	tel := []env.Telemetry{{Rudder: 0.1}, {Rudder: -0.2}}
	assert.Equal(t, []float64{0.1, -0.2}, Series(tel, func(t env.Telemetry) float64 { return t.Rudder }))
	assert.Equal(t, []Point{{}, {}}, Track(tel))
}
