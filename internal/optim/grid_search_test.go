package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/tankersim/internal/config"
	"github.com/san-kum/tankersim/internal/experiment"
)

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Steps = 8
	cfg.Scenario.Waypoints = 60
	cfg.Scenario.GridSize = 10
	return cfg
}

func TestNewGridSearchValidates(t *testing.T) {
	_, err := NewGridSearch([]string{"kp"}, nil)
	assert.Error(t, err)

	_, err = NewGridSearch([]string{"kp"}, [][]float64{{}})
	assert.Error(t, err)
}

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, Linspace(0, 1, 3))
	assert.Equal(t, []float64{2}, Linspace(2, 5, 1))
}

func TestSearchVisitsEveryPoint(t *testing.T) {
	g, err := NewGridSearch([]string{"kp", "kd"}, [][]float64{{0.5, 1}, {10, 20, 30}})
	require.NoError(t, err)

	build, err := ConfigBuilder(smallConfig())
	require.NoError(t, err)

	best, val, err := g.Search(context.Background(), build, "cross_track_rms")
	require.NoError(t, err)

	assert.Len(t, g.Trials(), 6)
	assert.Contains(t, best, "kp")
	assert.Contains(t, best, "kd")
	for _, tr := range g.Trials() {
		require.NoError(t, tr.Err)
		assert.GreaterOrEqual(t, tr.Value, val)
	}
}

func TestSearchRecordsFailures(t *testing.T) {
	g, err := NewGridSearch([]string{"warp"}, [][]float64{{1, 2}})
	require.NoError(t, err)

	build, err := ConfigBuilder(smallConfig())
	require.NoError(t, err)

	_, _, err = g.Search(context.Background(), build, "cross_track_rms")
	assert.Error(t, err)
	require.Len(t, g.Trials(), 2)
	assert.Error(t, g.Trials()[0].Err)
}

func TestSearchCancelled(t *testing.T) {
	g, err := NewGridSearch([]string{"kp"}, [][]float64{{1, 2, 3}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	build := func(map[string]float64) (*experiment.Experiment, error) {
		calls++
		return experiment.New(smallConfig())
	}
	_, _, err = g.Search(ctx, build, "cross_track_rms")
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, calls)
}
