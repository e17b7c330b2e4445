package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/tankersim/internal/config"
	"github.com/san-kum/tankersim/internal/control"
	"github.com/san-kum/tankersim/internal/integrators"
	"github.com/san-kum/tankersim/internal/vessel"
)

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Steps = 10
	cfg.Scenario.Waypoints = 60
	cfg.Scenario.GridSize = 10
	return cfg
}

func TestRegistryLists(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"rk4", "rk45"}, r.ListIntegrators())
	assert.Equal(t, []string{"hold", "linear", "lqr", "manual", "pid", "random", "script"}, r.ListPolicies())
}

func TestRegistryIntegrators(t *testing.T) {
	r := NewRegistry()

	s, err := r.GetIntegrator("rk45", config.SolverConfig{RelTol: 1e-5})
	require.NoError(t, err)
	rk45, ok := s.(*integrators.RK45)
	require.True(t, ok)
	assert.Equal(t, 1e-5, rk45.RelTol)
	assert.Equal(t, integrators.DefaultAbsTol, rk45.AbsTol)

	s, err = r.GetIntegrator("rk4", config.SolverConfig{Substeps: 12})
	require.NoError(t, err)
	assert.Equal(t, 12, s.(*integrators.RK4).Substeps)

	_, err = r.GetIntegrator("euler", config.SolverConfig{})
	assert.Error(t, err)
}

func TestRegistryPolicies(t *testing.T) {
	r := NewRegistry()
	ctx := PolicyContext{
		Params: config.PolicyConfig{Kp: 2, Kd: 10},
		Vessel: vessel.DefaultKVLCC2(),
		Dt:     3,
	}

	p, err := r.GetPolicy("pid", ctx)
	require.NoError(t, err)
	pid := p.(*control.PID)
	assert.Equal(t, 2.0, pid.Kp)
	assert.InDelta(t, ctx.Vessel.RudderRate*3, pid.Increment, 1e-12)
	assert.Equal(t, ctx.Vessel.RudderMax, pid.Limit)

	p, err = r.GetPolicy("lqr", ctx)
	require.NoError(t, err)
	assert.IsType(t, &control.Linear{}, p)

	_, err = r.GetPolicy("mpc", ctx)
	assert.Error(t, err)
}

func TestDefaultMetricsAreFresh(t *testing.T) {
	r := NewRegistry()
	a, b := r.DefaultMetrics(), r.DefaultMetrics()
	require.Len(t, a, len(b))
	for i := range a {
		assert.NotSame(t, a[i], b[i])
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Integrator = "rk45"
	cfg.Steps = 0
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestBuildUnknownNames(t *testing.T) {
	cfg := smallConfig()
	cfg.Integrator = "euler"
	e, err := New(cfg)
	require.NoError(t, err)
	_, err = e.Build(0)
	assert.Error(t, err)

	cfg = smallConfig()
	cfg.Policy = "mpc"
	e, err = New(cfg)
	require.NoError(t, err)
	_, err = e.Run(context.Background())
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	e, err := New(smallConfig())
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, res.StepsTaken)
	assert.Len(t, res.Telemetry, 11)
	for _, name := range []string{"cross_track_rms", "cross_track_max", "waypoints_passed", "stability", "control_effort"} {
		assert.Contains(t, res.Metrics, name)
	}
	assert.Greater(t, res.Final().State.U, 0.0)
}

func TestRunValidationMode(t *testing.T) {
	cfg := smallConfig()
	cfg.Mode = "validate"
	e, err := New(cfg)
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 56.635, res.Telemetry[0].Lat, 1e-6)
	assert.InDelta(t, 7.421, res.Telemetry[0].Lon, 1e-6)
}

func TestEnsembleDeterministic(t *testing.T) {
	cfg := smallConfig()
	cfg.Policy = "random"
	cfg.Seed = 100
	e, err := New(cfg)
	require.NoError(t, err)

	first, err := e.Ensemble(3).Run(context.Background(), e.SimConfig())
	require.NoError(t, err)
	second, err := e.Ensemble(3).Run(context.Background(), e.SimConfig())
	require.NoError(t, err)

	require.Len(t, first, 3)
	for i := range first {
		assert.Equal(t, int64(100+i), first[i].Seed)
		assert.Equal(t, first[i].Actions, second[i].Actions)
	}
}

func TestRunCancelled(t *testing.T) {
	e, err := New(smallConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}
