package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/tankersim/internal/config"
	"github.com/san-kum/tankersim/internal/control"
	"github.com/san-kum/tankersim/internal/dynamo"
	"github.com/san-kum/tankersim/internal/integrators"
	"github.com/san-kum/tankersim/internal/metrics"
	"github.com/san-kum/tankersim/internal/sim"
	"github.com/san-kum/tankersim/internal/vessel"
)

// PolicyContext carries what a policy constructor needs besides its
// parameters.
type PolicyContext struct {
	Params config.PolicyConfig
	Vessel vessel.Params
	Dt     float64
	Seed   int64
}

// increment is the rudder change of a single action.
func (c PolicyContext) increment() float64 { return c.Vessel.RudderRate * c.Dt }

type Registry struct {
	integrators map[string]func(config.SolverConfig) dynamo.Solver
	policies    map[string]func(PolicyContext) control.Policy
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func(config.SolverConfig) dynamo.Solver),
		policies:    make(map[string]func(PolicyContext) control.Policy),
	}

	r.integrators["rk45"] = func(c config.SolverConfig) dynamo.Solver {
		return integrators.NewRK45WithTolerance(c.RelTol, c.AbsTol)
	}
	r.integrators["rk4"] = func(c config.SolverConfig) dynamo.Solver {
		s := integrators.NewRK4()
		if c.Substeps > 0 {
			s.Substeps = c.Substeps
		}
		return s
	}

	r.policies["hold"] = func(PolicyContext) control.Policy { return control.NewHold() }
	r.policies["random"] = func(c PolicyContext) control.Policy { return control.NewRandom(c.Seed) }
	r.policies["manual"] = func(PolicyContext) control.Policy { return control.NewManual() }
	r.policies["script"] = func(c PolicyContext) control.Policy {
		return control.NewScript(c.Params.Script, c.Params.Loop)
	}
	r.policies["pid"] = func(c PolicyContext) control.Policy {
		return control.NewPID(c.Params.Kp, c.Params.Ki, c.Params.Kd, c.increment(), c.Vessel.RudderMax)
	}
	linear := func(c PolicyContext) control.Policy {
		return control.NewTrackKeeping(c.increment(), c.Vessel.RudderMax)
	}
	r.policies["linear"] = linear
	r.policies["lqr"] = linear

	return r
}

func (r *Registry) GetIntegrator(name string, cfg config.SolverConfig) (dynamo.Solver, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(cfg), nil
}

func (r *Registry) GetPolicy(name string, ctx PolicyContext) (control.Policy, error) {
	fn, ok := r.policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown policy: %s", name)
	}
	return fn(ctx), nil
}

func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }
func (r *Registry) ListPolicies() []string    { return sortedKeys(r.policies) }

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns a fresh set of episode metrics.
func (r *Registry) DefaultMetrics() []sim.Metric {
	return []sim.Metric{
		metrics.NewCrossTrackRMS(),
		metrics.NewMaxCrossTrack(),
		metrics.NewProgress(),
		metrics.NewStability(metrics.DefaultCourseTolerance),
		metrics.NewControlEffort(),
		metrics.NewRudderActivity(),
		metrics.NewMinClearance(),
	}
}
