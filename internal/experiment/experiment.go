package experiment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/san-kum/tankersim/internal/config"
	"github.com/san-kum/tankersim/internal/control"
	"github.com/san-kum/tankersim/internal/env"
	"github.com/san-kum/tankersim/internal/scenario"
	"github.com/san-kum/tankersim/internal/sim"
)

// Experiment ties a configuration to a generated scenario and builds
// runners for it. The scenario is shared read-only by all runners.
type Experiment struct {
	cfg      *config.Config
	registry *Registry
	scenario *scenario.Scenario
	log      zerolog.Logger
}

type Option func(*Experiment)

func WithLogger(l zerolog.Logger) Option { return func(e *Experiment) { e.log = l } }

func WithRegistry(r *Registry) Option { return func(e *Experiment) { e.registry = r } }

// WithScenario skips generation and uses s.
func WithScenario(s *scenario.Scenario) Option { return func(e *Experiment) { e.scenario = s } }

func New(cfg *config.Config, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.scenario == nil {
		s, err := scenario.Generate(cfg.Scenario)
		if err != nil {
			return nil, err
		}
		e.scenario = s
	}
	e.log.Debug().
		Int("waypoints", e.scenario.Route.Len()).
		Int64("scenario_seed", cfg.Scenario.Seed).
		Str("depth", cfg.Scenario.Depth.Kind).
		Msg("scenario ready")
	return e, nil
}

func (e *Experiment) Config() *config.Config       { return e.cfg }
func (e *Experiment) Scenario() *scenario.Scenario { return e.scenario }
func (e *Experiment) Registry() *Registry          { return e.registry }

// SimConfig is the episode configuration of a run.
func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Steps:   e.cfg.Steps,
		Mode:    e.cfg.ModeValue(),
		Start:   e.cfg.Start,
		Heading: e.cfg.Heading(),
		Seed:    e.cfg.Seed,
	}
}

// NewEnv builds an environment with its own solver.
func (e *Experiment) NewEnv() (*env.Env, error) {
	solver, err := e.registry.GetIntegrator(e.cfg.Integrator, e.cfg.Solver)
	if err != nil {
		return nil, err
	}
	return env.New(e.cfg.Env, e.scenario.Route, e.scenario.Environment,
		env.WithSolver(solver),
		env.WithLogger(e.log),
	)
}

// Policy builds the configured policy seeded with seed.
func (e *Experiment) Policy(seed int64) (control.Policy, error) {
	return e.registry.GetPolicy(e.cfg.Policy, PolicyContext{
		Params: e.cfg.Params,
		Vessel: e.cfg.Env.Vessel,
		Dt:     e.cfg.Env.Dt,
		Seed:   seed,
	})
}

// Build returns a runner with the configured policy and default metrics.
func (e *Experiment) Build(seed int64) (*sim.Runner, error) {
	p, err := e.Policy(seed)
	if err != nil {
		return nil, err
	}
	return e.BuildWith(p)
}

// BuildWith is Build with a caller supplied policy.
func (e *Experiment) BuildWith(p control.Policy) (*sim.Runner, error) {
	environment, err := e.NewEnv()
	if err != nil {
		return nil, err
	}
	r := sim.New(environment, p, sim.WithLogger(e.log))
	for _, m := range e.registry.DefaultMetrics() {
		r.AddMetric(m)
	}
	return r, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	r, err := e.Build(e.cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("experiment: %w", err)
	}
	return r.Run(ctx, e.SimConfig())
}

// Ensemble runs n members seeded from the configured seed upwards.
func (e *Experiment) Ensemble(n int) *sim.Ensemble {
	return sim.NewEnsemble(func(_ int, seed int64) (*sim.Runner, error) {
		return e.Build(seed)
	}, n, e.cfg.Seed)
}
