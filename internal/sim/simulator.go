package sim

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/san-kum/tankersim/internal/control"
	"github.com/san-kum/tankersim/internal/env"
)

// Runner drives one Env with a policy for whole episodes.
type Runner struct {
	env       *env.Env
	policy    control.Policy
	metrics   []Metric
	observers []Observer
	log       zerolog.Logger
}

type Option func(*Runner)

func WithLogger(l zerolog.Logger) Option { return func(r *Runner) { r.log = l } }

func New(e *env.Env, policy control.Policy, opts ...Option) *Runner {
	r := &Runner{
		env:       e,
		policy:    policy,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

func (r *Runner) Env() *env.Env { return r.env }

// Run resets the environment and steps it until the policy's episode is done,
// cfg.Steps is reached or ctx is cancelled. The partial result is returned
// together with any error.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := r.validateConfig(cfg); err != nil {
		return nil, err
	}
	steps := cfg.Steps
	if steps > env.MaxEpisodeSteps {
		r.log.Warn().Int("steps", steps).Int("max", env.MaxEpisodeSteps).Msg("episode length capped")
		steps = env.MaxEpisodeSteps
	}

	result := &Result{
		Telemetry: make([]env.Telemetry, 0, steps+1),
		Actions:   make([]int, 0, steps),
		Rewards:   make([]float64, 0, steps),
		Metrics:   make(map[string]float64),
		Seed:      cfg.Seed,
	}

	for _, m := range r.metrics {
		m.Reset()
	}
	if rs, ok := r.policy.(control.Resetter); ok {
		rs.Reset()
	}

	obs, err := r.env.Reset(cfg.resetOptions())
	if err != nil {
		return nil, err
	}
	result.Telemetry = append(result.Telemetry, r.env.Snapshot())

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			r.collect(result)
			return result, ctx.Err()
		default:
		}

		tel := r.env.Snapshot()
		a := r.policy.Act(obs, tel)
		for _, m := range r.metrics {
			m.Observe(tel, a)
		}

		next, reward, done, err := r.env.Step(a)
		if err != nil {
			r.collect(result)
			return result, fmt.Errorf("step %d: %w", i, err)
		}
		obs = next

		tel = r.env.Snapshot()
		for _, o := range r.observers {
			o.OnStep(tel, a)
		}

		result.Telemetry = append(result.Telemetry, tel)
		result.Actions = append(result.Actions, a)
		result.Rewards = append(result.Rewards, reward)
		result.Return += reward
		result.StepsTaken++

		if done {
			result.Done = true
			break
		}
	}

	r.collect(result)

	final := result.Final()
	r.log.Info().
		Int64("seed", cfg.Seed).
		Int("steps", result.StepsTaken).
		Float64("time", final.Time).
		Bool("done", result.Done).
		Int("wp1", final.WP1).
		Float64("cte", final.Guidance.CrossTrack).
		Msg("episode finished")

	return result, nil
}

func (r *Runner) collect(result *Result) {
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (r *Runner) validateConfig(cfg Config) error {
	if cfg.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}
	return nil
}
