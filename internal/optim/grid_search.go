package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/tankersim/internal/config"
	"github.com/san-kum/tankersim/internal/experiment"
)

// Trial is one evaluated point of the grid.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	trials     []Trial
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Linspace returns n evenly spaced values from lo to hi.
func Linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Trials returns every point evaluated by the last Search.
func (g *GridSearch) Trials() []Trial { return g.trials }

// Search runs one experiment per grid point and returns the parameters that
// minimize metricName. Points whose build or run fails, or whose metric is
// missing or not finite, are recorded but never chosen.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (map[string]float64, float64, error) {

	best := math.Inf(1)
	var bestParams map[string]float64
	g.trials = g.trials[:0]

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, metricName, &best, &bestParams); err != nil {
		return bestParams, best, err
	}
	if bestParams == nil {
		return nil, best, fmt.Errorf("optim: no grid point produced a finite %s", metricName)
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		trial := Trial{Params: current, Value: math.NaN()}
		defer func() { g.trials = append(g.trials, trial) }()

		exp, err := buildExperiment(current)
		if err != nil {
			trial.Err = err
			return nil
		}

		result, err := exp.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			trial.Err = err
			return nil
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			trial.Err = fmt.Errorf("optim: metric %s not recorded", metricName)
			return nil
		}
		trial.Value = val
		if !math.IsNaN(val) && !math.IsInf(val, 0) && val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

// ConfigBuilder returns a builder that applies each grid point to a copy of
// base with Config.Set. All experiments share base's scenario.
func ConfigBuilder(base *config.Config, opts ...experiment.Option) (func(map[string]float64) (*experiment.Experiment, error), error) {
	exp, err := experiment.New(base, opts...)
	if err != nil {
		return nil, err
	}
	opts = append(opts, experiment.WithScenario(exp.Scenario()))

	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := *base
		for name, v := range params {
			if name == "scenario_seed" {
				return nil, fmt.Errorf("optim: scenario_seed cannot be tuned on a shared scenario")
			}
			if err := cfg.Set(name, v); err != nil {
				return nil, err
			}
		}
		return experiment.New(&cfg, opts...)
	}, nil
}
