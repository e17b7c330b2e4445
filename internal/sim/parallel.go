package sim

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// Factory builds an independent runner for ensemble member idx. Runners
// must not share an Env or a stateful policy.
type Factory func(idx int, seed int64) (*Runner, error)

// Ensemble runs independent episodes concurrently.
type Ensemble struct {
	factory   Factory
	numRuns   int
	seedStart int64

	// Workers bounds the number of concurrent episodes, GOMAXPROCS when
	// zero.
	Workers int
}

func NewEnsemble(f Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{factory: f, numRuns: numRuns, seedStart: seedStart}
}

// Run returns results in member order. The first error of any member is
// returned after all members finished.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			runner, err := e.factory(idx, cfgCopy.Seed)
			if err != nil {
				errs[idx] = fmt.Errorf("member %d: %w", idx, err)
				return
			}
			results[idx], errs[idx] = runner.Run(ctx, cfgCopy)
			if errs[idx] != nil {
				errs[idx] = fmt.Errorf("member %d: %w", idx, errs[idx])
			}
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}

	return results, nil
}
