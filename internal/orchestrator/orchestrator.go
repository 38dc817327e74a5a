// Package orchestrator runs independent jobs over a batch of items with
// bounded concurrency and a per-item timeout.
package orchestrator

import (
	"context"
	"sync"
	"time"
)

type OrchestratorConfig struct {
	// Concurrency caps the jobs running at once. Values below 1 mean 1.
	Concurrency int

	// Timeout bounds each job. Zero means no per-job timeout.
	Timeout time.Duration
}

// Job processes one item.
type Job[I, O any] func(ctx context.Context, item I) (O, error)

// ItemResult is the outcome for the item at Index.
type ItemResult[O any] struct {
	Index int
	Value O
	Err   error
}

type OrchestratorResult[O any] struct {
	// Results holds one entry per item, in input order.
	Results   []ItemResult[O]
	Succeeded int
	Failed    int
}

// Errors returns the failed results' errors in input order.
func (r *OrchestratorResult[O]) Errors() []error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errs
}

type Orchestrator[I, O any] struct {
	job    Job[I, O]
	config OrchestratorConfig
}

func New[I, O any](job Job[I, O], config OrchestratorConfig) *Orchestrator[I, O] {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	return &Orchestrator[I, O]{
		job:    job,
		config: config,
	}
}

// Execute runs the job on every item. Items not started before ctx is done
// fail with ctx's error.
func (o *Orchestrator[I, O]) Execute(ctx context.Context, items []I) *OrchestratorResult[O] {
	result := &OrchestratorResult[O]{
		Results: make([]ItemResult[O], len(items)),
	}

	sem := make(chan struct{}, o.config.Concurrency)
	var wg sync.WaitGroup

	for i, item := range items {
		result.Results[i].Index = i
		if err := ctx.Err(); err != nil {
			result.Results[i].Err = err
			continue
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			result.Results[i].Err = ctx.Err()
			continue
		}

		wg.Add(1)
		go func(index int, item I) {
			defer wg.Done()
			defer func() { <-sem }()

			jobCtx, cancel := ctx, context.CancelFunc(func() {})
			if o.config.Timeout > 0 {
				jobCtx, cancel = context.WithTimeout(ctx, o.config.Timeout)
			}
			defer cancel()

			// each goroutine owns its slot
			result.Results[index].Value, result.Results[index].Err = o.job(jobCtx, item)
		}(i, item)
	}
	wg.Wait()

	for _, res := range result.Results {
		if res.Err != nil {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}
	return result
}
