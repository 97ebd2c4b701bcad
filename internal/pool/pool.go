// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pool runs a function over a slice with a bounded number of
// workers, returning results in the input's positional order.
package pool

import (
	"context"
	"sync"
)

// DefaultWorkers is the worker count used when a config leaves it unset.
const DefaultWorkers = 10

// Map applies fn to every item using at most workers goroutines and
// returns the results aligned with the input positions. fn must not
// return an error for per-item failures it can absorb; a returned error
// cancels the remaining work and Map reports the first one observed.
func Map[In, Out any](ctx context.Context, workers int, items []In, fn func(ctx context.Context, item In) (Out, error)) ([]Out, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(items) {
		workers = len(items)
	}

	results := make([]Out, len(items))
	if len(items) == 0 {
		return results, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out, err := fn(ctx, items[i])
				if err != nil {
					fail(err)
					return
				}
				results[i] = out
			}
		}()
	}

dispatch:
	for i := range items {
		select {
		case jobs <- i:
		case <-ctx.Done():
			fail(ctx.Err())
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
