// Package async provides the bounded-parallelism primitive actions use
// for fan-out work inside a tick.
package async

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParallelMap applies f to every item with at most maxConcurrency calls
// in flight, preserving input order in the result. The first error
// cancels the remaining work and is returned. A maxConcurrency of zero
// or less means unbounded.
func ParallelMap[T, R any](ctx context.Context, items []T, maxConcurrency int, f func(ctx context.Context, item T) (R, error)) ([]R, error) {
	results := make([]R, len(items))

	g, ctx := errgroup.WithContext(ctx)
	if maxConcurrency > 0 {
		g.SetLimit(maxConcurrency)
	}
	for i, item := range items {
		g.Go(func() error {
			r, err := f(ctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
