package concurrent

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ForEach runs action for every element with at most limit goroutines in
// flight. limit <= 0 means no limit. The context passed to action is canceled
// as soon as one action fails, and the first error is returned.
func ForEach[T any](ctx context.Context, items []T, limit int, action func(ctx context.Context, idx int, item T) error) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for idx, item := range items {
		g.Go(func() error {
			return action(ctx, idx, item)
		})
	}
	return g.Wait()
}

// Map applies mapFn to every element concurrently, preserving order.
func Map[T any, R any](ctx context.Context, items []T, limit int, mapFn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	out := make([]R, len(items))
	err := ForEach(ctx, items, limit, func(ctx context.Context, idx int, item T) error {
		r, err := mapFn(ctx, item)
		if err != nil {
			return err
		}
		out[idx] = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ParallelMust runs action for each element in its own goroutine and waits.
func ParallelMust[T any](items []T, action func(T)) {
	var wg sync.WaitGroup
	for _, item := range items {
		wg.Add(1)
		go func(v T) {
			defer wg.Done()
			action(v)
		}(item)
	}
	wg.Wait()
}
