package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach runs action for every item with at most limit goroutines in flight
// (limit <= 0 means unbounded). It waits for all started actions and returns
// the first error; the context passed to actions is cancelled on that error.
func ForEach[T any](ctx context.Context, items []T, limit int, action func(context.Context, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return action(gctx, item)
		})
	}
	return g.Wait()
}

