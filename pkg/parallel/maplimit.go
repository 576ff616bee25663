// Package parallel runs bounded fan-out work with per-item error capture.
package parallel

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Result holds the outcome of one item. Err is set when the worker failed or panicked.
type Result[R any] struct {
	Value R
	Err   error
}

// OK reports whether the item succeeded.
func (r Result[R]) OK() bool {
	return r.Err == nil
}

// MapLimit applies fn to every item with at most limit calls in flight.
// The result slice matches items in length and order. A failing item never
// cancels its siblings; MapLimit returns once every item has settled.
func MapLimit[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))
	if len(items) == 0 {
		return results
	}
	if limit <= 0 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)

	for i, item := range items {
		g.Go(func() error {
			results[i] = run(ctx, item, fn)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func run[T, R any](ctx context.Context, item T, fn func(context.Context, T) (R, error)) (res Result[R]) {
	defer func() {
		if r := recover(); r != nil {
			res = Result[R]{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	v, err := fn(ctx, item)
	if err != nil {
		return Result[R]{Err: err}
	}
	return Result[R]{Value: v}
}
