// Package dedupe collapses concurrent identical tasks into one execution.
package dedupe

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"
)

// Group shares in-flight executions by key. Nothing is retained once a task
// settles; a later call with the same key runs again.
type Group[T any] struct {
	sf singleflight.Group
}

// Do runs task under key unless an execution for key is already in flight,
// in which case the caller waits for that execution's result. shared reports
// whether the result was delivered to more than one caller. If ctx ends first
// the caller stops waiting; the execution itself continues for the others.
func (g *Group[T]) Do(ctx context.Context, key string, task func() (T, error)) (value T, shared bool, err error) {
	ch := g.sf.DoChan(key, func() (v interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("dedupe: task %q panicked: %v", key, r)
			}
		}()
		return task()
	})

	select {
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Shared, res.Err
		}
		return res.Val.(T), res.Shared, nil
	}
}

// Forget releases key so the next call starts a fresh execution.
func (g *Group[T]) Forget(key string) {
	g.sf.Forget(key)
}
