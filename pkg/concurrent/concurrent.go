package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Task is a long-running component bound to a context.
type Task func(ctx context.Context) error

// Supervise runs the tasks together and waits for all of them. The first task
// to return, with or without an error, cancels the context shared by the
// others. The first non-nil error is returned.
func Supervise(ctx context.Context, tasks ...Task) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		if task == nil {
			continue
		}
		g.Go(func() error {
			defer cancel()
			return task(gctx)
		})
	}
	return g.Wait()
}

// Concurrent calls action for every value in its own goroutine and returns
// the first error.
func Concurrent[T any](values []T, action func(T) error) error {
	var g errgroup.Group
	for _, v := range values {
		g.Go(func() error {
			return action(v)
		})
	}
	return g.Wait()
}
