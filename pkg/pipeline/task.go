package pipeline

import (
	"context"
	"log"
	"time"
)

type outcome[T any] struct {
	val T
	err error
}

// start runs fn in its own goroutine under a per-task deadline and
// returns a buffered channel so the producer never blocks on a reader
// that already gave up.
func start[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) <-chan outcome[T] {
	ch := make(chan outcome[T], 1)
	go func() {
		runCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		v, err := fn(runCtx)
		ch <- outcome[T]{val: v, err: err}
	}()
	return ch
}

// degrade is the soft failure policy: log the error and carry on with a
// fallback value.
func degrade[T any](o outcome[T], fallback T) T {
	if o.err != nil {
		log.Println(o.err)
		return fallback
	}
	return o.val
}
