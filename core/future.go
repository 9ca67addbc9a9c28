package core

import (
	"context"
	"sync"
	"time"
)

// Future is the completion handle for one enqueued item: a single-assignment
// result cell settled exactly once with either a value or a failure, never
// both, never twice. Any number of holders may await the same Future; each
// observes the same outcome.
type Future[T any] struct {
	result T
	err    error
	once   sync.Once
	done   chan struct{}
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Await blocks until the item has run and returns its result and error.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.result, f.err
}

// AwaitTimeout waits for the item to complete with a timeout.
// If the timeout elapses first, returns ErrAwaitTimeout; the item itself is
// unaffected and will still settle the Future when it runs.
func (f *Future[T]) AwaitTimeout(timeout time.Duration) (T, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-time.After(timeout):
		var zero T
		return zero, ErrAwaitTimeout
	}
}

// AwaitContext waits for the item to complete or the context to be cancelled.
func (f *Future[T]) AwaitContext(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// IsComplete reports whether the Future has settled, without blocking.
func (f *Future[T]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Done exposes the settle signal for select-based callers.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

func (f *Future[T]) resolve(v T) {
	f.once.Do(func() {
		f.result = v
		close(f.done)
	})
}

func (f *Future[T]) reject(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}
