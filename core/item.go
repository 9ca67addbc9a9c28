package core

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
)

// taskItem wraps one unit of submitted work together with its completion
// handle. The payload shape is bound into invoke at construction and never
// changes; the item runs at most once.
type taskItem struct {
	id         uuid.UUID
	name       string
	enqueuedAt time.Time

	// invoke executes the payload and settles the handle with the produced
	// value or the payload's failure. It never re-raises: failures travel
	// through the handle only.
	invoke func(ctx context.Context) error

	// abandon settles the handle with a failure without running the payload.
	// Used by Dispose for items the loop never observed. A no-op once the
	// handle has settled.
	abandon func(err error)

	// internal marks synthesized items (delay placeholders) that should not
	// appear in the execution history.
	internal bool
}

// newActionItem wraps an action-shaped payload. The handle resolves with a
// unit value on success.
func newActionItem(fn ContextAction) (*taskItem, *Future[struct{}], error) {
	if fn == nil {
		return nil, nil, ErrNilTask
	}

	future := newFuture[struct{}]()
	item := &taskItem{
		id:         uuid.New(),
		name:       resolveTaskName(fn, ""),
		enqueuedAt: time.Now(),
		abandon:    future.reject,
	}
	item.invoke = func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			future.reject(err)
			return err
		}
		future.resolve(struct{}{})
		return nil
	}
	return item, future, nil
}

// newResultItem wraps a function-shaped payload producing a value of type T.
func newResultItem[T any](fn ContextFunc[T]) (*taskItem, *Future[T], error) {
	if fn == nil {
		return nil, nil, ErrNilTask
	}

	future := newFuture[T]()
	item := &taskItem{
		id:         uuid.New(),
		name:       resolveTaskName(fn, ""),
		enqueuedAt: time.Now(),
		abandon:    future.reject,
	}
	item.invoke = func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			future.reject(err)
			return err
		}
		future.resolve(v)
		return nil
	}
	return item, future, nil
}

// newDelayItem synthesizes the placeholder that occupies an ordering slot in
// front of a delayed item. Its payload suspends the consumer for the delay,
// so every later-enqueued item waits behind it.
func newDelayItem(delay time.Duration) *taskItem {
	future := newFuture[struct{}]()
	item := &taskItem{
		id:         uuid.New(),
		name:       "delay",
		enqueuedAt: time.Now(),
		abandon:    future.reject,
		internal:   true,
	}
	item.invoke = func(ctx context.Context) error {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			future.resolve(struct{}{})
			return nil
		case <-ctx.Done():
			future.reject(ctx.Err())
			return ctx.Err()
		}
	}
	return item
}

// run executes the payload exactly once. A panic is recovered, wrapped in
// PanicError, and settled into the handle; run reports it as the returned
// failure so the caller can record it, but never re-panics.
func (it *taskItem) run(ctx context.Context) (failure error) {
	defer func() {
		if rec := recover(); rec != nil {
			perr := &PanicError{Value: rec, Stack: debug.Stack()}
			it.abandon(perr)
			failure = perr
		}
	}()
	return it.invoke(ctx)
}
