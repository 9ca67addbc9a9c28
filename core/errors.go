package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNilTask is returned when Enqueue is called with a nil payload.
	ErrNilTask = errors.New("serialqueue: task must not be nil")

	// ErrNegativeDelay is returned when Enqueue is called with a negative delay.
	ErrNegativeDelay = errors.New("serialqueue: delay must not be negative")

	// ErrQueueDraining is returned when Enqueue is called after DrainOut has begun.
	ErrQueueDraining = errors.New("serialqueue: queue is draining, enqueue rejected")

	// ErrQueueDisposed is returned when any operation is called after Dispose,
	// and is the failure carried by handles of items abandoned by Dispose.
	ErrQueueDisposed = errors.New("serialqueue: queue is disposed")

	// ErrAwaitTimeout is returned by Future.AwaitTimeout when the handle did
	// not settle in time.
	ErrAwaitTimeout = errors.New("serialqueue: timed out waiting for future completion")

	// ErrDrainTimeout is the errors.Is target for DrainTimeoutError.
	ErrDrainTimeout = errors.New("serialqueue: drain timed out")
)

// errChannelClosed tells the execution loop that the intake has closed and
// any remaining items belong to the drainer.
var errChannelClosed = errors.New("serialqueue: channel intake closed")

// DrainTimeoutError reports how much work was still outstanding (queued plus
// in-flight) when a DrainOut caller gave up waiting. The drain itself keeps
// running in the background.
type DrainTimeoutError struct {
	Outstanding int
}

func (e *DrainTimeoutError) Error() string {
	return fmt.Sprintf("serialqueue: drain timed out with %d item(s) outstanding", e.Outstanding)
}

func (e *DrainTimeoutError) Is(target error) bool {
	return target == ErrDrainTimeout
}

// PanicError carries a recovered payload panic into the item's completion
// handle. The execution loop is unaffected and moves on to the next item.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("serialqueue: task panicked: %v", e.Value)
}
