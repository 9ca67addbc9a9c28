package serialqueue

import (
	"context"
	"time"

	"github.com/queueworks/serialqueue/core"
)

// Re-export commonly used types from core package for convenience.
// This allows users to import only the serialqueue package for most use cases.

// Queue executes submitted items strictly one at a time, in enqueue order.
type Queue = core.Queue

// Future is the completion handle returned by the Enqueue family.
type Future[T any] = core.Future[T]

// The four payload shapes.
type (
	Action             = core.Action
	ContextAction      = core.ContextAction
	Func[T any]        = core.Func[T]
	ContextFunc[T any] = core.ContextFunc[T]
)

// QueueConfig holds configuration options for Queue.
type QueueConfig = core.QueueConfig

// QueueStats is a point-in-time snapshot of a queue's state.
type QueueStats = core.QueueStats

// ItemRecord is one completed-item execution record.
type ItemRecord = core.ItemRecord

// Logging types re-exported for custom Logger implementations.
type (
	Logger = core.Logger
	Field  = core.Field
)

// Metrics and panic handling hooks.
type (
	Metrics      = core.Metrics
	PanicHandler = core.PanicHandler
)

// Error types carried by handles and drain results.
type (
	DrainTimeoutError = core.DrainTimeoutError
	PanicError        = core.PanicError
)

// Sentinel errors.
var (
	ErrNilTask       = core.ErrNilTask
	ErrNegativeDelay = core.ErrNegativeDelay
	ErrQueueDraining = core.ErrQueueDraining
	ErrQueueDisposed = core.ErrQueueDisposed
	ErrAwaitTimeout  = core.ErrAwaitTimeout
	ErrDrainTimeout  = core.ErrDrainTimeout
)

// Constructors and helpers.
var (
	DefaultQueueConfig = core.DefaultQueueConfig
	NewDefaultLogger   = core.NewDefaultLogger
	NewSlogLogger      = core.NewSlogLogger
	F                  = core.F
	GetCurrentQueue    = core.GetCurrentQueue
)

// DefaultDrainTimeout bounds Drain() when no context is supplied.
const DefaultDrainTimeout = core.DefaultDrainTimeout

// NewQueue creates a queue with default configuration and starts its
// execution loop.
func NewQueue() *Queue {
	return core.NewQueue()
}

// NewQueueContext creates a queue whose lifetime is bounded by ctx.
func NewQueueContext(ctx context.Context) *Queue {
	return core.NewQueueContext(ctx)
}

// NewQueueWithConfig creates a queue with the given parent context and config.
func NewQueueWithConfig(ctx context.Context, config *QueueConfig) *Queue {
	return core.NewQueueWithConfig(ctx, config)
}

// EnqueueResult submits a synchronous function producing a value of type T.
func EnqueueResult[T any](q *Queue, fn Func[T]) (*Future[T], error) {
	return core.EnqueueResult(q, fn)
}

// EnqueueDelayedResult submits a value-producing function deferred by delay.
func EnqueueDelayedResult[T any](q *Queue, fn Func[T], delay time.Duration) (*Future[T], error) {
	return core.EnqueueDelayedResult(q, fn, delay)
}

// EnqueueResultContext submits a context-aware value-producing function.
func EnqueueResultContext[T any](q *Queue, fn ContextFunc[T]) (*Future[T], error) {
	return core.EnqueueResultContext(q, fn)
}

// EnqueueDelayedResultContext submits a context-aware value-producing
// function deferred by delay.
func EnqueueDelayedResultContext[T any](q *Queue, fn ContextFunc[T], delay time.Duration) (*Future[T], error) {
	return core.EnqueueDelayedResultContext(q, fn, delay)
}
