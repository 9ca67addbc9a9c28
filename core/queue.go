package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Queue executes submitted items strictly one at a time, in first-enqueued-
// first-run order. Producers may enqueue from any goroutine; a single
// consumer goroutine, started at construction, owns all execution.
//
// Lifecycle: Open -> Draining (DrainOut) -> Disposed (Dispose), or straight
// Open -> Disposed. Draining rejects new work and runs everything already
// queued to completion; Dispose cancels the queue context and rejects the
// handles of items the loop never observed with ErrQueueDisposed.
type Queue struct {
	name string
	ch   *orderedChannel

	ctx    context.Context
	cancel context.CancelFunc

	closedForEnqueue atomic.Bool
	disposed         atomic.Bool

	inFlight    atomic.Int32
	activeItems int32 // atomic guard for the one-at-a-time assertion
	rejected    atomic.Int64

	loopDone chan struct{}
	drained  chan struct{}

	drainOnce   sync.Once
	disposeOnce sync.Once

	logger       Logger
	metrics      Metrics
	panicHandler PanicHandler
	drainTimeout time.Duration
	history      executionHistory
}

// NewQueue creates a queue with default configuration and starts its
// execution loop.
func NewQueue() *Queue {
	return NewQueueWithConfig(context.Background(), DefaultQueueConfig())
}

// NewQueueContext creates a queue whose lifetime is bounded by ctx: when ctx
// is cancelled the execution loop stops as if Dispose had been called, except
// that queued handles are left to Dispose to settle.
func NewQueueContext(ctx context.Context) *Queue {
	return NewQueueWithConfig(ctx, DefaultQueueConfig())
}

// NewQueueWithConfig creates a queue with the given parent context and config.
func NewQueueWithConfig(ctx context.Context, config *QueueConfig) *Queue {
	if ctx == nil {
		ctx = context.Background()
	}
	if config == nil {
		config = DefaultQueueConfig()
	}

	qctx, cancel := context.WithCancel(ctx)
	q := &Queue{
		name:         config.Name,
		ch:           newOrderedChannel(),
		ctx:          qctx,
		cancel:       cancel,
		loopDone:     make(chan struct{}),
		drained:      make(chan struct{}),
		logger:       config.Logger,
		metrics:      config.Metrics,
		panicHandler: config.PanicHandler,
		drainTimeout: config.DrainTimeout,
		history:      newExecutionHistory(config.HistoryCapacity),
	}

	// Use defaults if not provided
	if q.name == "" {
		q.name = "serialqueue"
	}
	if q.logger == nil {
		q.logger = NopLogger{}
	}
	if q.metrics == nil {
		q.metrics = &NilMetrics{}
	}
	if q.panicHandler == nil {
		q.panicHandler = &DefaultPanicHandler{}
	}
	if q.drainTimeout <= 0 {
		q.drainTimeout = DefaultDrainTimeout
	}

	go q.runLoop()

	return q
}

// =============================================================================
// Enqueue
// =============================================================================

// Enqueue submits a synchronous action. The returned handle settles once the
// item has run; Enqueue itself never blocks.
func (q *Queue) Enqueue(fn Action) (*Future[struct{}], error) {
	return q.EnqueueDelayed(fn, 0)
}

// EnqueueDelayed submits a synchronous action whose execution is deferred by
// delay. The delay occupies a real ordering slot: items enqueued afterwards
// wait behind it.
func (q *Queue) EnqueueDelayed(fn Action, delay time.Duration) (*Future[struct{}], error) {
	var cfn ContextAction
	if fn != nil {
		cfn = func(context.Context) error { return fn() }
	}
	return q.EnqueueDelayedContext(cfn, delay)
}

// EnqueueContext submits a context-aware action. The context passed to the
// payload is the queue-scoped cancellation context; it is advisory only.
func (q *Queue) EnqueueContext(fn ContextAction) (*Future[struct{}], error) {
	return q.EnqueueDelayedContext(fn, 0)
}

// EnqueueDelayedContext submits a context-aware action deferred by delay.
func (q *Queue) EnqueueDelayedContext(fn ContextAction, delay time.Duration) (*Future[struct{}], error) {
	if err := q.admit(); err != nil {
		return nil, err
	}
	item, future, err := newActionItem(fn)
	if err != nil {
		q.rejectEnqueue("nil task")
		return nil, err
	}
	if delay < 0 {
		q.rejectEnqueue("negative delay")
		return nil, ErrNegativeDelay
	}
	q.submit(item, delay)
	return future, nil
}

// EnqueueResult submits a synchronous function producing a value of type T.
// Package-level because Go methods cannot introduce type parameters.
func EnqueueResult[T any](q *Queue, fn Func[T]) (*Future[T], error) {
	return EnqueueDelayedResult(q, fn, 0)
}

// EnqueueDelayedResult submits a value-producing function deferred by delay.
func EnqueueDelayedResult[T any](q *Queue, fn Func[T], delay time.Duration) (*Future[T], error) {
	var cfn ContextFunc[T]
	if fn != nil {
		cfn = func(context.Context) (T, error) { return fn() }
	}
	return EnqueueDelayedResultContext(q, cfn, delay)
}

// EnqueueResultContext submits a context-aware value-producing function.
func EnqueueResultContext[T any](q *Queue, fn ContextFunc[T]) (*Future[T], error) {
	return EnqueueDelayedResultContext(q, fn, 0)
}

// EnqueueDelayedResultContext submits a context-aware value-producing
// function deferred by delay.
func EnqueueDelayedResultContext[T any](q *Queue, fn ContextFunc[T], delay time.Duration) (*Future[T], error) {
	if err := q.admit(); err != nil {
		return nil, err
	}
	item, future, err := newResultItem(fn)
	if err != nil {
		q.rejectEnqueue("nil task")
		return nil, err
	}
	if delay < 0 {
		q.rejectEnqueue("negative delay")
		return nil, ErrNegativeDelay
	}
	q.submit(item, delay)
	return future, nil
}

// admit enforces the lifecycle guards: disposed first, then draining.
func (q *Queue) admit() error {
	if q.disposed.Load() {
		q.rejectEnqueue("disposed")
		return ErrQueueDisposed
	}
	if q.closedForEnqueue.Load() {
		q.rejectEnqueue("draining")
		return ErrQueueDraining
	}
	return nil
}

func (q *Queue) rejectEnqueue(reason string) {
	q.rejected.Add(1)
	q.metrics.RecordTaskRejected(q.name, reason)
}

func (q *Queue) submit(item *taskItem, delay time.Duration) {
	if delay > 0 {
		// The delay placeholder and its item share one push so no other
		// producer can slip between them.
		q.ch.push(newDelayItem(delay), item)
	} else {
		q.ch.push(item)
	}

	depth := q.ch.len()
	q.metrics.RecordQueueDepth(q.name, depth)
	q.logger.Debug("item enqueued",
		F("queue", q.name), F("item", item.id.String()), F("depth", depth))
}

// =============================================================================
// Execution Loop
// =============================================================================

func (q *Queue) runLoop() {
	defer close(q.loopDone)

	runCtx := context.WithValue(q.ctx, queueKey, q)

	for {
		item, err := q.ch.popOrWait(q.ctx)
		if err != nil {
			// Intake closed (drain takes over) or queue context cancelled.
			return
		}
		q.runItem(runCtx, item)
	}
}

// runItem executes one item and records its outcome. Shared by the loop and
// the drainer; the assertion guards the at-most-one-running invariant across
// both.
func (q *Queue) runItem(ctx context.Context, item *taskItem) {
	if n := atomic.AddInt32(&q.activeItems, 1); n > 1 {
		panic(fmt.Sprintf("serialqueue: concurrent item execution detected (count=%d)", n))
	}
	defer atomic.AddInt32(&q.activeItems, -1)

	q.inFlight.Add(1)
	defer q.inFlight.Add(-1)

	startedAt := time.Now()
	err := item.run(ctx)
	finishedAt := time.Now()

	q.metrics.RecordTaskDuration(q.name, finishedAt.Sub(startedAt))
	q.metrics.RecordQueueDepth(q.name, q.ch.len())

	if err != nil {
		q.metrics.RecordTaskFailure(q.name)
		var perr *PanicError
		if errors.As(err, &perr) {
			q.panicHandler.HandlePanic(ctx, q.name, item.id.String(), perr.Value, perr.Stack)
		}
		q.logger.Debug("item failed",
			F("queue", q.name), F("item", item.id.String()), F("error", err))
	}

	if !item.internal {
		q.history.Add(ItemRecord{
			ID:         item.id.String(),
			Name:       item.name,
			QueueName:  q.name,
			EnqueuedAt: item.enqueuedAt,
			StartedAt:  startedAt,
			FinishedAt: finishedAt,
			Duration:   finishedAt.Sub(startedAt),
			Failed:     err != nil,
			Err:        err,
		})
	}
}

// =============================================================================
// Drain and Dispose
// =============================================================================

// Drain is DrainOut bounded by the configured drain timeout.
func (q *Queue) Drain() error {
	ctx, cancel := context.WithTimeout(context.Background(), q.drainTimeout)
	defer cancel()
	return q.DrainOut(ctx)
}

// DrainOut stops accepting new work and blocks until every item enqueued
// before the call has run and settled its handle. Items enqueued right up to
// the drain call are honored.
//
// If ctx expires first, DrainOut returns a *DrainTimeoutError reporting the
// outstanding count; the drain keeps running in the background and a later
// DrainOut call can wait for it again. Concurrent callers all wait for the
// same drain.
func (q *Queue) DrainOut(ctx context.Context) error {
	if q.disposed.Load() {
		return ErrQueueDisposed
	}

	q.drainOnce.Do(func() {
		q.closedForEnqueue.Store(true)
		// The extra wake: a loop parked with no work observes closure here.
		q.ch.closeIntake()
		go q.drainRemaining()
	})

	select {
	case <-q.drained:
		return nil
	case <-ctx.Done():
		return &DrainTimeoutError{Outstanding: q.Outstanding()}
	}
}

// drainRemaining waits for the loop to exit at its wait boundary, then runs
// whatever is still queued, in order. Timeout on the DrainOut caller's side
// never stops this.
func (q *Queue) drainRemaining() {
	<-q.loopDone

	runCtx := context.WithValue(q.ctx, queueKey, q)
	for {
		if q.disposed.Load() {
			// Dispose mid-drain: it settles the rest as abandoned.
			break
		}
		item, ok := q.ch.tryPop()
		if !ok {
			break
		}
		q.runItem(runCtx, item)
	}

	close(q.drained)
	q.logger.Info("queue drained", F("queue", q.name))
}

// Dispose releases the queue. Idempotent; safe to call without ever calling
// DrainOut and safe on every exit path.
//
// Items the loop never observed do not run; their handles are settled with
// ErrQueueDisposed so awaiters are not left hanging. An item already running
// keeps running with a cancelled context (cancellation is advisory) and
// settles with its own outcome.
func (q *Queue) Dispose() {
	q.disposeOnce.Do(func() {
		q.disposed.Store(true)
		q.closedForEnqueue.Store(true)
		q.cancel()
		q.ch.closeIntake()

		abandoned := 0
		for {
			item, ok := q.ch.tryPop()
			if !ok {
				break
			}
			item.abandon(ErrQueueDisposed)
			abandoned++
		}

		q.logger.Info("queue disposed",
			F("queue", q.name), F("abandoned", abandoned))
	})
}

// Close makes Queue satisfy io.Closer. It is Dispose.
func (q *Queue) Close() error {
	q.Dispose()
	return nil
}

// =============================================================================
// Synchronization and Diagnostics
// =============================================================================

// WaitIdle blocks until all currently queued items have completed, by
// enqueueing a barrier item and awaiting it. Items enqueued after WaitIdle
// are not waited for.
func (q *Queue) WaitIdle(ctx context.Context) error {
	future, err := q.EnqueueContext(func(context.Context) error { return nil })
	if err != nil {
		return err
	}
	_, err = future.AwaitContext(ctx)
	return err
}

// Name returns the queue's configured name.
func (q *Queue) Name() string { return q.name }

// Pending returns the number of items waiting in the channel.
func (q *Queue) Pending() int { return q.ch.len() }

// InFlight returns the number of items currently executing (0 or 1).
func (q *Queue) InFlight() int { return int(q.inFlight.Load()) }

// Outstanding returns pending plus in-flight work, the count a drain timeout
// reports.
func (q *Queue) Outstanding() int { return q.Pending() + q.InFlight() }

// IsDraining reports whether the queue has stopped accepting new work.
func (q *Queue) IsDraining() bool { return q.closedForEnqueue.Load() && !q.disposed.Load() }

// IsDisposed reports whether Dispose has been called.
func (q *Queue) IsDisposed() bool { return q.disposed.Load() }

// History returns up to limit completed-item records, most recent first.
func (q *Queue) History(limit int) []ItemRecord { return q.history.Recent(limit) }

// LastRecord returns the most recent completed-item record.
func (q *Queue) LastRecord() (ItemRecord, bool) { return q.history.Last() }

// QueueStats is a point-in-time snapshot for pollers and dashboards.
type QueueStats struct {
	Name     string
	Pending  int
	Running  int
	Rejected int64
	Draining bool
	Disposed bool
}

// Stats returns a consistent-enough snapshot of the queue's state.
func (q *Queue) Stats() QueueStats {
	return QueueStats{
		Name:     q.name,
		Pending:  q.Pending(),
		Running:  q.InFlight(),
		Rejected: q.rejected.Load(),
		Draining: q.IsDraining(),
		Disposed: q.IsDisposed(),
	}
}
