// Package serialqueue provides a strictly-ordered in-process task queue for Go.
//
// Callers enqueue units of work (actions, value-producing functions, and their
// context-aware variants) and the queue guarantees that exactly one unit
// executes at a time, in first-enqueued-first-run order. Each caller holds a
// completion handle (a single-assignment Future) for the unit they submitted
// and can await its result or failure independently.
//
// # Quick Start
//
// Create a queue, enqueue work, drain on shutdown:
//
//	q := serialqueue.NewQueue()
//	defer q.Dispose()
//
//	handle, err := serialqueue.EnqueueResult(q, func() (int, error) {
//		return 1 + 1, nil
//	})
//	if err != nil {
//		// queue draining or disposed
//	}
//
//	if err := q.Drain(); err != nil {
//		// drain timed out; work continues in the background
//	}
//
//	sum, _ := handle.Await() // 2
//
// # Key Concepts
//
// Queue: the public surface. Enqueue never blocks the caller; the returned
// Future is what may be awaited. Producers may enqueue concurrently from many
// goroutines; a single consumer goroutine owns all execution, so items within
// one queue never run concurrently and resources owned by the queue need no
// locks.
//
// Future: the completion handle. Settled exactly once with either a value or
// a failure; every awaiter observes the same outcome. A payload's error or
// panic is captured into its own handle and never aborts the loop or affects
// any other item.
//
// Delays: EnqueueDelayed defers an item by pushing a delay placeholder into
// the same FIFO immediately before it. The delay occupies a real ordering
// slot, so an item enqueued later without a delay still waits behind it.
//
// # Shutdown
//
// DrainOut stops accepting new work (further enqueues fail with
// ErrQueueDraining) and returns once every already-queued item has run and
// settled its handle. A timeout is reporting only: the drain keeps running in
// the background.
//
// Dispose is idempotent and safe without a prior drain. Items the loop never
// observed do not run; their handles are settled with ErrQueueDisposed. An
// item already running keeps running with a cancelled context, since
// cancellation is advisory and propagated, not enforced.
//
// # Multiple lanes
//
// One queue is one lane. For independent lanes, create independent queues;
// they share nothing.
package serialqueue
