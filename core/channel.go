package core

import (
	"context"
	"sync"
)

const (
	defaultChannelCap   = 16
	compactMinCap       = 64 // Don't compact if capacity is less than this
	compactShrinkFactor = 4  // Trigger compaction when len < cap/4
)

// orderedChannel is the FIFO hand-off between producers (Enqueue callers) and
// the queue's single consumer: a mutex-guarded slice paired with a 1-buffered
// wake signal. push never blocks; popOrWait parks the consumer until work
// arrives, the intake closes, or the context is cancelled.
type orderedChannel struct {
	mu    sync.Mutex
	items []*taskItem

	wake      chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

func newOrderedChannel() *orderedChannel {
	return &orderedChannel{
		items:  make([]*taskItem, 0, defaultChannelCap),
		wake:   make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

// push appends items to the tail as one atomic batch and nudges the consumer.
// Safe to call concurrently from many producers; arrival order among
// concurrent pushers is whatever order the lock serializes them in.
func (c *orderedChannel) push(items ...*taskItem) {
	c.mu.Lock()
	c.items = append(c.items, items...)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
		// Signal already pending; the consumer re-checks before parking.
	}
}

func (c *orderedChannel) tryPop() (*taskItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) == 0 {
		return nil, false
	}

	item := c.items[0]
	// Zero out the element in the underlying array to prevent memory leak
	c.items[0] = nil
	c.items = c.items[1:]
	c.maybeCompactLocked()

	return item, true
}

// popOrWait suspends the single consumer until an item is available. The
// closed check comes first so a draining queue stops pulling items
// preemptively; whatever is still queued belongs to the drainer.
func (c *orderedChannel) popOrWait(ctx context.Context) (*taskItem, error) {
	for {
		select {
		case <-c.closed:
			return nil, errChannelClosed
		default:
		}

		if item, ok := c.tryPop(); ok {
			return item, nil
		}

		select {
		case <-c.wake:
		case <-c.closed:
			return nil, errChannelClosed
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// closeIntake wakes a parked consumer so it can observe closure and exit.
// Idempotent; items already queued stay queued.
func (c *orderedChannel) closeIntake() {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
}

func (c *orderedChannel) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *orderedChannel) maybeCompactLocked() {
	n := len(c.items)
	cp := cap(c.items)

	if cp < compactMinCap {
		return
	}
	if n == 0 {
		c.items = make([]*taskItem, 0, defaultChannelCap)
		return
	}
	if n*compactShrinkFactor >= cp {
		return
	}

	newCap := max(max(cp/2, defaultChannelCap), n)

	newSlice := make([]*taskItem, n, newCap)
	copy(newSlice, c.items)
	c.items = newSlice
}
