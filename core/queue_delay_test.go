package core_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queueworks/serialqueue/core"
)

// TestQueue_DelayLowerBound verifies a delayed item starts no earlier than
// its delay after Enqueue returned.
func TestQueue_DelayLowerBound(t *testing.T) {
	q := core.NewQueue()
	defer q.Dispose()

	const delay = 80 * time.Millisecond

	var startedAt time.Time
	handle, err := q.EnqueueDelayed(func() error {
		startedAt = time.Now()
		return nil
	}, delay)
	require.NoError(t, err)
	enqueuedAt := time.Now()

	_, err = handle.Await()
	require.NoError(t, err)

	assert.GreaterOrEqual(t, startedAt.Sub(enqueuedAt), delay-time.Millisecond,
		"delayed item started too early")
}

// TestQueue_DelayOccupiesOrderingSlot verifies a later item without a delay
// still waits behind an earlier item's delay.
// Given: Item A enqueued with a delay, then item B enqueued with no delay
// When: Both run
// Then: B's body does not start before A's body starts
func TestQueue_DelayOccupiesOrderingSlot(t *testing.T) {
	q := core.NewQueue()
	defer q.Dispose()

	var mu sync.Mutex
	var order []string

	_, err := q.EnqueueDelayed(func() error {
		mu.Lock()
		order = append(order, "A")
		mu.Unlock()
		return nil
	}, 60*time.Millisecond)
	require.NoError(t, err)

	handleB, err := q.Enqueue(func() error {
		mu.Lock()
		order = append(order, "B")
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)

	_, err = handleB.Await()
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"A", "B"}, order)
}

// TestQueue_ZeroDelayIsImmediate verifies delay=0 takes the plain path.
func TestQueue_ZeroDelayIsImmediate(t *testing.T) {
	q := core.NewQueue()
	defer q.Dispose()

	handle, err := q.EnqueueDelayed(func() error { return nil }, 0)
	require.NoError(t, err)

	_, err = handle.AwaitTimeout(time.Second)
	assert.NoError(t, err)
}

// TestQueue_DelayedResult verifies the delayed value-producing variant.
func TestQueue_DelayedResult(t *testing.T) {
	q := core.NewQueue()
	defer q.Dispose()

	handle, err := core.EnqueueDelayedResult(q, func() (string, error) {
		return "later", nil
	}, 20*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, q.Drain())

	v, err := handle.Await()
	require.NoError(t, err)
	assert.Equal(t, "later", v)
}

// TestQueue_DrainWaitsForDelayedItems verifies delay placeholders drain too.
func TestQueue_DrainWaitsForDelayedItems(t *testing.T) {
	q := core.NewQueue()
	defer q.Dispose()

	handle, err := q.EnqueueDelayed(func() error { return nil }, 50*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, q.Drain())
	assert.True(t, handle.IsComplete(), "delayed item not settled by drain")
}
