package core_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queueworks/serialqueue/core"
)

type recordingMetrics struct {
	mu        sync.Mutex
	durations int
	failures  int
	rejected  []string
	depths    []int
}

func (m *recordingMetrics) RecordTaskDuration(queueName string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations++
}

func (m *recordingMetrics) RecordTaskFailure(queueName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func (m *recordingMetrics) RecordQueueDepth(queueName string, depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.depths = append(m.depths, depth)
}

func (m *recordingMetrics) RecordTaskRejected(queueName string, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected = append(m.rejected, reason)
}

type recordingPanicHandler struct {
	mu     sync.Mutex
	panics []any
}

func (h *recordingPanicHandler) HandlePanic(ctx context.Context, queueName string, itemID string, panicInfo any, stackTrace []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panics = append(h.panics, panicInfo)
}

// TestQueue_MetricsWiring verifies the Metrics hooks fire for execution,
// failure, and rejection paths.
func TestQueue_MetricsWiring(t *testing.T) {
	metrics := &recordingMetrics{}
	cfg := core.DefaultQueueConfig()
	cfg.Metrics = metrics

	q := core.NewQueueWithConfig(context.Background(), cfg)
	defer q.Dispose()

	_, err := q.Enqueue(func() error { return nil })
	require.NoError(t, err)
	_, err = q.Enqueue(func() error { panic("x") })
	require.NoError(t, err)
	_, err = q.Enqueue(nil)
	require.ErrorIs(t, err, core.ErrNilTask)

	require.NoError(t, q.Drain())

	_, err = q.Enqueue(func() error { return nil })
	require.ErrorIs(t, err, core.ErrQueueDraining)

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	assert.Equal(t, 2, metrics.durations)
	assert.Equal(t, 1, metrics.failures)
	assert.Equal(t, []string{"nil task", "draining"}, metrics.rejected)
	assert.NotEmpty(t, metrics.depths)
}

// TestQueue_PanicHandlerWiring verifies the panic hook receives the payload's
// panic value.
func TestQueue_PanicHandlerWiring(t *testing.T) {
	handler := &recordingPanicHandler{}
	cfg := core.DefaultQueueConfig()
	cfg.PanicHandler = handler

	q := core.NewQueueWithConfig(context.Background(), cfg)
	defer q.Dispose()

	_, err := q.Enqueue(func() error { panic("observed") })
	require.NoError(t, err)

	require.NoError(t, q.Drain())

	handler.mu.Lock()
	defer handler.mu.Unlock()
	require.Len(t, handler.panics, 1)
	assert.Equal(t, "observed", handler.panics[0])
}

// TestDefaultQueueConfig sanity-checks the defaults.
func TestDefaultQueueConfig(t *testing.T) {
	cfg := core.DefaultQueueConfig()

	assert.Equal(t, "serialqueue", cfg.Name)
	assert.NotNil(t, cfg.Logger)
	assert.NotNil(t, cfg.Metrics)
	assert.NotNil(t, cfg.PanicHandler)
	assert.Equal(t, core.DefaultDrainTimeout, cfg.DrainTimeout)
}
