package core

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling payload panics
// =============================================================================

// PanicHandler is called when a payload panics during execution. The panic is
// already captured into the item's completion handle as a PanicError; the
// handler exists for logging, alerting, and recovery strategies.
//
// Implementations should be thread-safe.
type PanicHandler interface {
	// HandlePanic is called after a payload panic has been recovered.
	//
	// Parameters:
	// - ctx: The context the item ran with (carries the owning queue)
	// - queueName: The name of the queue the item ran on
	// - itemID: The id of the panicked item
	// - panicInfo: The panic value recovered from the payload
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(ctx context.Context, queueName string, itemID string, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler provides a basic panic handler that logs to stdout.
type DefaultPanicHandler struct{}

// HandlePanic prints panic information to stdout.
func (h *DefaultPanicHandler) HandlePanic(ctx context.Context, queueName string, itemID string, panicInfo any, stackTrace []byte) {
	fmt.Printf("[Queue %s] Item %s panicked: %v\nStack trace:\n%s",
		queueName, itemID, panicInfo, stackTrace)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting queue execution metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods should be non-blocking and fast to avoid impacting item execution.
type Metrics interface {
	// RecordTaskDuration records how long an item took to execute.
	RecordTaskDuration(queueName string, duration time.Duration)

	// RecordTaskFailure records that an item's payload failed (error or panic).
	RecordTaskFailure(queueName string)

	// RecordQueueDepth records the current number of pending items.
	RecordQueueDepth(queueName string, depth int)

	// RecordTaskRejected records that an enqueue was rejected
	// (nil payload, negative delay, draining, disposed).
	RecordTaskRejected(queueName string, reason string)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

func (m *NilMetrics) RecordTaskDuration(queueName string, duration time.Duration) {}
func (m *NilMetrics) RecordTaskFailure(queueName string)                          {}
func (m *NilMetrics) RecordQueueDepth(queueName string, depth int)                {}
func (m *NilMetrics) RecordTaskRejected(queueName string, reason string)          {}

// =============================================================================
// QueueConfig: Configuration for Queue
// =============================================================================

// DefaultDrainTimeout bounds Drain() when the caller supplies no context.
const DefaultDrainTimeout = 30 * time.Second

// QueueConfig holds configuration options for Queue.
// All fields are optional; zero values fall back to defaults.
type QueueConfig struct {
	// Name labels the queue in logs and metrics. Defaults to "serialqueue".
	Name string

	// Logger receives lifecycle and item diagnostics. Defaults to NopLogger.
	Logger Logger

	// Metrics is called to record execution metrics. Defaults to NilMetrics.
	Metrics Metrics

	// PanicHandler is called when a payload panics. Defaults to DefaultPanicHandler.
	PanicHandler PanicHandler

	// DrainTimeout bounds Drain(). Defaults to DefaultDrainTimeout.
	DrainTimeout time.Duration

	// HistoryCapacity sizes the completed-item ring buffer. Defaults to 100.
	HistoryCapacity int
}

// DefaultQueueConfig returns a config with default handlers.
func DefaultQueueConfig() *QueueConfig {
	return &QueueConfig{
		Name:            "serialqueue",
		Logger:          NopLogger{},
		Metrics:         &NilMetrics{},
		PanicHandler:    &DefaultPanicHandler{},
		DrainTimeout:    DefaultDrainTimeout,
		HistoryCapacity: defaultHistoryCapacity,
	}
}
