package prometheus

import (
	"errors"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/queueworks/serialqueue/core"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	itemDurationSeconds *prom.HistogramVec
	itemFailedTotal     *prom.CounterVec
	itemRejectedTotal   *prom.CounterVec
	queueDepth          *prom.GaugeVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "serialqueue"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "item_duration_seconds",
		Help:      "Item execution duration in seconds.",
		Buckets:   buckets,
	}, []string{"queue"})
	failedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "item_failed_total",
		Help:      "Total number of item payload failures.",
	}, []string{"queue"})
	rejectedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "item_rejected_total",
		Help:      "Total number of rejected enqueues.",
	}, []string{"queue", "reason"})
	queueDepthVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Current number of pending items.",
	}, []string{"queue"})

	var err error
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if failedVec, err = registerCollector(reg, failedVec); err != nil {
		return nil, err
	}
	if rejectedVec, err = registerCollector(reg, rejectedVec); err != nil {
		return nil, err
	}
	if queueDepthVec, err = registerCollector(reg, queueDepthVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		itemDurationSeconds: durationVec,
		itemFailedTotal:     failedVec,
		itemRejectedTotal:   rejectedVec,
		queueDepth:          queueDepthVec,
	}, nil
}

// RecordTaskDuration records item execution duration.
func (m *MetricsExporter) RecordTaskDuration(queueName string, duration time.Duration) {
	if m == nil {
		return
	}
	m.itemDurationSeconds.WithLabelValues(normalizeLabel(queueName, "unknown")).Observe(duration.Seconds())
}

// RecordTaskFailure records item payload failures.
func (m *MetricsExporter) RecordTaskFailure(queueName string) {
	if m == nil {
		return
	}
	m.itemFailedTotal.WithLabelValues(normalizeLabel(queueName, "unknown")).Inc()
}

// RecordQueueDepth records queue depth.
func (m *MetricsExporter) RecordQueueDepth(queueName string, depth int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(normalizeLabel(queueName, "unknown")).Set(float64(depth))
}

// RecordTaskRejected records rejected enqueues.
func (m *MetricsExporter) RecordTaskRejected(queueName string, reason string) {
	if m == nil {
		return
	}
	m.itemRejectedTotal.WithLabelValues(normalizeLabel(queueName, "unknown"), normalizeLabel(reason, "unknown")).Inc()
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
