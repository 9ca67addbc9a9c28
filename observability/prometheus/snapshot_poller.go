package prometheus

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/queueworks/serialqueue/core"
)

// QueueSnapshotProvider provides current queue stats snapshots.
type QueueSnapshotProvider interface {
	Stats() core.QueueStats
}

// SnapshotPoller periodically exports queue Stats() snapshots into Prometheus
// gauges. Useful when many queues should be observed without wiring a
// Metrics implementation into each one.
type SnapshotPoller struct {
	interval time.Duration

	queuesMu sync.RWMutex
	queues   map[string]QueueSnapshotProvider

	queuePending  *prom.GaugeVec
	queueRunning  *prom.GaugeVec
	queueRejected *prom.GaugeVec
	queueClosed   *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	queuePending := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "serialqueue",
		Name:      "queue_pending",
		Help:      "Number of pending items per queue.",
	}, []string{"queue"})
	queueRunning := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "serialqueue",
		Name:      "queue_running",
		Help:      "Number of running items per queue (0 or 1).",
	}, []string{"queue"})
	queueRejected := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "serialqueue",
		Name:      "queue_rejected_total",
		Help:      "Rejected enqueue count snapshot.",
	}, []string{"queue"})
	queueClosed := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "serialqueue",
		Name:      "queue_closed",
		Help:      "Queue intake state (0=open, 1=draining, 2=disposed).",
	}, []string{"queue"})

	var err error
	if queuePending, err = registerCollector(reg, queuePending); err != nil {
		return nil, err
	}
	if queueRunning, err = registerCollector(reg, queueRunning); err != nil {
		return nil, err
	}
	if queueRejected, err = registerCollector(reg, queueRejected); err != nil {
		return nil, err
	}
	if queueClosed, err = registerCollector(reg, queueClosed); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:      interval,
		queues:        make(map[string]QueueSnapshotProvider),
		queuePending:  queuePending,
		queueRunning:  queueRunning,
		queueRejected: queueRejected,
		queueClosed:   queueClosed,
	}, nil
}

// AddQueue adds or replaces a queue snapshot provider by name.
func (p *SnapshotPoller) AddQueue(name string, provider QueueSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "queue")
	p.queuesMu.Lock()
	p.queues[name] = provider
	p.queuesMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.queuesMu.RLock()
	defer p.queuesMu.RUnlock()

	for name, provider := range p.queues {
		stats := provider.Stats()
		p.queuePending.WithLabelValues(name).Set(float64(stats.Pending))
		p.queueRunning.WithLabelValues(name).Set(float64(stats.Running))
		p.queueRejected.WithLabelValues(name).Set(float64(stats.Rejected))

		switch {
		case stats.Disposed:
			p.queueClosed.WithLabelValues(name).Set(2)
		case stats.Draining:
			p.queueClosed.WithLabelValues(name).Set(1)
		default:
			p.queueClosed.WithLabelValues(name).Set(0)
		}
	}
}
