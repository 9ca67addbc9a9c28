package core

import (
	"reflect"
	"runtime"
	"sync"
	"time"
)

const defaultHistoryCapacity = 100

// ItemRecord captures one completed item execution. Diagnostic only.
type ItemRecord struct {
	ID         string
	Name       string
	QueueName  string
	EnqueuedAt time.Time
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	Failed     bool
	Err        error
}

// executionHistory is a fixed-capacity ring buffer of recent item executions.
type executionHistory struct {
	mu    sync.Mutex
	items []ItemRecord
	head  int
	count int
}

func newExecutionHistory(capacity int) executionHistory {
	if capacity < 1 {
		capacity = defaultHistoryCapacity
	}
	return executionHistory{items: make([]ItemRecord, capacity)}
}

func (h *executionHistory) Add(record ItemRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.items) == 0 {
		return
	}

	h.items[h.head] = record
	h.head = (h.head + 1) % len(h.items)
	if h.count < len(h.items) {
		h.count++
	}
}

// Recent returns up to limit records, most recent first.
func (h *executionHistory) Recent(limit int) []ItemRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return nil
	}

	if limit <= 0 || limit > h.count {
		limit = h.count
	}

	out := make([]ItemRecord, 0, limit)
	for i := range limit {
		idx := (h.head - 1 - i + len(h.items)) % len(h.items)
		out = append(out, h.items[idx])
	}
	return out
}

func (h *executionHistory) Last() (ItemRecord, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return ItemRecord{}, false
	}

	idx := (h.head - 1 + len(h.items)) % len(h.items)
	return h.items[idx], true
}

func resolveTaskName(payload any, explicit string) string {
	if explicit != "" {
		return explicit
	}

	if payload == nil {
		return "anonymous"
	}

	v := reflect.ValueOf(payload)
	if v.Kind() != reflect.Func {
		return "anonymous"
	}

	pc := v.Pointer()
	if pc == 0 {
		return "anonymous"
	}

	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "anonymous"
	}

	name := fn.Name()
	if name == "" {
		return "anonymous"
	}
	return name
}
