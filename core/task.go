package core

import "context"

// The four payload shapes a queue accepts. Each is fixed at enqueue time and
// executed exactly once by the queue's single consumer.

// Action is a synchronous unit of work with no produced value.
type Action func() error

// Func is a synchronous unit of work producing a value of type T.
type Func[T any] func() (T, error)

// ContextAction is a unit of work that receives the queue-scoped cancellation
// context. The context is advisory: a payload that ignores it still runs to
// completion.
type ContextAction func(ctx context.Context) error

// ContextFunc is a context-aware unit of work producing a value of type T.
type ContextFunc[T any] func(ctx context.Context) (T, error)

// =============================================================================
// Context Helper
// =============================================================================
type queueKeyType struct{}

var queueKey queueKeyType

// GetCurrentQueue returns the Queue executing the current item, or nil when
// the context did not come from an item execution.
func GetCurrentQueue(ctx context.Context) *Queue {
	if v := ctx.Value(queueKey); v != nil {
		return v.(*Queue)
	}
	return nil
}
