package adapter

import "context"

// SessionFeed propagates session row updates to live subscribers. It stands
// in for the managed database's change feed: the processor publishes after
// every session write and the facade's subscriptions recompute status on
// each event.
type SessionFeed interface {
	Publish(ctx context.Context, sessionID string) error

	// Subscribe delivers one callback invocation per update event for the
	// session until the returned unsubscribe function is called. Multiple
	// independent subscriptions per session are allowed; unsubscribe must
	// release the underlying connection.
	Subscribe(ctx context.Context, sessionID string, onEvent func()) (unsubscribe func(), err error)
}

// ProcessorTrigger wakes the processor after an enqueue. Implementations are
// fire-and-forget; Wake must never block the caller on the actual work.
type ProcessorTrigger interface {
	Wake(ctx context.Context)
}
