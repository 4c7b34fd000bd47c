package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from the publisher inbox and persists them.
// Store failures are logged and the event dropped; the trail is best-effort
// by design and must never wedge the inbox.
type Worker struct {
	store  Store
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

// Sink is an optional secondary destination (e.g. Kafka) fed after the store.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// NewWorker wires the worker. sink may be nil.
func NewWorker(store Store, sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, sink: sink, inbox: inbox, logger: logger}
}

// Run processes events until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			w.handle(ctx, event)
		}
	}
}

func (w *Worker) handle(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "audit append failed",
			"event_id", event.ID,
			"kind", string(event.Kind),
			"error", err,
		)
	}
	if w.sink != nil {
		if err := w.sink.Publish(ctx, event); err != nil {
			w.logger.WarnContext(ctx, "audit sink publish failed",
				"event_id", event.ID,
				"error", err,
			)
		}
	}
}
