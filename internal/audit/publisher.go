package audit

import (
	"context"

	"conocida/internal/platform/metrics"
)

// Publisher accepts events from the domain services. Implementations must be
// non-blocking: an audit problem never fails the action being audited.
type Publisher interface {
	Record(ctx context.Context, event Event)
}

// ChannelPublisher hands events to the worker through a buffered inbox and
// drops on overflow, counting the drops.
type ChannelPublisher struct {
	inbox   chan Event
	metrics *metrics.Metrics
}

// NewChannelPublisher creates a publisher with the given buffer size.
func NewChannelPublisher(buffer int, m *metrics.Metrics) *ChannelPublisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &ChannelPublisher{inbox: make(chan Event, buffer), metrics: m}
}

// Inbox exposes the receive side for the worker.
func (p *ChannelPublisher) Inbox() <-chan Event {
	return p.inbox
}

func (p *ChannelPublisher) Record(_ context.Context, event Event) {
	select {
	case p.inbox <- event:
	default:
		p.metrics.IncAuditDropped()
	}
}

// NopPublisher discards events. Used by tests that don't assert on audit.
type NopPublisher struct{}

func (NopPublisher) Record(context.Context, Event) {}
