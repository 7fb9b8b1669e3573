package audit

import (
	"context"
	"log/slog"
	"time"
)

// Publisher hands events to the worker without blocking domain operations.
// A full inbox drops the event with a warning rather than stalling a
// decision; the request stores remain the system of record.
type Publisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

func NewPublisher(inbox chan<- Event, logger *slog.Logger) *Publisher {
	return &Publisher{inbox: inbox, logger: logger}
}

// Emit enqueues an event, stamping the time if unset.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit inbox full, dropping event",
			"action", string(event.Action),
			"subject", event.Subject,
		)
	}
}
