package events

import (
	"context"
	"log/slog"
)

// NoOpPublisher implements Publisher by logging discarded events. It is used
// when no event backend is configured.
type NoOpPublisher struct {
	log *slog.Logger
}

// NewNoOpPublisher creates a publisher that discards events with a log message.
func NewNoOpPublisher(log *slog.Logger) *NoOpPublisher {
	if log == nil {
		log = slog.Default()
	}
	return &NoOpPublisher{log: log}
}

// PublishSearch logs and discards the event.
func (p *NoOpPublisher) PublishSearch(_ context.Context, ev SearchEvent) error {
	p.log.Debug("search event discarded (no backend configured)",
		"id", ev.ID,
		"key", ev.Key,
		"items", ev.ItemCount,
	)
	return nil
}

// Close is a no-op.
func (*NoOpPublisher) Close() error { return nil }
