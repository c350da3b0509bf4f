package webhook

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/taskmanager/internal/application/ports"
)

// NoopEmitter stands in when WEBHOOK_URL is unset. The worker still calls it
// for every task.assigned event; it records the drop at debug level and
// reports success so the email half of the notification is not retried.
type NoopEmitter struct {
	log zerolog.Logger
}

func NewNoopEmitter(log zerolog.Logger) *NoopEmitter {
	return &NoopEmitter{log: log}
}

// Emit implements ports.WebhookEmitter.
func (e *NoopEmitter) Emit(ctx context.Context, event ports.WebhookEvent) error {
	e.log.Debug().Str("event", event.Event).Str("event_id", event.ID).Msg("webhook not configured, event dropped")
	return nil
}

var _ ports.WebhookEmitter = (*NoopEmitter)(nil)
