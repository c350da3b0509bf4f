package ports

import "context"

// WebhookEvent is posted to the configured webhook endpoint.
type WebhookEvent struct {
	ID      string      `json:"id"`
	Event   string      `json:"event"` // e.g. task.assigned
	Payload interface{} `json:"payload"`
}

// WebhookEmitter sends events to an external endpoint.
type WebhookEmitter interface {
	Emit(ctx context.Context, event WebhookEvent) error
}

// Mailer delivers a single plain notification email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
