package queue

import (
	"context"

	"github.com/amirhosseinghanipour/taskmanager/internal/application/ports"
)

// NoopEnqueuer is a no-op enqueuer when Redis/Asynq is not configured.
type NoopEnqueuer struct{}

func NewNoopEnqueuer() *NoopEnqueuer {
	return &NoopEnqueuer{}
}

func (q *NoopEnqueuer) EnqueueTaskAssigned(ctx context.Context, n ports.TaskAssigned) error {
	return nil
}

var _ ports.NotificationEnqueuer = (*NoopEnqueuer)(nil)
