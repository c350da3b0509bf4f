package ports

import (
	"context"
	"time"
)

// TaskAssigned is sent when a task gains a new assignee.
type TaskAssigned struct {
	TaskID        int64
	TaskTitle     string
	DueDate       *time.Time
	AssigneeID    int64
	AssigneeName  string
	AssigneeEmail string
}

// NotificationEnqueuer enqueues async notifications (email, webhook).
type NotificationEnqueuer interface {
	EnqueueTaskAssigned(ctx context.Context, n TaskAssigned) error
}
