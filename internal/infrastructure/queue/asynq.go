package queue

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/taskmanager/internal/application/ports"
)

const (
	TypeTaskAssigned = "task:assigned"

	maxRetry = 5
)

// taskAssignedPayload is the JSON body of a TypeTaskAssigned task.
type taskAssignedPayload struct {
	EventID       string  `json:"event_id"`
	TaskID        int64   `json:"task_id"`
	TaskTitle     string  `json:"task_title"`
	DueDate       *string `json:"due_date"`
	AssigneeID    int64   `json:"assignee_id"`
	AssigneeName  string  `json:"assignee_name"`
	AssigneeEmail string  `json:"assignee_email"`
}

type TaskEnqueuer struct {
	client *asynq.Client
	log    zerolog.Logger
}

func NewAsynqEnqueuer(redisOpt asynq.RedisConnOpt, log zerolog.Logger) *TaskEnqueuer {
	return &TaskEnqueuer{client: asynq.NewClient(redisOpt), log: log}
}

func (q *TaskEnqueuer) Close() error {
	return q.client.Close()
}

func newTaskAssignedPayload(n ports.TaskAssigned) taskAssignedPayload {
	p := taskAssignedPayload{
		EventID:       uuid.NewString(),
		TaskID:        n.TaskID,
		TaskTitle:     n.TaskTitle,
		AssigneeID:    n.AssigneeID,
		AssigneeName:  n.AssigneeName,
		AssigneeEmail: n.AssigneeEmail,
	}
	if n.DueDate != nil {
		d := n.DueDate.Format("2006-01-02")
		p.DueDate = &d
	}
	return p
}

// EnqueueTaskAssigned queues the assignment email and webhook for the worker.
func (q *TaskEnqueuer) EnqueueTaskAssigned(ctx context.Context, n ports.TaskAssigned) error {
	payload, err := json.Marshal(newTaskAssignedPayload(n))
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeTaskAssigned, payload, asynq.MaxRetry(maxRetry))
	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		q.log.Warn().Err(err).Int64("task_id", n.TaskID).Int64("assignee_id", n.AssigneeID).Msg("enqueue task assigned failed")
		return err
	}
	return nil
}

var _ ports.NotificationEnqueuer = (*TaskEnqueuer)(nil)
