package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/taskmanager/internal/application/ports"
)

// EventTaskAssigned is the webhook event name for a new assignment.
const EventTaskAssigned = "task.assigned"

// Worker runs Asynq task handlers (assignment email and webhook).
type Worker struct {
	srv     *asynq.Server
	mux     *asynq.ServeMux
	mailer  ports.Mailer
	emitter ports.WebhookEmitter
	log     zerolog.Logger
}

// NewWorker creates an Asynq server and registers handlers. Call Run() to start.
func NewWorker(redisOpt asynq.RedisConnOpt, mailer ports.Mailer, emitter ports.WebhookEmitter, log zerolog.Logger) *Worker {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 2,
		LogLevel:    asynq.InfoLevel,
	})
	mux := asynq.NewServeMux()
	w := &Worker{srv: srv, mux: mux, mailer: mailer, emitter: emitter, log: log}
	mux.HandleFunc(TypeTaskAssigned, w.handleTaskAssigned)
	return w
}

func (w *Worker) handleTaskAssigned(ctx context.Context, t *asynq.Task) error {
	var p taskAssignedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		w.log.Error().Err(err).Msg("task assigned payload invalid")
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	var errs []error
	if w.mailer != nil {
		subject := "You have been assigned: " + p.TaskTitle
		if err := w.mailer.Send(ctx, p.AssigneeEmail, subject, assignedEmailBody(p)); err != nil {
			errs = append(errs, err)
		}
	}
	if w.emitter != nil {
		if err := w.emitter.Emit(ctx, ports.WebhookEvent{ID: p.EventID, Event: EventTaskAssigned, Payload: p}); err != nil {
			errs = append(errs, fmt.Errorf("emit webhook: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		w.log.Warn().Err(err).Str("event_id", p.EventID).Int64("task_id", p.TaskID).Msg("task assigned notification failed")
		return err
	}
	w.log.Info().Str("event_id", p.EventID).Int64("task_id", p.TaskID).Int64("assignee_id", p.AssigneeID).Msg("task assigned notification delivered")
	return nil
}

func assignedEmailBody(p taskAssignedPayload) string {
	due := "no due date"
	if p.DueDate != nil {
		due = "due " + *p.DueDate
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <p>Hi %s,</p>
    <p>You have been assigned task #%d: <strong>%s</strong> (%s).</p>
  </div>
</body>
</html>`, html.EscapeString(p.AssigneeName), p.TaskID, html.EscapeString(p.TaskTitle), due)
}

// Run blocks until shutdown. Use Shutdown for graceful stop.
func (w *Worker) Run() error {
	return w.srv.Run(w.mux)
}

// Shutdown stops the worker.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
