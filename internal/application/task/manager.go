package task

import (
	"context"
	"fmt"
	"time"

	"github.com/amirhosseinghanipour/taskmanager/internal/application/ports"
	"github.com/amirhosseinghanipour/taskmanager/internal/domain"
	domerrors "github.com/amirhosseinghanipour/taskmanager/internal/domain/errors"
)

// UserResolver resolves assignee references. *user.Manager satisfies it.
type UserResolver interface {
	Resolve(ctx context.Context, id int64) (*domain.User, error)
}

// CreateInput is a validated task creation request.
type CreateInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	DueDate     *time.Time
	AssigneeID  *int64
}

// UpdateInput replaces every mutable field of a task. A nil AssigneeID clears
// the assignment.
type UpdateInput CreateInput

// ListInput selects one page of tasks.
type ListInput struct {
	Page   int
	Size   int
	Filter domain.TaskFilter
}

// Manager owns the task lifecycle.
type Manager struct {
	tasks    ports.TaskRepository
	users    UserResolver
	notifier ports.NotificationEnqueuer
	now      func() time.Time
}

// NewManager builds a Manager. notifier may be nil.
func NewManager(tasks ports.TaskRepository, users UserResolver, notifier ports.NotificationEnqueuer) *Manager {
	return &Manager{tasks: tasks, users: users, notifier: notifier, now: time.Now}
}

func (m *Manager) timestamp() time.Time {
	return m.now().UTC().Truncate(time.Microsecond)
}

func (m *Manager) resolveAssignee(ctx context.Context, id *int64) (*domain.User, error) {
	if id == nil {
		return nil, nil
	}
	return m.users.Resolve(ctx, *id)
}

// Create persists a new task, resolving the assignee first.
func (m *Manager) Create(ctx context.Context, input CreateInput) (*domain.Task, error) {
	assignee, err := m.resolveAssignee(ctx, input.AssigneeID)
	if err != nil {
		return nil, err
	}
	now := m.timestamp()
	t := &domain.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
		Assignee:    assignee,
	}
	if assignee != nil {
		id := assignee.ID
		t.AssigneeID = &id
	}
	if err := m.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	m.notifyAssigned(ctx, nil, t)
	return t, nil
}

// Get returns the task or a NotFoundError.
func (m *Manager) Get(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := m.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if t == nil {
		return nil, domerrors.NewNotFound("task", id)
	}
	return t, nil
}

// List returns one page of tasks matching the filter, newest first.
func (m *Manager) List(ctx context.Context, input ListInput) (domain.Page[*domain.Task], error) {
	tasks, total, err := m.tasks.List(ctx, input.Filter, input.Size, domain.Offset(input.Page, input.Size))
	if err != nil {
		return domain.Page[*domain.Task]{}, fmt.Errorf("list tasks: %w", err)
	}
	return domain.NewPage(tasks, input.Page, input.Size, total), nil
}

// Update replaces the task's fields. The task must exist before the assignee
// is resolved; any failure leaves the stored task untouched.
func (m *Manager) Update(ctx context.Context, id int64, input UpdateInput) (*domain.Task, error) {
	current, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	assignee, err := m.resolveAssignee(ctx, input.AssigneeID)
	if err != nil {
		return nil, err
	}
	next := &domain.Task{
		ID:          id,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		CreatedAt:   current.CreatedAt,
		UpdatedAt:   m.timestamp(),
	}
	if assignee != nil {
		aid := assignee.ID
		next.AssigneeID = &aid
	}
	updated, err := m.tasks.Update(ctx, next)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if updated == nil {
		return nil, domerrors.NewNotFound("task", id)
	}
	m.notifyAssigned(ctx, current, updated)
	return updated, nil
}

// UpdateStatus changes only the status (and updated_at).
func (m *Manager) UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus) (*domain.Task, error) {
	updated, err := m.tasks.UpdateStatus(ctx, id, status, m.timestamp())
	if err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}
	if updated == nil {
		return nil, domerrors.NewNotFound("task", id)
	}
	return updated, nil
}

// Delete removes the task permanently. The assignee is not affected.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	deleted, err := m.tasks.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if !deleted {
		return domerrors.NewNotFound("task", id)
	}
	return nil
}

// collectPageSize is the page size used when walking the full result set.
const collectPageSize = 100

// Collect gathers up to limit tasks matching filter, newest first.
func (m *Manager) Collect(ctx context.Context, filter domain.TaskFilter, limit int) ([]*domain.Task, error) {
	var out []*domain.Task
	for page := 0; len(out) < limit; page++ {
		p, err := m.List(ctx, ListInput{Page: page, Size: collectPageSize, Filter: filter})
		if err != nil {
			return nil, err
		}
		out = append(out, p.Content...)
		if p.Last {
			break
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// notifyAssigned enqueues an assignment notification when after has an
// assignee that before did not. Enqueue errors are dropped.
func (m *Manager) notifyAssigned(ctx context.Context, before, after *domain.Task) {
	if m.notifier == nil || after.Assignee == nil {
		return
	}
	if before != nil && before.AssigneeID != nil && *before.AssigneeID == after.Assignee.ID {
		return
	}
	_ = m.notifier.EnqueueTaskAssigned(ctx, ports.TaskAssigned{
		TaskID:        after.ID,
		TaskTitle:     after.Title,
		DueDate:       after.DueDate,
		AssigneeID:    after.Assignee.ID,
		AssigneeName:  after.Assignee.Name,
		AssigneeEmail: after.Assignee.Email,
	})
}
