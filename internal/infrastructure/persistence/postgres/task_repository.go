package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amirhosseinghanipour/taskmanager/internal/application/ports"
	"github.com/amirhosseinghanipour/taskmanager/internal/domain"
	domerrors "github.com/amirhosseinghanipour/taskmanager/internal/domain/errors"
	"github.com/amirhosseinghanipour/taskmanager/internal/infrastructure/persistence/db"
)

type TaskRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewTaskRepository(q *db.Queries, pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{q: q, pool: pool}
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	id, err := r.q.CreateTask(ctx, db.CreateTaskParams{
		Title:        task.Title,
		Description:  textOrNull(task.Description),
		Status:       string(task.Status),
		Priority:     string(task.Priority),
		DueDate:      dateOrNull(task.DueDate),
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
		AssignedToID: int8OrNull(task.AssigneeID),
	})
	if err != nil {
		return assigneeError(err, task.AssigneeID)
	}
	task.ID = id
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	return rowOrNil(r.q.GetTaskByID(ctx, id))
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	row, err := r.q.UpdateTask(ctx, db.UpdateTaskParams{
		ID:           task.ID,
		Title:        task.Title,
		Description:  textOrNull(task.Description),
		Status:       string(task.Status),
		Priority:     string(task.Priority),
		DueDate:      dateOrNull(task.DueDate),
		AssignedToID: int8OrNull(task.AssigneeID),
		UpdatedAt:    task.UpdatedAt,
	})
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, assigneeError(err, task.AssigneeID)
	}
	return rowOrNil(row, err)
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus, updatedAt time.Time) (*domain.Task, error) {
	return rowOrNil(r.q.UpdateTaskStatus(ctx, db.UpdateTaskStatusParams{
		ID:        id,
		Status:    string(status),
		UpdatedAt: updatedAt,
	}))
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) (bool, error) {
	n, err := r.q.DeleteTask(ctx, id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *TaskRepository) List(ctx context.Context, filter domain.TaskFilter, limit, offset int) ([]*domain.Task, int64, error) {
	params := filterParams(filter)
	var (
		list  []*domain.Task
		total int64
	)
	err := runReadOnly(ctx, r.pool, r.q, func(q *db.Queries) error {
		var e error
		if total, e = q.CountTasks(ctx, params); e != nil {
			return e
		}
		rows, e := q.ListTasks(ctx, db.ListTasksParams{Filter: params, Limit: int64(limit), Offset: int64(offset)})
		if e != nil {
			return e
		}
		for _, row := range rows {
			list = append(list, dbTaskToDomain(row))
		}
		return nil
	})
	return list, total, err
}

func filterParams(f domain.TaskFilter) db.TaskFilterParams {
	var p db.TaskFilterParams
	if f.Status != nil {
		p.Status = pgtype.Text{String: string(*f.Status), Valid: true}
	}
	if f.Priority != nil {
		p.Priority = pgtype.Text{String: string(*f.Priority), Valid: true}
	}
	if f.AssigneeID != nil {
		p.AssignedToID = pgtype.Int8{Int64: *f.AssigneeID, Valid: true}
	}
	return p
}

// assigneeError maps a foreign-key violation on assigned_to_id to a user
// NotFoundError; the user was removed after it was resolved.
func assigneeError(err error, assigneeID *int64) error {
	if code, _ := pgErrorCode(err); code == foreignKeyViolation && assigneeID != nil {
		return domerrors.NewNotFound("user", *assigneeID)
	}
	return err
}

func rowOrNil(row db.TaskRow, err error) (*domain.Task, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return dbTaskToDomain(row), nil
}

func dbTaskToDomain(row db.TaskRow) *domain.Task {
	t := &domain.Task{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description.String,
		Status:      domain.TaskStatus(row.Status),
		Priority:    domain.TaskPriority(row.Priority),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.DueDate.Valid {
		d := row.DueDate.Time
		t.DueDate = &d
	}
	if row.AssignedToID.Valid {
		id := row.AssignedToID.Int64
		t.AssigneeID = &id
		if row.AssigneeEmail.Valid {
			t.Assignee = &domain.User{
				ID:        id,
				Name:      row.AssigneeName.String,
				Email:     row.AssigneeEmail.String,
				CreatedAt: row.AssigneeCreatedAt.Time,
			}
		}
	}
	return t
}

func textOrNull(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func dateOrNull(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: *t, Valid: true}
}

func int8OrNull(id *int64) pgtype.Int8 {
	if id == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *id, Valid: true}
}

// Ensure TaskRepository implements ports.TaskRepository.
var _ ports.TaskRepository = (*TaskRepository)(nil)
