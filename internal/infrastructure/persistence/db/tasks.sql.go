package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// taskColumns selects a task aliased t joined with its assignee aliased u.
const taskColumns = `t.id, t.title, t.description, t.status, t.priority, t.due_date, t.created_at, t.updated_at, t.assigned_to_id,
	u.name, u.email, u.created_at`

const taskJoin = ` LEFT JOIN users u ON u.id = t.assigned_to_id`

func scanTaskRow(row pgx.Row) (TaskRow, error) {
	var r TaskRow
	err := row.Scan(
		&r.ID, &r.Title, &r.Description, &r.Status, &r.Priority, &r.DueDate,
		&r.CreatedAt, &r.UpdatedAt, &r.AssignedToID,
		&r.AssigneeName, &r.AssigneeEmail, &r.AssigneeCreatedAt,
	)
	return r, err
}

const createTask = `INSERT INTO tasks (title, description, status, priority, due_date, created_at, updated_at, assigned_to_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

type CreateTaskParams struct {
	Title        string
	Description  pgtype.Text
	Status       string
	Priority     string
	DueDate      pgtype.Date
	CreatedAt    time.Time
	UpdatedAt    time.Time
	AssignedToID pgtype.Int8
}

func (q *Queries) CreateTask(ctx context.Context, arg CreateTaskParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, createTask,
		arg.Title, arg.Description, arg.Status, arg.Priority, arg.DueDate,
		arg.CreatedAt, arg.UpdatedAt, arg.AssignedToID,
	).Scan(&id)
	return id, err
}

const getTaskByID = `SELECT ` + taskColumns + ` FROM tasks t` + taskJoin + ` WHERE t.id = $1`

func (q *Queries) GetTaskByID(ctx context.Context, id int64) (TaskRow, error) {
	return scanTaskRow(q.db.QueryRow(ctx, getTaskByID, id))
}

const updateTask = `WITH t AS (
	UPDATE tasks SET title = $2, description = $3, status = $4, priority = $5, due_date = $6,
		assigned_to_id = $7, updated_at = GREATEST($8, created_at)
	WHERE id = $1
	RETURNING *
)
SELECT ` + taskColumns + ` FROM t` + taskJoin

type UpdateTaskParams struct {
	ID           int64
	Title        string
	Description  pgtype.Text
	Status       string
	Priority     string
	DueDate      pgtype.Date
	AssignedToID pgtype.Int8
	UpdatedAt    time.Time
}

func (q *Queries) UpdateTask(ctx context.Context, arg UpdateTaskParams) (TaskRow, error) {
	return scanTaskRow(q.db.QueryRow(ctx, updateTask,
		arg.ID, arg.Title, arg.Description, arg.Status, arg.Priority, arg.DueDate,
		arg.AssignedToID, arg.UpdatedAt,
	))
}

const updateTaskStatus = `WITH t AS (
	UPDATE tasks SET status = $2, updated_at = GREATEST($3, created_at)
	WHERE id = $1
	RETURNING *
)
SELECT ` + taskColumns + ` FROM t` + taskJoin

type UpdateTaskStatusParams struct {
	ID        int64
	Status    string
	UpdatedAt time.Time
}

func (q *Queries) UpdateTaskStatus(ctx context.Context, arg UpdateTaskStatusParams) (TaskRow, error) {
	return scanTaskRow(q.db.QueryRow(ctx, updateTaskStatus, arg.ID, arg.Status, arg.UpdatedAt))
}

const deleteTask = `DELETE FROM tasks WHERE id = $1`

func (q *Queries) DeleteTask(ctx context.Context, id int64) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteTask, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type ListTasksParams struct {
	Filter TaskFilterParams
	Limit  int64
	Offset int64
}

func (q *Queries) ListTasks(ctx context.Context, arg ListTasksParams) ([]TaskRow, error) {
	query, args := listTasksQuery(arg)
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TaskRow
	for rows.Next() {
		r, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

func (q *Queries) CountTasks(ctx context.Context, filter TaskFilterParams) (int64, error) {
	query, args := countTasksQuery(filter)
	var n int64
	err := q.db.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}
