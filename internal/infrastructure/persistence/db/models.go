package db

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
}

type Task struct {
	ID           int64
	Title        string
	Description  pgtype.Text
	Status       string
	Priority     string
	DueDate      pgtype.Date
	CreatedAt    time.Time
	UpdatedAt    time.Time
	AssignedToID pgtype.Int8
}

// TaskRow is a task joined with its (optional) assignee.
type TaskRow struct {
	Task
	AssigneeName      pgtype.Text
	AssigneeEmail     pgtype.Text
	AssigneeCreatedAt pgtype.Timestamptz
}
