package ports

import (
	"context"
	"time"

	"github.com/amirhosseinghanipour/taskmanager/internal/domain"
)

// UserRepository defines persistence for users. Lookups return (nil, nil) when
// the row does not exist.
type UserRepository interface {
	// Create inserts the user and sets its ID. A unique-email violation is
	// returned as a *errors.DuplicateError.
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// List returns users ordered by id descending plus the total count.
	List(ctx context.Context, limit, offset int) ([]*domain.User, int64, error)
}

// TaskRepository defines persistence for tasks. Returned tasks carry their
// assignee (if any) joined in; lookups return (nil, nil) when the row does not exist.
type TaskRepository interface {
	// Create inserts the task and sets its ID. A missing assignee row is
	// returned as a *errors.NotFoundError for the user.
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	// Update replaces every mutable column of task.ID.
	Update(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// UpdateStatus changes only status and updated_at.
	UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus, updatedAt time.Time) (*domain.Task, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id int64) (bool, error)
	// List returns tasks matching filter ordered by created_at descending plus
	// the total number of matches.
	List(ctx context.Context, filter domain.TaskFilter, limit, offset int) ([]*domain.Task, int64, error)
}
