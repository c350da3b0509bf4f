package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirhosseinghanipour/taskmanager/internal/application/ports"
	"github.com/amirhosseinghanipour/taskmanager/internal/domain"
	domerrors "github.com/amirhosseinghanipour/taskmanager/internal/domain/errors"
)

// CreateInput is a validated user creation request. Email is expected to be
// sanitized already.
type CreateInput struct {
	Name  string
	Email string
}

// Manager owns the user lifecycle: create, lookup and listing.
type Manager struct {
	users ports.UserRepository
	now   func() time.Time
}

// NewManager builds a Manager over the given repository.
func NewManager(users ports.UserRepository) *Manager {
	return &Manager{users: users, now: time.Now}
}

// Create registers a new user. The email must not be in use; a race that slips
// past the existence check is caught by the store and reported the same way.
func (m *Manager) Create(ctx context.Context, input CreateInput) (*domain.User, error) {
	exists, err := m.users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, domerrors.NewDuplicate("user", "email", input.Email)
	}
	user := &domain.User{
		Name:      input.Name,
		Email:     input.Email,
		CreatedAt: m.now().UTC().Truncate(time.Microsecond),
	}
	if err := m.users.Create(ctx, user); err != nil {
		if errors.Is(err, domerrors.ErrDuplicate) {
			return nil, domerrors.NewDuplicate("user", "email", input.Email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Get returns the user or a NotFoundError.
func (m *Manager) Get(ctx context.Context, id int64) (*domain.User, error) {
	u, err := m.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, domerrors.NewNotFound("user", id)
	}
	return u, nil
}

// Resolve looks up an assignee reference. Same contract as Get.
func (m *Manager) Resolve(ctx context.Context, id int64) (*domain.User, error) {
	return m.Get(ctx, id)
}

// List returns one page of users, newest id first. Pages past the end are empty.
func (m *Manager) List(ctx context.Context, page, size int) (domain.Page[*domain.User], error) {
	users, total, err := m.users.List(ctx, size, domain.Offset(page, size))
	if err != nil {
		return domain.Page[*domain.User]{}, fmt.Errorf("list users: %w", err)
	}
	return domain.NewPage(users, page, size, total), nil
}
