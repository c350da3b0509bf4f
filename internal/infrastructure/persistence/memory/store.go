// Package memory is an in-process Entity Store for single-instance development
// and tests. It enforces the same constraints as the postgres schema: unique
// email, assignee foreign key, and updated_at >= created_at.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/amirhosseinghanipour/taskmanager/internal/application/ports"
	"github.com/amirhosseinghanipour/taskmanager/internal/domain"
	domerrors "github.com/amirhosseinghanipour/taskmanager/internal/domain/errors"
)

// Store holds users and tasks behind one lock so a task write observes a
// consistent view of the users it references.
type Store struct {
	mu         sync.RWMutex
	users      map[int64]domain.User
	emails     map[string]int64
	tasks      map[int64]domain.Task
	nextUserID int64
	nextTaskID int64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:  make(map[int64]domain.User),
		emails: make(map[string]int64),
		tasks:  make(map[int64]domain.Task),
	}
}

// Users returns the UserRepository view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Tasks returns the TaskRepository view of the store.
func (s *Store) Tasks() *TaskRepository { return &TaskRepository{s: s} }

// Ping always succeeds; it lets the store stand in for a database in health checks.
func (s *Store) Ping(ctx context.Context) error { return nil }

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.emails[user.Email]; ok {
		return domerrors.NewDuplicate("user", "email", user.Email)
	}
	s.nextUserID++
	user.ID = s.nextUserID
	s.users[user.ID] = *user
	s.emails[user.Email] = user.ID
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.emails[email]
	return ok, nil
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]*domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		u := u
		all = append(all, &u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return window(all, limit, offset), int64(len(all)), nil
}

// Delete removes a user and clears it from any task that referenced it, the
// way ON DELETE SET NULL does. No API route reaches it.
func (r *UserRepository) Delete(ctx context.Context, id int64) bool {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false
	}
	delete(s.users, id)
	delete(s.emails, u.Email)
	for tid, t := range s.tasks {
		if t.AssigneeID != nil && *t.AssigneeID == id {
			t.AssigneeID = nil
			s.tasks[tid] = t
		}
	}
	return true
}

type TaskRepository struct{ s *Store }

// load returns a copy of t with its assignee joined in. Caller holds the lock.
func (s *Store) load(t domain.Task) *domain.Task {
	t.Assignee = nil
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	if t.AssigneeID != nil {
		id := *t.AssigneeID
		t.AssigneeID = &id
		if u, ok := s.users[id]; ok {
			t.Assignee = &u
		}
	}
	return &t
}

// checkAssignee enforces the assignee foreign key. Caller holds the lock.
func (s *Store) checkAssignee(id *int64) error {
	if id == nil {
		return nil
	}
	if _, ok := s.users[*id]; !ok {
		return domerrors.NewNotFound("user", *id)
	}
	return nil
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAssignee(task.AssigneeID); err != nil {
		return err
	}
	s.nextTaskID++
	task.ID = s.nextTaskID
	stored := *s.load(*task)
	stored.Assignee = nil
	s.tasks[task.ID] = stored
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, nil
	}
	return r.s.load(t), nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.tasks[task.ID]
	if !ok {
		return nil, nil
	}
	if err := s.checkAssignee(task.AssigneeID); err != nil {
		return nil, err
	}
	next := *s.load(*task)
	next.Assignee = nil
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = notBefore(task.UpdatedAt, cur.CreatedAt)
	s.tasks[task.ID] = next
	return s.load(next), nil
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus, updatedAt time.Time) (*domain.Task, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	cur.Status = status
	cur.UpdatedAt = notBefore(updatedAt, cur.CreatedAt)
	s.tasks[id] = cur
	return s.load(cur), nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return false, nil
	}
	delete(s.tasks, id)
	return true, nil
}

func (r *TaskRepository) List(ctx context.Context, filter domain.TaskFilter, limit, offset int) ([]*domain.Task, int64, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []*domain.Task
	for _, t := range s.tasks {
		if matches(t, filter) {
			matched = append(matched, s.load(t))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return window(matched, limit, offset), int64(len(matched)), nil
}

func matches(t domain.Task, f domain.TaskFilter) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *f.AssigneeID) {
		return false
	}
	return true
}

func window[T any](all []T, limit, offset int) []T {
	if offset < 0 || offset >= len(all) || limit <= 0 {
		return nil
	}
	end := len(all)
	if limit < end-offset {
		end = offset + limit
	}
	return all[offset:end]
}

func notBefore(t, floor time.Time) time.Time {
	if t.Before(floor) {
		return floor
	}
	return t
}

var (
	_ ports.UserRepository = (*UserRepository)(nil)
	_ ports.TaskRepository = (*TaskRepository)(nil)
)
