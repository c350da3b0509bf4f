package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amirhosseinghanipour/taskmanager/internal/application/ports"
	"github.com/amirhosseinghanipour/taskmanager/internal/domain"
	domerrors "github.com/amirhosseinghanipour/taskmanager/internal/domain/errors"
	"github.com/amirhosseinghanipour/taskmanager/internal/infrastructure/persistence/db"
)

type UserRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewUserRepository(q *db.Queries, pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{q: q, pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	id, err := r.q.CreateUser(ctx, db.CreateUserParams{
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
	if err != nil {
		if code, _ := pgErrorCode(err); code == uniqueViolation {
			return domerrors.NewDuplicate("user", "email", user.Email)
		}
		return err
	}
	user.ID = id
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := r.q.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return dbUserToDomain(u), nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.q.UserExistsByEmail(ctx, email)
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, int64, error) {
	var (
		list  []*domain.User
		total int64
	)
	err := runReadOnly(ctx, r.pool, r.q, func(q *db.Queries) error {
		var e error
		if total, e = q.CountUsers(ctx); e != nil {
			return e
		}
		users, e := q.ListUsers(ctx, db.ListUsersParams{Limit: int64(limit), Offset: int64(offset)})
		if e != nil {
			return e
		}
		for _, u := range users {
			list = append(list, dbUserToDomain(u))
		}
		return nil
	})
	return list, total, err
}

func dbUserToDomain(u db.User) *domain.User {
	return &domain.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// Ensure UserRepository implements ports.UserRepository.
var _ ports.UserRepository = (*UserRepository)(nil)
