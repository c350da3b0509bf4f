package db

import (
	"context"
	"time"
)

const createUser = `INSERT INTO users (name, email, created_at) VALUES ($1, $2, $3) RETURNING id`

type CreateUserParams struct {
	Name      string
	Email     string
	CreatedAt time.Time
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, createUser, arg.Name, arg.Email, arg.CreatedAt).Scan(&id)
	return id, err
}

const getUserByID = `SELECT id, name, email, created_at FROM users WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := q.db.QueryRow(ctx, getUserByID, id).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	return u, err
}

const userExistsByEmail = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

func (q *Queries) UserExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, userExistsByEmail, email).Scan(&exists)
	return exists, err
}

const listUsers = `SELECT id, name, email, created_at FROM users ORDER BY id DESC LIMIT $1 OFFSET $2`

type ListUsersParams struct {
	Limit  int64
	Offset int64
}

func (q *Queries) ListUsers(ctx context.Context, arg ListUsersParams) ([]User, error) {
	rows, err := q.db.Query(ctx, listUsers, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

const countUsers = `SELECT count(*) FROM users`

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countUsers).Scan(&n)
	return n, err
}
