package domain

import "time"

// User is a directory entry that tasks can be assigned to.
type User struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
}
