package domain

import (
	"context"
	"time"
)

// User represents a registered account. A User owns any number of Blogs.
// Password only lives in memory during registration; it is replaced
// by PasswordHash before the record is stored and is never serialized.
type User struct {
	ID           int    `json:"id"`
	Name         string `json:"name" gorm:"notNull"`
	Email        string `json:"email" gorm:"notNull;uniqueIndex"`
	Password     string `json:"-" gorm:"-"`
	PasswordHash string `json:"-" gorm:"notNull"`

	Blogs []Blog `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserService is a set of methods to manipulate and work with the User model.
type UserService interface {
	ByID(ctx context.Context, id int) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) error
	Authenticate(ctx context.Context, email, password string) (*User, error)
}
