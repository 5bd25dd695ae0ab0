package domain

import (
	"context"
	"time"
)

// Blog is owned by exactly one User and holds any number of Posts.
// Only the owner may change or delete a Blog. Deleting it deletes its Posts.
type Blog struct {
	ID          int     `json:"id"`
	UserID      int     `json:"user_id" gorm:"notNull;index"`
	Title       string  `json:"title" gorm:"notNull;size:255"`
	Slug        string  `json:"slug"`
	Description string  `json:"description" gorm:"notNull"`
	ImageURL    *string `json:"image_url"`

	Posts []Post `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BlogUpdate holds the fields of a partial Blog update.
// Nil fields are left untouched.
type BlogUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

// BlogService is a set of methods to manipulate and work with the Blog model.
// Every method that changes a Blog is scoped to the owning user's ID.
type BlogService interface {
	ByUserID(ctx context.Context, userID int) ([]Blog, error)
	ByID(ctx context.Context, id int) (*Blog, error)
	ByOwner(ctx context.Context, userID, id int) (*Blog, error)
	Create(ctx context.Context, blog *Blog) error
	Update(ctx context.Context, userID, id int, upd *BlogUpdate) (*Blog, error)
	Delete(ctx context.Context, userID, id int) (*Blog, error)
}
