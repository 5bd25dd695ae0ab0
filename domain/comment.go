package domain

import (
	"context"
	"time"
)

// Comment is a piece of text a User attached to a Post.
type Comment struct {
	ID      int    `json:"id"`
	PostID  int    `json:"post_id" gorm:"notNull;index"`
	UserID  int    `json:"user_id" gorm:"notNull;index"`
	Content string `json:"content" gorm:"notNull"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentService is a set of methods to manipulate and work with the Comment model.
type CommentService interface {
	Create(ctx context.Context, comment *Comment) error
}
