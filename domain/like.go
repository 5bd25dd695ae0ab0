package domain

import (
	"context"
	"time"
)

// Like represents a many-to-many relationship between a User and a Post.
// A user can like a post only once, which is enforced by a unique index
// spanning PostID and UserID. Likes are never changed once created.
type Like struct {
	ID     int `json:"id"`
	PostID int `json:"post_id" gorm:"notNull;uniqueIndex:idx_likes_post_user"`
	UserID int `json:"user_id" gorm:"notNull;uniqueIndex:idx_likes_post_user;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LikeService is a set of methods to manipulate and work with the Like model.
type LikeService interface {
	Create(ctx context.Context, like *Like) error
}
