package domain

import (
	"context"
	"time"
)

// Post belongs to a Blog. Its Likes and Comments are only loaded
// when a single Post is requested.
type Post struct {
	ID       int     `json:"id"`
	BlogID   int     `json:"blog_id" gorm:"notNull;index"`
	Title    string  `json:"title" gorm:"notNull;size:255"`
	Content  string  `json:"content" gorm:"notNull"`
	ImageURL *string `json:"image_url"`

	Likes    []Like    `json:"likes,omitempty"`
	Comments []Comment `json:"comments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostDetail is a Post along with all of its Likes and Comments.
// Unlike Post, it always serializes both lists, even when they are empty.
type PostDetail struct {
	Post
	Likes    []Like    `json:"likes"`
	Comments []Comment `json:"comments"`
}

// PostService is a set of methods to manipulate and work with the Post model.
// Posts are always addressed through the Blog they belong to.
type PostService interface {
	ByBlogID(ctx context.Context, blogID int) ([]Post, error)
	ByID(ctx context.Context, blogID, id int) (*Post, error)
	Detail(ctx context.Context, blogID, id int) (*PostDetail, error)
	Validate(ctx context.Context, post *Post) error
	Create(ctx context.Context, post *Post) error
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, post *Post) error
}
