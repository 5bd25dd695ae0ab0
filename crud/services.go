package crud

import (
	"github.com/allegro/bigcache/v3"
	"gorm.io/gorm"
)

// A ServicesConfig is any function that takes in a pointer to a Services
// object and returns an error. It's basically just wrapping the constructor
// method of any given crud service. It exists to be able to easily create
// the crud services using functional options in main.go.
type ServicesConfig func(*Services) error

// Services is a container object holding pointers to all the crud services.
// The crud services all share the database connection provided by Services.
type Services struct {
	db      *gorm.DB
	User    *UserService
	Token   *AccessTokenService
	Blog    *BlogService
	Post    *PostService
	Like    *LikeService
	Comment *CommentService
	Image   *ImageService
}

// NewServices returns a new Services object, containing any crud services
// it's told to create by one of the passed in ServicesConfig functions.
// It shares the passed in database connection with any crud service it creates.
func NewServices(db *gorm.DB, cfgs ...ServicesConfig) (*Services, error) {
	s := Services{
		db: db,
	}
	for _, cfg := range cfgs {
		if err := cfg(&s); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// WithUser wraps the constructor of UserService, NewUserService.
func WithUser(pepper string) ServicesConfig {
	return func(s *Services) error {
		s.User = NewUserService(s.db, pepper)
		return nil
	}
}

// WithAccessToken wraps the constructor of AccessTokenService, NewAccessTokenService.
// A nil cache disables caching of resolved tokens.
func WithAccessToken(hmacKey string, cache *bigcache.BigCache) ServicesConfig {
	return func(s *Services) error {
		s.Token = NewAccessTokenService(s.db, hmacKey, cache)
		return nil
	}
}

// WithBlog wraps the constructor of BlogService, NewBlogService.
func WithBlog() ServicesConfig {
	return func(s *Services) error {
		s.Blog = NewBlogService(s.db)
		return nil
	}
}

// WithPost wraps the constructor of PostService, NewPostService.
func WithPost() ServicesConfig {
	return func(s *Services) error {
		s.Post = NewPostService(s.db)
		return nil
	}
}

// WithLike wraps the constructor of LikeService, NewLikeService.
func WithLike() ServicesConfig {
	return func(s *Services) error {
		s.Like = NewLikeService(s.db)
		return nil
	}
}

// WithComment wraps the constructor of CommentService, NewCommentService.
func WithComment() ServicesConfig {
	return func(s *Services) error {
		s.Comment = NewCommentService(s.db)
		return nil
	}
}

// WithImage wraps the constructor of ImageService, NewImageService.
func WithImage(dir string) ServicesConfig {
	return func(s *Services) error {
		s.Image = NewImageService(dir)
		return nil
	}
}
