package crud

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"blogApi/domain"
	"blogApi/errs"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	err = db.AutoMigrate(
		&domain.User{},
		&domain.AccessToken{},
		&domain.Blog{},
		&domain.Post{},
		&domain.Like{},
		&domain.Comment{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestServices(t *testing.T) *Services {
	t.Helper()
	s, err := NewServices(newTestDB(t),
		WithUser("test-pepper"),
		WithAccessToken("test-hmac-key", nil),
		WithBlog(),
		WithPost(),
		WithLike(),
		WithComment(),
		WithImage(t.TempDir()),
	)
	if err != nil {
		t.Fatalf("services: %v", err)
	}
	return s
}

func mustCreateUser(t *testing.T, s *Services, email string) *domain.User {
	t.Helper()
	u := &domain.User{Name: "Test User", Email: email, Password: "password123"}
	if err := s.User.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func mustCreateBlog(t *testing.T, s *Services, userID int, title string) *domain.Blog {
	t.Helper()
	b := &domain.Blog{UserID: userID, Title: title, Description: "About " + title}
	if err := s.Blog.Create(context.Background(), b); err != nil {
		t.Fatalf("create blog: %v", err)
	}
	return b
}

func mustCreatePost(t *testing.T, s *Services, blogID int, title string) *domain.Post {
	t.Helper()
	p := &domain.Post{BlogID: blogID, Title: title, Content: "Content of " + title}
	if err := s.Post.Create(context.Background(), p); err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	if got := errs.ErrorCode(err); got != code {
		t.Fatalf("error code = %q, want %q (err: %v)", got, code, err)
	}
}
