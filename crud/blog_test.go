package crud

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"blogApi/domain"
	"blogApi/errs"
)

func TestBlogCreate(t *testing.T) {
	s := newTestServices(t)
	alice := mustCreateUser(t, s, "alice@example.com")

	b := &domain.Blog{UserID: alice.ID, Title: " Go <b>Notes</b> ", Description: "<p>All about Go</p><script>alert(1)</script>"}
	if err := s.Blog.Create(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	if b.Title != "Go Notes" {
		t.Errorf("title = %q", b.Title)
	}
	if b.Slug != "go-notes" {
		t.Errorf("slug = %q", b.Slug)
	}
	if strings.Contains(b.Description, "script") {
		t.Errorf("description not sanitized: %q", b.Description)
	}
}

func TestBlogCreateValidation(t *testing.T) {
	s := newTestServices(t)
	alice := mustCreateUser(t, s, "alice@example.com")

	err := s.Blog.Create(context.Background(), &domain.Blog{UserID: alice.ID})
	wantCode(t, err, errs.EINVALID)
	want := "The title field is required., The description field is required."
	if got := errs.ErrorMessage(err); got != want {
		t.Errorf("message = %q, want %q", got, want)
	}

	err = s.Blog.Create(context.Background(), &domain.Blog{UserID: alice.ID, Title: strings.Repeat("a", 256), Description: "d"})
	wantCode(t, err, errs.EINVALID)
}

func TestBlogByUserID(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice@example.com")
	bob := mustCreateUser(t, s, "bob@example.com")
	mustCreateBlog(t, s, alice.ID, "First")
	mustCreateBlog(t, s, bob.ID, "Bobs")
	mustCreateBlog(t, s, alice.ID, "Second")

	blogs, err := s.Blog.ByUserID(ctx, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	var titles []string
	for _, b := range blogs {
		titles = append(titles, b.Title)
	}
	if diff := cmp.Diff([]string{"First", "Second"}, titles); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}

	carol := mustCreateUser(t, s, "carol@example.com")
	blogs, err = s.Blog.ByUserID(ctx, carol.ID)
	if err != nil {
		t.Fatal(err)
	}
	if blogs == nil || len(blogs) != 0 {
		t.Errorf("blogs = %#v, want empty slice", blogs)
	}
}

func TestBlogUpdatePartial(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice@example.com")
	b := mustCreateBlog(t, s, alice.ID, "Original")

	desc := "A new description"
	got, err := s.Blog.Update(ctx, alice.ID, b.ID, &domain.BlogUpdate{Description: &desc})
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Original" || got.Description != desc {
		t.Errorf("blog = %q / %q", got.Title, got.Description)
	}

	title := "Renamed Blog"
	if _, err := s.Blog.Update(ctx, alice.ID, b.ID, &domain.BlogUpdate{Title: &title}); err != nil {
		t.Fatal(err)
	}
	stored, err := s.Blog.ByID(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Title != title || stored.Slug != "renamed-blog" || stored.Description != desc {
		t.Errorf("stored blog = %+v", stored)
	}

	empty := ""
	_, err = s.Blog.Update(ctx, alice.ID, b.ID, &domain.BlogUpdate{Title: &empty})
	wantCode(t, err, errs.EINVALID)
}

func TestBlogOwnershipIsolation(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice@example.com")
	bob := mustCreateUser(t, s, "bob@example.com")
	b := mustCreateBlog(t, s, alice.ID, "Alices")

	title := "Hijacked"
	_, err := s.Blog.Update(ctx, bob.ID, b.ID, &domain.BlogUpdate{Title: &title})
	wantCode(t, err, errs.ENOTFOUND)
	if msg := errs.ErrorMessage(err); msg != "Blog not found or you do not have permission to update it" {
		t.Errorf("update message = %q", msg)
	}

	_, err = s.Blog.Delete(ctx, bob.ID, b.ID)
	wantCode(t, err, errs.ENOTFOUND)
	if msg := errs.ErrorMessage(err); msg != "Blog not found or you do not have permission to delete it" {
		t.Errorf("delete message = %q", msg)
	}

	// A blog that doesn't exist at all looks the same.
	_, err = s.Blog.Update(ctx, bob.ID, b.ID+100, &domain.BlogUpdate{Title: &title})
	wantCode(t, err, errs.ENOTFOUND)

	_, err = s.Blog.ByOwner(ctx, bob.ID, b.ID)
	wantCode(t, err, errs.ENOTFOUND)

	stored, err := s.Blog.ByID(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Title != "Alices" {
		t.Errorf("title = %q", stored.Title)
	}
}

func TestBlogDeleteCascades(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice@example.com")
	bob := mustCreateUser(t, s, "bob@example.com")
	b := mustCreateBlog(t, s, alice.ID, "Doomed")
	other := mustCreateBlog(t, s, alice.ID, "Survivor")

	for _, title := range []string{"One", "Two", "Three"} {
		p := mustCreatePost(t, s, b.ID, title)
		if err := s.Like.Create(ctx, &domain.Like{PostID: p.ID, UserID: bob.ID}); err != nil {
			t.Fatal(err)
		}
		if err := s.Comment.Create(ctx, &domain.Comment{PostID: p.ID, UserID: bob.ID, Content: "Nice"}); err != nil {
			t.Fatal(err)
		}
	}
	kept := mustCreatePost(t, s, other.ID, "Kept")

	deleted, err := s.Blog.Delete(ctx, alice.ID, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(deleted.Posts) != 3 {
		t.Errorf("deleted blog carries %d posts, want 3", len(deleted.Posts))
	}

	_, err = s.Blog.ByID(ctx, b.ID)
	wantCode(t, err, errs.ENOTFOUND)

	db := s.Blog.db
	for _, tc := range []struct {
		model interface{}
		where string
		arg   interface{}
	}{
		{&domain.Post{}, "blog_id = ?", b.ID},
		{&domain.Like{}, "user_id = ?", bob.ID},
		{&domain.Comment{}, "user_id = ?", bob.ID},
	} {
		var n int64
		if err := db.Model(tc.model).Where(tc.where, tc.arg).Count(&n).Error; err != nil {
			t.Fatal(err)
		}
		if n != 0 {
			t.Errorf("%T: %d rows left, want 0", tc.model, n)
		}
	}

	if _, err := s.Post.ByID(ctx, other.ID, kept.ID); err != nil {
		t.Errorf("post of another blog was deleted: %v", err)
	}
}
