package http

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"blogApi/domain"
)

func TestPostLifecycle(t *testing.T) {
	srv := newTestServer(t, Options{})
	_, alice := login(t, srv, "alice@example.com")
	bobID, bob := login(t, srv, "bob@example.com")
	blog := createBlog(t, srv, alice, "Blog")
	posts := "/blogs/" + strconv.Itoa(blog.ID) + "/posts"

	resp := doJSON(t, srv, "POST", posts, alice, map[string]string{"title": "Hello", "content": "World"})
	wantStatus(t, resp, http.StatusCreated)
	if resp.Message != "Post created successfully" {
		t.Errorf("message = %q", resp.Message)
	}
	var post domain.Post
	resp.decode(t, &post)
	path := posts + "/" + strconv.Itoa(post.ID)

	resp = doJSON(t, srv, "GET", posts, bob, nil)
	wantStatus(t, resp, http.StatusOK)
	var list []domain.Post
	resp.decode(t, &list)
	if len(list) != 1 || list[0].ID != post.ID {
		t.Fatalf("posts = %+v", list)
	}

	// Engage with the post.
	like := "/posts/" + strconv.Itoa(post.ID) + "/like"
	resp = doJSON(t, srv, "POST", like, bob, nil)
	wantStatus(t, resp, http.StatusCreated)
	if resp.Message != "Post liked successfully" {
		t.Errorf("message = %q", resp.Message)
	}
	resp = doJSON(t, srv, "POST", like, bob, nil)
	wantStatus(t, resp, http.StatusBadRequest)
	if resp.Message != "You have already liked this post" {
		t.Errorf("message = %q", resp.Message)
	}

	comment := "/posts/" + strconv.Itoa(post.ID) + "/comment"
	resp = doJSON(t, srv, "POST", comment, bob, map[string]string{"content": "Nice post"})
	wantStatus(t, resp, http.StatusCreated)
	if resp.Message != "Comment added successfully" {
		t.Errorf("message = %q", resp.Message)
	}
	resp = doJSON(t, srv, "POST", comment, bob, map[string]string{})
	wantStatus(t, resp, http.StatusUnprocessableEntity)

	resp = doJSON(t, srv, "GET", path, alice, nil)
	wantStatus(t, resp, http.StatusOK)
	var detail struct {
		ID    int `json:"id"`
		Likes []struct {
			UserID int `json:"user_id"`
		} `json:"likes"`
		Comments []struct {
			Content string `json:"content"`
		} `json:"comments"`
	}
	resp.decode(t, &detail)
	if len(detail.Likes) != 1 || detail.Likes[0].UserID != bobID {
		t.Errorf("likes = %+v", detail.Likes)
	}
	if len(detail.Comments) != 1 || detail.Comments[0].Content != "Nice post" {
		t.Errorf("comments = %+v", detail.Comments)
	}

	// Updates replace title and content as a whole.
	resp = doJSON(t, srv, "PUT", path, alice, map[string]string{"title": "Only title"})
	wantStatus(t, resp, http.StatusUnprocessableEntity)
	if resp.Message != "The content field is required." {
		t.Errorf("message = %q", resp.Message)
	}
	resp = doJSON(t, srv, "PUT", path, alice, map[string]string{"title": "New", "content": "Text"})
	wantStatus(t, resp, http.StatusOK)
	resp.decode(t, &post)
	if post.Title != "New" || post.Content != "Text" {
		t.Errorf("post = %+v", post)
	}

	resp = doJSON(t, srv, "DELETE", path, alice, nil)
	wantStatus(t, resp, http.StatusOK)
	resp = doJSON(t, srv, "GET", path, alice, nil)
	wantStatus(t, resp, http.StatusNotFound)
	if resp.Message != "Post not found" {
		t.Errorf("message = %q", resp.Message)
	}
	wantStatus(t, doJSON(t, srv, "POST", like, alice, nil), http.StatusNotFound)
}

func TestPostMissingBlog(t *testing.T) {
	srv := newTestServer(t, Options{})
	_, alice := login(t, srv, "alice@example.com")

	resp := doJSON(t, srv, "GET", "/blogs/99/posts", alice, nil)
	wantStatus(t, resp, http.StatusNotFound)
	if resp.Message != "Blog not found" {
		t.Errorf("message = %q", resp.Message)
	}
	resp = doJSON(t, srv, "POST", "/blogs/99/posts", alice, map[string]string{"title": "a", "content": "b"})
	wantStatus(t, resp, http.StatusNotFound)

	// The payload is checked before the blog.
	resp = doJSON(t, srv, "POST", "/blogs/99/posts", alice, map[string]string{"title": "a"})
	wantStatus(t, resp, http.StatusUnprocessableEntity)
	if resp.Message != "The content field is required." {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestPostCreateStoresNoImageOnFailure(t *testing.T) {
	imagesDir := filepath.Join(t.TempDir(), "images")
	srv := newTestServer(t, Options{ImagesDir: imagesDir})
	_, alice := login(t, srv, "alice@example.com")
	blog := createBlog(t, srv, alice, "Blog")

	resp := doMultipart(t, srv, "POST", "/blogs/99/posts", alice, map[string]string{"title": "a", "content": "b"}, "pic.png")
	wantStatus(t, resp, http.StatusNotFound)
	resp = doMultipart(t, srv, "POST", "/blogs/"+strconv.Itoa(blog.ID)+"/posts", alice, map[string]string{"title": "a"}, "pic.png")
	wantStatus(t, resp, http.StatusUnprocessableEntity)

	if _, err := os.Stat(filepath.Join(imagesDir, "posts")); !os.IsNotExist(err) {
		t.Errorf("post images stored: %v", err)
	}
}

func TestPostInOtherBlog(t *testing.T) {
	srv := newTestServer(t, Options{})
	_, alice := login(t, srv, "alice@example.com")
	b1 := createBlog(t, srv, alice, "One")
	b2 := createBlog(t, srv, alice, "Two")

	resp := doJSON(t, srv, "POST", "/blogs/"+strconv.Itoa(b1.ID)+"/posts", alice, map[string]string{"title": "a", "content": "b"})
	wantStatus(t, resp, http.StatusCreated)
	var post domain.Post
	resp.decode(t, &post)

	resp = doJSON(t, srv, "GET", "/blogs/"+strconv.Itoa(b2.ID)+"/posts/"+strconv.Itoa(post.ID), alice, nil)
	wantStatus(t, resp, http.StatusNotFound)
}

func TestPostImage(t *testing.T) {
	srv := newTestServer(t, Options{})
	_, alice := login(t, srv, "alice@example.com")
	blog := createBlog(t, srv, alice, "Blog")
	posts := "/blogs/" + strconv.Itoa(blog.ID) + "/posts"

	resp := doMultipart(t, srv, "POST", posts, alice, map[string]string{"title": "Pic", "content": "Look"}, "pic.png")
	wantStatus(t, resp, http.StatusCreated)
	var post domain.Post
	resp.decode(t, &post)
	if post.ImageURL == nil {
		t.Fatal("post has no image")
	}
	first := "/" + *post.ImageURL
	wantStatus(t, get(t, srv, first), http.StatusOK)
	path := posts + "/" + strconv.Itoa(post.ID)

	// A failed update keeps the old image and doesn't store the new one.
	resp = doMultipart(t, srv, "PUT", path, alice, map[string]string{"title": "Pic"}, "pic2.png")
	wantStatus(t, resp, http.StatusUnprocessableEntity)
	wantStatus(t, get(t, srv, first), http.StatusOK)

	resp = doMultipart(t, srv, "PUT", path, alice, map[string]string{"title": "Pic", "content": "Again"}, "pic2.png")
	wantStatus(t, resp, http.StatusOK)
	resp.decode(t, &post)
	second := "/" + *post.ImageURL
	if second == first {
		t.Fatal("image was not replaced")
	}
	wantStatus(t, get(t, srv, second), http.StatusOK)
	wantStatus(t, get(t, srv, first), http.StatusNotFound)

	// Deleting the post removes its image.
	wantStatus(t, doJSON(t, srv, "DELETE", path, alice, nil), http.StatusOK)
	wantStatus(t, get(t, srv, second), http.StatusNotFound)
}
