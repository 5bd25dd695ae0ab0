package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"blogApi/domain"
	"blogApi/errs"
)

// registerPostRoutes is a helper for registering all Post routes.
// Posts are always addressed through the blog they belong to.
func (s *Server) registerPostRoutes(r *mux.Router) {
	r.HandleFunc("/blogs/{blogId:[0-9]+}/posts", s.requireAuth(s.handleListPosts)).Methods("GET")
	r.HandleFunc("/blogs/{blogId:[0-9]+}/posts", s.requireAuth(s.handleCreatePost)).Methods("POST")

	// Get a single post along with its likes and comments.
	r.HandleFunc("/blogs/{blogId:[0-9]+}/posts/{id:[0-9]+}", s.requireAuth(s.handleGetPost)).Methods("GET")

	r.HandleFunc("/blogs/{blogId:[0-9]+}/posts/{id:[0-9]+}", s.requireAuth(s.handleUpdatePost)).Methods("PUT")
	r.HandleFunc("/blogs/{blogId:[0-9]+}/posts/{id:[0-9]+}", s.requireAuth(s.handleDeletePost)).Methods("DELETE")
}

// handleListPosts handles the route "GET /blogs/{blogId}/posts".
func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	blogID, err := pathID(r, "blogId")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	posts, err := s.ps.ByBlogID(r.Context(), blogID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	success(w, r, http.StatusOK, "", posts)
}

// handleCreatePost handles the route "POST /blogs/{blogId}/posts".
// The payload is validated before the blog is looked up, and an image is
// only stored once both have passed.
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	blogID, err := pathID(r, "blogId")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	req, err := readPostRequest(w, r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	defer req.image.Close()

	post := &domain.Post{
		BlogID:  blogID,
		Title:   req.Title,
		Content: req.Content,
	}
	if req.image != nil {
		// Nothing is stored for a post that can't be created.
		if err := s.ps.Validate(r.Context(), post); err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		img, err := s.storeImage(req.image, domain.OwnerTypePost, blogID)
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		post.ImageURL = &img.URL
	}

	if err := s.ps.Create(r.Context(), post); err != nil {
		s.removeImage(r, post.ImageURL, domain.OwnerTypePost, blogID)
		errs.ReturnError(w, r, err)
		return
	}

	success(w, r, http.StatusCreated, "Post created successfully", post)
}

// handleGetPost handles the route "GET /blogs/{blogId}/posts/{id}".
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	blogID, id, err := postIDs(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	post, err := s.ps.Detail(r.Context(), blogID, id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	success(w, r, http.StatusOK, "", post)
}

// handleUpdatePost handles the route "PUT /blogs/{blogId}/posts/{id}".
// Title and content are replaced as a whole. If an image is sent along, it is
// stored first, then the post is updated, and only then the old image is deleted.
func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	blogID, id, err := postIDs(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	req, err := readPostRequest(w, r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	defer req.image.Close()

	post, err := s.ps.ByID(r.Context(), blogID, id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	oldImageURL := post.ImageURL

	post.Title = req.Title
	post.Content = req.Content
	if req.image != nil {
		img, err := s.storeImage(req.image, domain.OwnerTypePost, blogID)
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		post.ImageURL = &img.URL
	}

	if err := s.ps.Update(r.Context(), post); err != nil {
		if req.image != nil {
			s.removeImage(r, post.ImageURL, domain.OwnerTypePost, blogID)
		}
		errs.ReturnError(w, r, err)
		return
	}
	if req.image != nil {
		s.removeImage(r, oldImageURL, domain.OwnerTypePost, blogID)
	}

	success(w, r, http.StatusOK, "Post updated successfully", post)
}

// handleDeletePost handles the route "DELETE /blogs/{blogId}/posts/{id}".
// The post record goes first, its image file afterwards.
func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	blogID, id, err := postIDs(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	post, err := s.ps.ByID(r.Context(), blogID, id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.ps.Delete(r.Context(), post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.removeImage(r, post.ImageURL, domain.OwnerTypePost, blogID)

	success(w, r, http.StatusOK, "Post deleted successfully", nil)
}

// postIDs parses the blog ID and the post ID from the url.
func postIDs(r *http.Request) (blogID, id int, err error) {
	if blogID, err = pathID(r, "blogId"); err != nil {
		return 0, 0, err
	}
	if id, err = pathID(r, "id"); err != nil {
		return 0, 0, err
	}
	return blogID, id, nil
}
