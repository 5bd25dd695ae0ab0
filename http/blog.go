package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"blogApi/auth"
	"blogApi/domain"
	"blogApi/errs"
)

// registerBlogRoutes is a helper for registering all Blog routes.
func (s *Server) registerBlogRoutes(r *mux.Router) {
	// List the authed user's blogs.
	r.HandleFunc("/blogs", s.requireAuth(s.handleListBlogs)).Methods("GET")

	// Create a new blog, optionally with an image.
	r.HandleFunc("/blogs", s.requireAuth(s.handleCreateBlog)).Methods("POST")

	r.HandleFunc("/blogs/{id:[0-9]+}", s.requireAuth(s.handleGetBlog)).Methods("GET")
	r.HandleFunc("/blogs/{id:[0-9]+}", s.requireAuth(s.handleUpdateBlog)).Methods("PUT")
	r.HandleFunc("/blogs/{id:[0-9]+}", s.requireAuth(s.handleDeleteBlog)).Methods("DELETE")
}

// handleListBlogs handles the route "GET /blogs".
func (s *Server) handleListBlogs(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	blogs, err := s.bs.ByUserID(r.Context(), user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	success(w, r, http.StatusOK, "", blogs)
}

// handleCreateBlog handles the route "POST /blogs".
// It accepts a json body or a multipart form carrying an image. The image is
// stored first and removed again if the blog can't be created.
func (s *Server) handleCreateBlog(w http.ResponseWriter, r *http.Request) {
	req, err := readBlogRequest(w, r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	defer req.image.Close()

	user := auth.GetUser(r.Context())
	blog := &domain.Blog{UserID: user.ID}
	if req.Title != nil {
		blog.Title = *req.Title
	}
	if req.Description != nil {
		blog.Description = *req.Description
	}

	if req.image != nil {
		img, err := s.storeImage(req.image, domain.OwnerTypeBlog, user.ID)
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		blog.ImageURL = &img.URL
	}

	if err := s.bs.Create(r.Context(), blog); err != nil {
		s.removeImage(r, blog.ImageURL, domain.OwnerTypeBlog, user.ID)
		errs.ReturnError(w, r, err)
		return
	}

	success(w, r, http.StatusCreated, "Blog created successfully", blog)
}

// handleGetBlog handles the route "GET /blogs/{id}".
// Any authed user may read any blog, unless the server runs with private blogs.
func (s *Server) handleGetBlog(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	var blog *domain.Blog
	if s.opts.PrivateBlogs {
		blog, err = s.bs.ByOwner(r.Context(), auth.GetUser(r.Context()).ID, id)
	} else {
		blog, err = s.bs.ByID(r.Context(), id)
	}
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	success(w, r, http.StatusOK, "Blog retrieved successfully", blog)
}

// handleUpdateBlog handles the route "PUT /blogs/{id}".
// Only the fields present in the request are changed. A new image is stored
// before the blog is updated, the previous one is deleted only afterwards.
func (s *Server) handleUpdateBlog(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	req, err := readBlogRequest(w, r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	defer req.image.Close()

	user := auth.GetUser(r.Context())
	before, err := s.bs.ByOwner(r.Context(), user.ID, id)
	if err != nil {
		if errs.ErrorCode(err) == errs.ENOTFOUND {
			err = errs.Errorf(errs.ENOTFOUND, "Blog not found or you do not have permission to update it")
		}
		errs.ReturnError(w, r, err)
		return
	}

	upd := &domain.BlogUpdate{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if req.image != nil {
		img, err := s.storeImage(req.image, domain.OwnerTypeBlog, user.ID)
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		upd.ImageURL = &img.URL
	}

	blog, err := s.bs.Update(r.Context(), user.ID, id, upd)
	if err != nil {
		if req.image != nil {
			s.removeImage(r, upd.ImageURL, domain.OwnerTypeBlog, user.ID)
		}
		errs.ReturnError(w, r, err)
		return
	}
	if before.ImageURL != nil && (blog.ImageURL == nil || *blog.ImageURL != *before.ImageURL) {
		s.removeImage(r, before.ImageURL, domain.OwnerTypeBlog, user.ID)
	}

	success(w, r, http.StatusOK, "Blog updated successfully", blog)
}

// handleDeleteBlog handles the route "DELETE /blogs/{id}".
// The blog and everything below it is deleted in one transaction. The image
// files are removed once that has succeeded.
func (s *Server) handleDeleteBlog(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := auth.GetUser(r.Context())
	blog, err := s.bs.Delete(r.Context(), user.ID, id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	s.removeImage(r, blog.ImageURL, domain.OwnerTypeBlog, user.ID)
	if err := s.is.DeleteAll(domain.OwnerTypePost, blog.ID); err != nil {
		errs.LogError(r, err)
	}

	success(w, r, http.StatusOK, "Blog deleted successfully", nil)
}
