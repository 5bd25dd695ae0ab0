package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"blogApi/auth"
	"blogApi/domain"
	"blogApi/errs"
)

// registerEngagementRoutes is a helper for registering the Like and Comment routes.
func (s *Server) registerEngagementRoutes(r *mux.Router) {
	// Like a post. A user can like a post only once.
	r.HandleFunc("/posts/{postId:[0-9]+}/like", s.requireAuth(s.handleCreateLike)).Methods("POST")

	// Comment on a post.
	r.HandleFunc("/posts/{postId:[0-9]+}/comment", s.requireAuth(s.handleCreateComment)).Methods("POST")
}

// handleCreateLike handles the route "POST /posts/{postId}/like".
// It reads the post ID from the url and creates a new Like record in the database.
func (s *Server) handleCreateLike(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	like := &domain.Like{
		PostID: postID,
		UserID: auth.GetUser(r.Context()).ID,
	}
	if err := s.ls.Create(r.Context(), like); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	success(w, r, http.StatusCreated, "Post liked successfully", like)
}

// handleCreateComment handles the route "POST /posts/{postId}/comment".
func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	comment := &domain.Comment{
		PostID:  postID,
		UserID:  auth.GetUser(r.Context()).ID,
		Content: req.Content,
	}
	if err := s.cs.Create(r.Context(), comment); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	success(w, r, http.StatusCreated, "Comment added successfully", comment)
}
