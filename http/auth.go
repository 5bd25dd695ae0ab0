package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"blogApi/auth"
	"blogApi/domain"
	"blogApi/errs"
)

// registerAuthRoutes is a helper for registering all routes of the auth system.
func (s *Server) registerAuthRoutes(r *mux.Router) {
	r.HandleFunc("/register", s.handleRegister).Methods("POST")
	r.HandleFunc("/login", s.handleLogin).Methods("POST")
	r.HandleFunc("/logout", s.requireAuth(s.handleLogout)).Methods("POST")

	// Get the authed user.
	r.HandleFunc("/user", s.requireAuth(s.handleUser)).Methods("GET")
}

// handleRegister handles the route "POST /register".
// It creates a new user. It does not sign the user in, that's up to POST /login.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := &domain.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}
	if err := s.us.Create(r.Context(), user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	success(w, r, http.StatusCreated, "", map[string]interface{}{
		"user":       user,
		"token_type": domain.TokenType,
	})
}

// handleLogin handles the route "POST /login".
// It checks the submitted credentials and issues a new bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user, err := s.us.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	token, err := s.ts.Issue(r.Context(), user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	success(w, r, http.StatusOK, "", map[string]interface{}{
		"user":         user,
		"access_token": token.Token,
		"token_type":   domain.TokenType,
	})
}

// handleLogout handles the route "POST /logout".
// It revokes the bearer token the request was made with.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.ts.Revoke(r.Context(), auth.GetToken(r.Context())); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	success(w, r, http.StatusOK, "Logged out successfully", nil)
}

// handleUser handles the route "GET /user".
func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	success(w, r, http.StatusOK, "", auth.GetUser(r.Context()))
}
