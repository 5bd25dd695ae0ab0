package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"blogApi/domain"
	"blogApi/errs"
)

// ClientTokenHeader is the header every client has to send when the api is
// configured with a client token.
const ClientTokenHeader = "X-Client-Token"

// UserMw looks up the user belonging to the bearer token of a request.
type UserMw struct {
	domain.AccessTokenService
}

// Apply wraps an http.Handler, see ApplyFn.
func (mw *UserMw) Apply(next http.Handler) http.HandlerFunc {
	return mw.ApplyFn(next.ServeHTTP)
}

// ApplyFn resolves the request's bearer token and puts the user and the
// token into the request context. Requests without a valid token are
// rejected with 401 before they reach next.
func (mw *UserMw) ApplyFn(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			errs.ReturnError(w, r, errs.UserIdValid)
			return
		}
		user, err := mw.UserByToken(r.Context(), token)
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		ctx := SetUser(r.Context(), user)
		ctx = SetToken(ctx, token)
		next(w, r.WithContext(ctx))
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, domain.TokenType) {
		return ""
	}
	return strings.TrimSpace(token)
}

// ClientTokenMw rejects requests that don't carry the configured client token.
// An empty Token lets every request through.
type ClientTokenMw struct {
	Token string
}

// Apply wraps an http.Handler.
func (mw *ClientTokenMw) Apply(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if mw.Token != "" {
			got := r.Header.Get(ClientTokenHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(mw.Token)) != 1 {
				errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "Invalid client token."))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
