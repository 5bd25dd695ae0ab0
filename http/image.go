package http

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"blogApi/domain"
	"blogApi/errs"
)

// registerImageRoutes serves the uploaded images from the images directory.
func (s *Server) registerImageRoutes(r *mux.Router) {
	prefix := "/" + domain.ImagesURLPrefix + "/"
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(s.opts.ImagesDir)))
	r.PathPrefix(prefix).Handler(imageHeaders(fs)).Methods("GET", "HEAD")
}

// imageHeaders hides directory listings and keeps browsers from sniffing
// images into something else.
func imageHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "Not found."))
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		next.ServeHTTP(w, r)
	})
}
