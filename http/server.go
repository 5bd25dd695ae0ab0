package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"blogApi/auth"
	"blogApi/crud"
	"blogApi/domain"
	"blogApi/errs"
)

// Options configure the parts of the Server that are not services.
type Options struct {
	// ClientToken, if set, has to be sent in the X-Client-Token header of every api request.
	ClientToken string
	// ImagesDir is the directory uploaded images are served from.
	ImagesDir string
	// PrivateBlogs restricts reading a single blog to its owner.
	PrivateBlogs bool
}

// Server provides most of the http functionality of this app, namely routing,
// request handling, and middleware. It also performs authentication before
// handing things over to one of the crud services, passing the authenticated
// user's ID along explicitly.
type Server struct {
	router  *mux.Router
	handler http.Handler
	opts    Options

	us domain.UserService
	ts domain.AccessTokenService
	bs domain.BlogService
	ps domain.PostService
	ls domain.LikeService
	cs domain.CommentService
	is domain.ImageService

	userMw *auth.UserMw
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the app services passed in.
func NewServer(services *crud.Services, opts Options) *Server {
	// Construct a new Server with a gorilla router and the services passed in.
	s := &Server{
		router: mux.NewRouter(),
		opts:   opts,
		us:     services.User,
		ts:     services.Token,
		bs:     services.Blog,
		ps:     services.Post,
		ls:     services.Like,
		cs:     services.Comment,
		is:     services.Image,
		userMw: &auth.UserMw{AccessTokenService: services.Token},
	}

	// Uploaded images are public and don't go through the api middleware.
	s.registerImageRoutes(s.router)

	api := s.router.PathPrefix("/").Subrouter()
	clientMw := &auth.ClientTokenMw{Token: opts.ClientToken}
	api.Use(clientMw.Apply, setContentTypeJSON)

	// Register routes of the auth system.
	s.registerAuthRoutes(api)

	// Register routes of the crud system.
	s.registerBlogRoutes(api)
	s.registerPostRoutes(api)
	s.registerEngagementRoutes(api)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "Not found."))
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusMethodNotAllowed, &envelope{Status: statusError, Message: "Method not allowed."})
	})

	s.handler = logRequests(s.router)
	return s
}

// requireAuth only lets requests with a valid bearer token through.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return s.userMw.ApplyFn(next)
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// ServeHTTP lets the Server be used as an http.Handler, mainly in tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Run starts to listen and serve on the specified port until ctx is cancelled.
func (s *Server) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutting down server")
		}
	}()

	log.Info().Int("port", port).Msg("listening")
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// pathID parses a positive integer route variable.
func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		return 0, errs.Errorf(errs.EINVALID, "Invalid Id format.")
	}
	return id, nil
}

// isMultipart reports whether the request body is multipart/form-data.
func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}
