package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// Application error codes. They are mapped to http status codes in ReturnError.
const (
	ECONFLICT     = "conflict"
	EINTERNAL     = "internal"
	EINVALID      = "invalid"
	ENOTFOUND     = "not_found"
	EUNAUTHORIZED = "unauthorized"
)

// Error represents an application-specific error. Its Message is safe to
// show to the client, everything else that is not an *Error is not.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface. Not used by the application otherwise.
func (e *Error) Error() string {
	return fmt.Sprintf("app error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Invalid joins a list of validation failures into a single EINVALID error.
// It returns nil if msgs is empty.
func Invalid(msgs []string) error {
	if len(msgs) == 0 {
		return nil
	}
	return &Error{
		Code:    EINVALID,
		Message: strings.Join(msgs, ", "),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Common errors returned by more than one service.
var (
	IdInvalid         = Errorf(EINVALID, "The id is invalid.")
	UserIdValid       = Errorf(EUNAUTHORIZED, "Unauthenticated.")
	InvalidCredential = Errorf(EUNAUTHORIZED, "Invalid credentials")
)

// codes maps application error codes to http status codes.
var codes = map[string]int{
	ECONFLICT:     http.StatusBadRequest,
	EINVALID:      http.StatusUnprocessableEntity,
	ENOTFOUND:     http.StatusNotFound,
	EUNAUTHORIZED: http.StatusUnauthorized,
	EINTERNAL:     http.StatusInternalServerError,
}

// ErrorStatusCode returns the http status code for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// envelope is the json body written for failed requests.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ReturnError writes the error to the response as a json envelope with the
// status code belonging to the error's code. Internal errors are logged.
func ReturnError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := ErrorCode(err), ErrorMessage(err)
	if code == EINTERNAL {
		LogError(r, err)
		message = "Internal error."
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ErrorStatusCode(code))
	if err := json.NewEncoder(w).Encode(&envelope{Status: "error", Message: message}); err != nil {
		LogError(r, err)
	}
}

// LogError logs an error along with the request it occurred in.
func LogError(r *http.Request, err error) {
	log.Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request failed")
}
