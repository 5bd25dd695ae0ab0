package http

import (
	"encoding/json"
	"net/http"

	"blogApi/errs"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// envelope is the json body of every api response.
type envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// writeJSON writes env with the given status code.
func writeJSON(w http.ResponseWriter, r *http.Request, code int, env *envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		errs.LogError(r, err)
	}
}

// success writes a successful response carrying message and data, either of which may be empty.
func success(w http.ResponseWriter, r *http.Request, code int, message string, data interface{}) {
	writeJSON(w, r, code, &envelope{Status: statusSuccess, Message: message, Data: data})
}
