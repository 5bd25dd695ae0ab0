package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReturnError(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"conflict", Errorf(ECONFLICT, "taken"), http.StatusBadRequest, "taken"},
		{"invalid", Errorf(EINVALID, "bad"), http.StatusUnprocessableEntity, "bad"},
		{"not found", Errorf(ENOTFOUND, "gone"), http.StatusNotFound, "gone"},
		{"unauthorized", InvalidCredential, http.StatusUnauthorized, "Invalid credentials"},
		{"wrapped", fmt.Errorf("context: %w", Errorf(ENOTFOUND, "gone")), http.StatusNotFound, "gone"},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError, "Internal error."},
		{"internal app error", Errorf(EINTERNAL, "secret detail"), http.StatusInternalServerError, "Internal error."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ReturnError(w, httptest.NewRequest("GET", "/", nil), tc.err)
			if w.Code != tc.status {
				t.Errorf("status = %d, want %d", w.Code, tc.status)
			}
			var got map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatal(err)
			}
			want := map[string]string{"status": "error", "message": tc.message}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInvalid(t *testing.T) {
	if err := Invalid(nil); err != nil {
		t.Errorf("Invalid(nil) = %v", err)
	}
	err := Invalid([]string{"a is required.", "b is required."})
	if ErrorCode(err) != EINVALID || ErrorMessage(err) != "a is required., b is required." {
		t.Errorf("Invalid = %v", err)
	}
}
