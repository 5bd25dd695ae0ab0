package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"blogApi/auth"
)

func TestRegister(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp := doJSON(t, srv, "POST", "/register", "", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "password123",
	})
	wantStatus(t, resp, http.StatusCreated)
	if resp.Status != "success" {
		t.Errorf("status = %q", resp.Status)
	}
	if strings.Contains(resp.Body, "password") {
		t.Errorf("password leaked: %s", resp.Body)
	}
	var data struct {
		User struct {
			ID    int    `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
		TokenType string `json:"token_type"`
	}
	resp.decode(t, &data)
	if data.User.ID == 0 || data.User.Email != "alice@example.com" || data.TokenType != "Bearer" {
		t.Errorf("data = %+v", data)
	}

	// Same email again.
	resp = doJSON(t, srv, "POST", "/register", "", map[string]string{
		"name": "Alice 2", "email": "alice@example.com", "password": "password123",
	})
	wantStatus(t, resp, http.StatusBadRequest)
	if resp.Message != "The email has already been taken." {
		t.Errorf("message = %q", resp.Message)
	}

	resp = doJSON(t, srv, "POST", "/register", "", map[string]string{"name": "Bob"})
	wantStatus(t, resp, http.StatusUnprocessableEntity)
	if resp.Message != "The email field is required., The password field is required." {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestRegisterInvalidJSON(t *testing.T) {
	srv := newTestServer(t, Options{})
	req := httptest.NewRequest("POST", "/register", strings.NewReader("{not json"))
	resp := serve(t, srv, req)
	wantStatus(t, resp, http.StatusUnprocessableEntity)
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	srv := newTestServer(t, Options{})
	login(t, srv, "alice@example.com")

	wrongPassword := doJSON(t, srv, "POST", "/login", "", map[string]string{
		"email": "alice@example.com", "password": "not-the-password",
	})
	unknownEmail := doJSON(t, srv, "POST", "/login", "", map[string]string{
		"email": "nobody@example.com", "password": "password123",
	})
	wantStatus(t, wrongPassword, http.StatusUnauthorized)
	if diff := cmp.Diff(wrongPassword.Body, unknownEmail.Body); diff != "" {
		t.Errorf("responses differ (-wrong password +unknown email):\n%s", diff)
	}
	if wrongPassword.Message != "Invalid credentials" {
		t.Errorf("message = %q", wrongPassword.Message)
	}
}

func TestAuthenticatedUserAndLogout(t *testing.T) {
	srv := newTestServer(t, Options{})
	id, token := login(t, srv, "alice@example.com")

	resp := doJSON(t, srv, "GET", "/user", token, nil)
	wantStatus(t, resp, http.StatusOK)
	var user struct {
		ID    int    `json:"id"`
		Email string `json:"email"`
	}
	resp.decode(t, &user)
	if user.ID != id || user.Email != "alice@example.com" {
		t.Errorf("user = %+v", user)
	}

	resp = doJSON(t, srv, "POST", "/logout", token, nil)
	wantStatus(t, resp, http.StatusOK)

	resp = doJSON(t, srv, "GET", "/user", token, nil)
	wantStatus(t, resp, http.StatusUnauthorized)
}

func TestRequireAuth(t *testing.T) {
	srv := newTestServer(t, Options{})

	for _, token := range []string{"", "garbage"} {
		resp := doJSON(t, srv, "GET", "/blogs", token, nil)
		wantStatus(t, resp, http.StatusUnauthorized)
		if resp.Status != "error" || resp.Message != "Unauthenticated." {
			t.Errorf("response = %+v", resp)
		}
	}
}

func TestClientToken(t *testing.T) {
	srv := newTestServer(t, Options{ClientToken: "client-secret"})
	body := `{"name":"Alice","email":"alice@example.com","password":"password123"}`

	req := httptest.NewRequest("POST", "/register", strings.NewReader(body))
	resp := serve(t, srv, req)
	wantStatus(t, resp, http.StatusUnauthorized)

	req = httptest.NewRequest("POST", "/register", strings.NewReader(body))
	req.Header.Set(auth.ClientTokenHeader, "wrong")
	resp = serve(t, srv, req)
	wantStatus(t, resp, http.StatusUnauthorized)

	req = httptest.NewRequest("POST", "/register", strings.NewReader(body))
	req.Header.Set(auth.ClientTokenHeader, "client-secret")
	resp = serve(t, srv, req)
	wantStatus(t, resp, http.StatusCreated)
}
