package crud

import (
	"context"
	"testing"
	"time"

	"blogApi/errs"
)

func TestAccessToken(t *testing.T) {
	cache, err := NewTokenCache(time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	for name, s := range map[string]*Services{
		"uncached": newTestServices(t),
		"cached": func() *Services {
			s := newTestServices(t)
			s.Token = NewAccessTokenService(s.db, "test-hmac-key", cache)
			return s
		}(),
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			alice := mustCreateUser(t, s, "alice@example.com")

			at, err := s.Token.Issue(ctx, alice.ID)
			if err != nil {
				t.Fatal(err)
			}
			if at.Token == "" || at.TokenHash == at.Token {
				t.Fatalf("token = %q, hash = %q", at.Token, at.TokenHash)
			}

			// Twice, so the second lookup may come from the cache.
			for i := 0; i < 2; i++ {
				u, err := s.Token.UserByToken(ctx, at.Token)
				if err != nil {
					t.Fatal(err)
				}
				if u.ID != alice.ID || u.Email != "alice@example.com" {
					t.Errorf("user = %+v", u)
				}
			}

			if err := s.Token.Revoke(ctx, at.Token); err != nil {
				t.Fatal(err)
			}
			_, err = s.Token.UserByToken(ctx, at.Token)
			wantCode(t, err, errs.EUNAUTHORIZED)
		})
	}
}

func TestAccessTokenInvalid(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	for _, token := range []string{"", "short", "not base64 at all!!", "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="} {
		_, err := s.Token.UserByToken(ctx, token)
		wantCode(t, err, errs.EUNAUTHORIZED)
	}

	_, err := s.Token.Issue(ctx, 0)
	wantCode(t, err, errs.EUNAUTHORIZED)
}
