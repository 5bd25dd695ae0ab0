package domain

import (
	"context"
	"time"
)

// TokenType is returned to clients alongside issued access tokens.
const TokenType = "Bearer"

// AccessToken is an opaque bearer token bound to a User. Only the HMAC of the
// token is persisted; Token holds the plain value right after it was issued.
// Tokens don't expire, they stay valid until they are revoked.
type AccessToken struct {
	ID        int       `json:"-"`
	UserID    int       `json:"-" gorm:"notNull;index"`
	User      User      `json:"-"`
	Token     string    `json:"access_token" gorm:"-"`
	TokenHash string    `json:"-" gorm:"notNull;uniqueIndex"`
	CreatedAt time.Time `json:"issued_at"`
}

// AccessTokenService issues bearer tokens and resolves them back to users.
type AccessTokenService interface {
	Issue(ctx context.Context, userID int) (*AccessToken, error)
	UserByToken(ctx context.Context, token string) (*User, error)
	Revoke(ctx context.Context, token string) error
}
