package crud

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"hash"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
	"gorm.io/gorm"

	"blogApi/domain"
	"blogApi/errs"
)

// AccessTokenBytes is the number of random bytes an access token is made of.
const AccessTokenBytes = 32

// AccessTokenService issues opaque bearer tokens and resolves them to users.
// Tokens are stored as HMACs, so a leaked tokens table can't be replayed.
// Resolved users are cached in memory by token hash; revoking a token evicts it.
// It implements the domain.AccessTokenService interface.
type AccessTokenService struct {
	tokenValidator
}

// tokenValidator hashes and checks incoming tokens before passing them on to tokenGorm.
type tokenValidator struct {
	hmac  HMAC
	cache *bigcache.BigCache
	tokenGorm
}

// tokenGorm runs CRUD operations on the access_tokens table.
type tokenGorm struct {
	db *gorm.DB
}

// NewAccessTokenService returns an instance of AccessTokenService. A nil cache disables caching.
func NewAccessTokenService(db *gorm.DB, hmacKey string, cache *bigcache.BigCache) *AccessTokenService {
	return &AccessTokenService{
		tokenValidator{
			hmac:  newHMAC(hmacKey),
			cache: cache,
			tokenGorm: tokenGorm{
				db: db,
			},
		},
	}
}

// NewTokenCache creates the in-memory cache used by AccessTokenService.
func NewTokenCache(ttl time.Duration) (*bigcache.BigCache, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Verbose = false
	return bigcache.New(context.Background(), cfg)
}

// Ensure the AccessTokenService struct properly implements the domain.AccessTokenService interface.
var _ domain.AccessTokenService = &AccessTokenService{}

// Issue creates a new token for the user. The plain token is only ever
// available on the returned object, the database only knows its hash.
func (tv *tokenValidator) Issue(ctx context.Context, userID int) (*domain.AccessToken, error) {
	if userID <= 0 {
		return nil, errs.UserIdValid
	}
	token, err := bytesToString(AccessTokenBytes)
	if err != nil {
		return nil, err
	}
	at := &domain.AccessToken{
		UserID:    userID,
		Token:     token,
		TokenHash: tv.hmac.hash(token),
	}
	if err := tv.tokenGorm.Create(ctx, at); err != nil {
		return nil, err
	}
	return at, nil
}

// UserByToken resolves a plain token to the user it was issued to.
// Unknown, malformed and revoked tokens all return EUNAUTHORIZED.
func (tv *tokenValidator) UserByToken(ctx context.Context, token string) (*domain.User, error) {
	if err := tokenMinBytes(token); err != nil {
		return nil, err
	}
	tokenHash := tv.hmac.hash(token)
	if user, ok := tv.cached(tokenHash); ok {
		return user, nil
	}
	user, err := tv.tokenGorm.UserByHash(ctx, tokenHash)
	if err != nil {
		return nil, err
	}
	tv.store(tokenHash, user)
	return user, nil
}

// Revoke deletes the token, after which it can't be used anymore.
func (tv *tokenValidator) Revoke(ctx context.Context, token string) error {
	if err := tokenMinBytes(token); err != nil {
		return err
	}
	tokenHash := tv.hmac.hash(token)
	if tv.cache != nil {
		tv.cache.Delete(tokenHash)
	}
	return tv.tokenGorm.Delete(ctx, tokenHash)
}

func (tv *tokenValidator) cached(tokenHash string) (*domain.User, bool) {
	if tv.cache == nil {
		return nil, false
	}
	b, err := tv.cache.Get(tokenHash)
	if err != nil {
		return nil, false
	}
	var user domain.User
	if err := json.Unmarshal(b, &user); err != nil {
		return nil, false
	}
	return &user, true
}

func (tv *tokenValidator) store(tokenHash string, user *domain.User) {
	if tv.cache == nil {
		return
	}
	b, err := json.Marshal(user)
	if err != nil {
		return
	}
	tv.cache.Set(tokenHash, b)
}

// tokenMinBytes makes sure that a token is valid base64 of the expected length.
func tokenMinBytes(token string) error {
	n, err := nBytes(token)
	if err != nil || n < AccessTokenBytes {
		return errs.Errorf(errs.EUNAUTHORIZED, "Unauthenticated.")
	}
	return nil
}

// UserByHash retrieves the user belonging to a stored token hash.
func (tg *tokenGorm) UserByHash(ctx context.Context, tokenHash string) (*domain.User, error) {
	var at domain.AccessToken
	err := tg.db.WithContext(ctx).
		Preload("User").
		Where("token_hash = ?", tokenHash).
		First(&at).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.EUNAUTHORIZED, "Unauthenticated.")
		}
		return nil, err
	}
	return &at.User, nil
}

// Create stores a new token record.
func (tg *tokenGorm) Create(ctx context.Context, at *domain.AccessToken) error {
	return tg.db.WithContext(ctx).Create(at).Error
}

// Delete permanently deletes the token record with the given hash.
func (tg *tokenGorm) Delete(ctx context.Context, tokenHash string) error {
	return tg.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		Delete(&domain.AccessToken{}).Error
}

// HMAC is a wrapper around the crypto/hmac package making it easier to use.
// hash.Hash is not safe for concurrent use, hence the mutex.
type HMAC struct {
	mu   *sync.Mutex
	hmac hash.Hash
}

// newHMAC creates and returns a new HMAC object.
func newHMAC(key string) HMAC {
	h := hmac.New(sha256.New, []byte(key))
	return HMAC{
		mu:   &sync.Mutex{},
		hmac: h,
	}
}

// hash hashes an input string using HMAC with the secret key
// provided when the HMAC object was created.
func (h HMAC) hash(input string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hmac.Reset()
	h.hmac.Write([]byte(input))
	b := h.hmac.Sum(nil)
	return base64.URLEncoding.EncodeToString(b)
}

// randomBytes generates n random bytes or returns an error. It uses the
// crypto/rand package, so it can be used for things like access tokens.
func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// nBytes returns the number of bytes used in a base64 URL encoded string.
func nBytes(base64String string) (int, error) {
	b, err := base64.URLEncoding.DecodeString(base64String)
	if err != nil {
		return -1, err
	}
	return len(b), nil
}

// bytesToString generates a byte slice of size nBytes and then returns a
// string that is the base64 URL encoded version of that byte slice.
func bytesToString(nBytes int) (string, error) {
	b, err := randomBytes(nBytes)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
