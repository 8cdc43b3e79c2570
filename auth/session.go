package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kasuganosora/osupanel/cache"
	"github.com/kasuganosora/osupanel/config"
	"github.com/kasuganosora/osupanel/privilege"
)

// ErrInvalidSession is returned for tokens that are malformed, expired,
// signed with another key or revoked.
var ErrInvalidSession = errors.New("auth: invalid session")

const revokedPrefix = "session:revoked:"

// Session is the per-request view of the signed session cookie.
// Privileges is the mask at login time, for display only.
type Session struct {
	LoggedIn   bool                 `json:"logged_in"`
	AccountID  int64                `json:"account_id"`
	Username   string               `json:"username"`
	Privileges privilege.Privileges `json:"privileges"`
}

// Claims is the JWT payload of a session cookie.
type Claims struct {
	AccountID  int64                `json:"account_id"`
	Username   string               `json:"username"`
	Privileges privilege.Privileges `json:"privileges"`
	jwt.RegisteredClaims
}

// Session converts the claims to a logged-in Session.
func (c *Claims) Session() Session {
	return Session{
		LoggedIn:   true,
		AccountID:  c.AccountID,
		Username:   c.Username,
		Privileges: c.Privileges,
	}
}

// Sessions issues and validates session tokens signed with a stable secret,
// so sessions survive restarts.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	cache  cache.Cache
	now    func() time.Time
}

// NewSessions creates a Sessions from the security config.
func NewSessions(sec config.SecurityConfig, c cache.Cache) *Sessions {
	ttl := sec.SessionTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Sessions{secret: []byte(sec.SessionSecret), ttl: ttl, cache: c, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (s *Sessions) TTL() time.Duration { return s.ttl }

// Issue signs a token for id.
func (s *Sessions) Issue(id Identity) (string, error) {
	now := s.now()
	claims := &Claims{
		AccountID:  id.AccountID,
		Username:   id.Username,
		Privileges: id.Privileges,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse validates a token and checks it has not been revoked.
func (s *Sessions) Parse(ctx context.Context, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidSession
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidSession
	}
	revoked, err := s.cache.Exists(ctx, revokedPrefix+claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// Revoke blacklists the token until it would have expired anyway.
func (s *Sessions) Revoke(ctx context.Context, claims *Claims) error {
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if left := claims.ExpiresAt.Sub(s.now()); left > 0 {
			ttl = left
		}
	}
	return s.cache.Set(ctx, revokedPrefix+claims.ID, "1", ttl)
}
