// Package session holds the explicit {username, token} context passed to
// every component that talks to the backend.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotAuthenticated = errors.New("not logged in: run `ladder login` first")

type Session struct {
	Username string
	Token    string
}

func New(username, token string) Session {
	return Session{
		Username: strings.TrimSpace(username),
		Token:    strings.TrimSpace(token),
	}
}

// IsAuthenticated requires a username and a token. Tokens that decode as a
// JWT carrying an expiry must not be expired; opaque tokens are accepted as
// is since only the backend can validate them.
func (s Session) IsAuthenticated() bool {
	return s.isAuthenticatedAt(time.Now())
}

func (s Session) isAuthenticatedAt(now time.Time) bool {
	if s.Username == "" || s.Token == "" {
		return false
	}
	expiresAt, ok := tokenExpiry(s.Token)
	if !ok {
		return true
	}
	return now.Before(expiresAt)
}

// ExpiresAt reports the token expiry when the token is a JWT with exp.
func (s Session) ExpiresAt() (time.Time, bool) {
	return tokenExpiry(s.Token)
}

func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Guard is evaluated once before any command that needs the backend.
func Guard(s Session) error {
	if !s.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

// Store persists a session between invocations.
type Store interface {
	Save(ctx context.Context, s Session) error
	Load(ctx context.Context) (Session, error)
	Clear(ctx context.Context) error
}
