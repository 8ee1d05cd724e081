package session

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"unimarket/internal/app/dto"
)

var (
	ErrTokenRequired = errors.New("session: token is required")
	ErrUserRequired  = errors.New("session: user is required")
)

// Session is the client-side authenticated state: the current user, the
// bearer token, and whether the account arrived through an OAuth provider.
// Invariant: token and user are set together or not at all; replacement is
// always atomic.
type Session struct {
	User      dto.User  `json:"user"`
	Token     string    `json:"token"`
	OAuth     bool      `json:"oauth"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// New validates the user/token pair and derives the expiry from the token's
// exp claim when the token is a parseable JWT. The signature is not checked
// here; the server remains the authority and 401 responses end the session.
func New(user dto.User, token string, oauth bool) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenRequired
	}
	if user.ID == 0 {
		return nil, ErrUserRequired
	}
	return &Session{
		User:      user,
		Token:     token,
		OAuth:     oauth,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: tokenExpiry(token),
	}, nil
}

// Expired reports whether the token's exp claim has passed. Tokens without
// a readable expiry never report expired; the server decides their fate.
func (s *Session) Expired(at time.Time) bool {
	if s == nil || s.ExpiresAt.IsZero() {
		return false
	}
	if at.IsZero() {
		at = time.Now()
	}
	return !s.ExpiresAt.After(at.UTC())
}

// Store persists the session between runs. Load returns (nil, nil) when no
// session is stored.
type Store interface {
	Load() (*Session, error)
	Save(session *Session) error
	Clear() error
}

func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time.UTC()
}
