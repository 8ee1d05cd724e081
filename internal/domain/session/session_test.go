package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"unimarket/internal/app/dto"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "1"}
	if !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestNewRequiresBothHalves(t *testing.T) {
	user := dto.User{ID: 7, Email: "alice@unimarket.dev"}

	if _, err := New(user, "   ", false); !errors.Is(err, ErrTokenRequired) {
		t.Fatalf("got %v, want ErrTokenRequired", err)
	}
	if _, err := New(dto.User{}, "sometoken", false); !errors.Is(err, ErrUserRequired) {
		t.Fatalf("got %v, want ErrUserRequired", err)
	}

	sess, err := New(user, " sometoken ", true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if sess.Token != "sometoken" {
		t.Fatalf("got token=%q, want trimmed", sess.Token)
	}
	if !sess.OAuth || sess.User.ID != 7 {
		t.Fatalf("session fields lost: %+v", sess)
	}
}

func TestNewDerivesExpiryFromJWT(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	sess, err := New(dto.User{ID: 1}, signedToken(t, exp), false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !sess.ExpiresAt.Equal(exp.UTC()) {
		t.Fatalf("got ExpiresAt=%v, want %v", sess.ExpiresAt, exp.UTC())
	}
	if sess.Expired(time.Now()) {
		t.Fatal("fresh token must not report expired")
	}
	if !sess.Expired(exp.Add(time.Minute)) {
		t.Fatal("token past its exp claim must report expired")
	}
}

func TestOpaqueTokenNeverExpires(t *testing.T) {
	sess, err := New(dto.User{ID: 1}, "not-a-jwt", false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !sess.ExpiresAt.IsZero() {
		t.Fatalf("got ExpiresAt=%v for an opaque token, want zero", sess.ExpiresAt)
	}
	if sess.Expired(time.Now().Add(1000 * time.Hour)) {
		t.Fatal("opaque tokens are the server's problem, never locally expired")
	}
}

func TestJWTWithoutExpClaim(t *testing.T) {
	sess, err := New(dto.User{ID: 1}, signedToken(t, time.Time{}), false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !sess.ExpiresAt.IsZero() || sess.Expired(time.Now()) {
		t.Fatalf("token without exp must not expire locally, got %v", sess.ExpiresAt)
	}
}

func TestNilSessionNotExpired(t *testing.T) {
	var sess *Session
	if sess.Expired(time.Now()) {
		t.Fatal("nil session must not report expired")
	}
}
