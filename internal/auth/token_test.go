package auth

import (
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

func parse(secret, issuer, tok string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer))
	return claims, err
}

func TestEmptySecretNoToken(t *testing.T) {
	s := NewSigner("", "proxy-console", "console", 5)
	tok, err := s.Token()
	if err != nil || tok != "" {
		t.Fatalf("expected empty token, got %q %v", tok, err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	s := NewSigner("s3cret", "proxy-console", "console", 5)
	tok, err := s.Token()
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := parse("s3cret", "proxy-console", tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "console" || claims.Role != "admin" || claims.Issuer != "proxy-console" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestExpiredToken(t *testing.T) {
	s := NewSigner("s3cret", "proxy-console", "console", 1)
	s.now = func() time.Time { return time.Now().Add(-time.Hour) }
	tok, err := s.Token()
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := parse("s3cret", "proxy-console", tok); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected expired, got %v", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	tok, _ := NewSigner("a", "proxy-console", "console", 5).Token()
	if _, err := parse("b", "proxy-console", tok); err == nil {
		t.Fatal("expected signature error")
	}
}
