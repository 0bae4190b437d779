package auth

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Signer mints short-lived HS256 tokens for the admin API. It satisfies
// network.TokenSource.
type Signer struct {
	Secret  []byte
	Issuer  string
	Subject string
	ExpMin  int

	now func() time.Time
}

func NewSigner(secret, issuer, subject string, expMin int) *Signer {
	return &Signer{Secret: []byte(secret), Issuer: issuer, Subject: subject, ExpMin: expMin, now: time.Now}
}

// Token signs a fresh token on every call; an empty secret yields "".
func (s *Signer) Token() (string, error) {
	if len(s.Secret) == 0 {
		return "", nil
	}
	now := time.Now()
	if s.now != nil {
		now = s.now()
	}
	exp := now.Add(time.Duration(s.ExpMin) * time.Minute)
	claims := Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.Issuer,
			Subject:   s.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.Secret)
}
