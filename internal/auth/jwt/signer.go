package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/doanvh/studentsvc/internal/auth"
)

// Signer mints signed tokens bound to an authenticated principal.
type Signer interface {
	Mint(principal *auth.Principal) (string, error)
}

// hs256Signer implements Signer with a shared HS256 secret.
type hs256Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a new token signer from the given configuration.
func NewSigner(cfg Config) (Signer, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt: signing secret is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &hs256Signer{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Mint implements Signer.
func (s *hs256Signer) Mint(principal *auth.Principal) (string, error) {
	if principal == nil || principal.Username == "" {
		return "", fmt.Errorf("jwt: principal with username is required")
	}

	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.Username,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Roles: principal.Roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: signing failed: %w", err)
	}
	return signed, nil
}
