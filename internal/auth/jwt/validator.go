package jwt

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/doanvh/studentsvc/internal/auth"
)

// Validator verifies a token and returns the principal it is bound to.
type Validator interface {
	Validate(tokenString string) (*auth.Principal, error)
}

// hs256Validator implements Validator with a shared HS256 secret.
type hs256Validator struct {
	secret []byte
	issuer string
}

// NewValidator creates a new token validator from the given
// configuration.
func NewValidator(cfg Config) (Validator, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt: signing secret is required")
	}
	return &hs256Validator{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}, nil
}

// Validate implements Validator. Only HS256 is accepted; expiry and
// issuer (when configured) are enforced.
func (v *hs256Validator) Validate(tokenString string) (*auth.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("jwt: token verification failed: %w", err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("jwt: token has no subject")
	}

	return &auth.Principal{
		Username: claims.Subject,
		Roles:    claims.Roles,
	}, nil
}
