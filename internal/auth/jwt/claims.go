// Package jwt mints and validates the HS256-signed tokens issued by
// the login endpoint.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the claims carried by a service token: the registered
// set plus the granted role names.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

// Config holds token configuration.
type Config struct {
	// Secret is the HS256 signing secret. Required.
	Secret string

	// Issuer is the iss claim stamped on minted tokens.
	Issuer string

	// TTL is the token lifetime.
	TTL time.Duration
}

// DefaultTTL is the token lifetime used when none is configured.
const DefaultTTL = time.Hour
