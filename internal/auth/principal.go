// Package auth provides credential verification and the authenticated
// principal attached to request contexts.
package auth

import (
	"context"
)

// Principal represents an authenticated caller: a username and the set
// of role strings granted to it. Principals are produced transiently
// per request and never persisted.
type Principal struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// HasRole checks if the principal holds a specific role.
func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// principalContextKey is the context key type for the principal.
type principalContextKey struct{}

// ContextWithPrincipal adds a principal to the context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from the context.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*Principal)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}
