package core

import (
	"context"
	"slices"
)

type contextKey string

const ctxKeyIdentity contextKey = "identity"

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID string
	Roles  []string
}

// HasAnyRole reports whether the identity holds at least one of roles.
func (i Identity) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(i.Roles, r) {
			return true
		}
	}
	return false
}

// ContextWithIdentity attaches the caller's identity to ctx.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// IdentityFromContext returns the identity stored by ContextWithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(Identity)
	return id, ok && id.UserID != ""
}

// IdentityProvider resolves who is calling.
type IdentityProvider interface {
	Current(ctx context.Context) (Identity, error)
}

// ContextIdentity reads the identity the web layer put on the request context.
type ContextIdentity struct{}

// Current returns the context identity or ErrUnauthenticated.
func (ContextIdentity) Current(ctx context.Context) (Identity, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return Identity{}, ErrUnauthenticated
	}
	return id, nil
}

// StaticIdentity always returns the same identity. Useful in tests and tools.
type StaticIdentity Identity

// Current returns the fixed identity.
func (s StaticIdentity) Current(context.Context) (Identity, error) {
	return Identity(s), nil
}
