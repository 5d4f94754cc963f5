package authz

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnauthorized indicates the request does not carry the required
// principal's authority.
var ErrUnauthorized = errors.New("unauthorized")

type contextKey struct{}

// Authorizer is the authorization oracle: it asserts that the current request
// acts with the authority of the given principal, and fails the whole
// operation otherwise.
type Authorizer interface {
	RequireAuth(ctx context.Context, principal string) error
}

// WithPrincipal stamps the authenticated principal onto the context. The HTTP
// layer calls this after verifying the bearer token.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, contextKey{}, principal)
}

// PrincipalFrom extracts the authenticated principal, if any.
func PrincipalFrom(ctx context.Context) (string, bool) {
	principal, ok := ctx.Value(contextKey{}).(string)
	return principal, ok && principal != ""
}

// ContextAuthorizer grants authority when the context's authenticated
// principal matches the one being asserted.
type ContextAuthorizer struct{}

// RequireAuth checks the asserted principal against the authenticated one.
func (ContextAuthorizer) RequireAuth(ctx context.Context, principal string) error {
	authenticated, ok := PrincipalFrom(ctx)
	if !ok {
		return fmt.Errorf("%w: no authenticated principal", ErrUnauthorized)
	}
	if authenticated != principal {
		return fmt.Errorf("%w: not acting as %s", ErrUnauthorized, principal)
	}
	return nil
}

// AllowAll grants every assertion. For tests and trusted internal callers.
type AllowAll struct{}

// RequireAuth always succeeds.
func (AllowAll) RequireAuth(context.Context, string) error { return nil }

// Deny rejects every assertion. For tests.
type Deny struct{}

// RequireAuth always fails.
func (Deny) RequireAuth(_ context.Context, principal string) error {
	return fmt.Errorf("%w: not acting as %s", ErrUnauthorized, principal)
}
