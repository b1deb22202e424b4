package auth

import (
	"context"

	"example.com/sleepbaby/internal/domain"
)

type contextKey string

const claimsKey contextKey = "sleepbaby-auth-claims"

// WithClaims stores claims on the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// FromContext retrieves claims stored by WithClaims.
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// Resolver adapts context claims to the domain identity contract. It reads the
// context on every call, so a refreshed session is picked up immediately.
type Resolver struct{}

// CurrentCaller returns the identity of the authenticated caller, if any.
func (Resolver) CurrentCaller(ctx context.Context) (domain.Identity, bool) {
	claims, ok := FromContext(ctx)
	if !ok || claims.Subject == "" {
		return domain.Identity{}, false
	}
	return domain.Identity{UserID: claims.Subject}, true
}
