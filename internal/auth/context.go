package auth

import (
	"context"

	"github.com/sealdrop/sealdrop/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const identityContextKey contextKey = "identity"

// ContextWithIdentity adds the verified caller to the context.
func ContextWithIdentity(ctx context.Context, id *model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext retrieves the verified caller.
// Returns nil if the request was not authenticated.
func IdentityFromContext(ctx context.Context) *model.Identity {
	id, ok := ctx.Value(identityContextKey).(*model.Identity)
	if !ok {
		return nil
	}
	return id
}

// UserIDFromContext returns the caller's user ID, or empty string.
func UserIDFromContext(ctx context.Context) string {
	if id := IdentityFromContext(ctx); id != nil {
		return id.UserID
	}
	return ""
}
