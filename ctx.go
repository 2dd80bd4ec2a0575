package heritage

import (
	"context"
)

type contextKey string

const (
	userContextKey  contextKey = "heritage:user"
	tokenContextKey contextKey = "heritage:token"
)

// LocalsUserKey is where guards stash the resolved user in fiber's
// per-request locals.
const LocalsUserKey = "current_user"

// LocalsTokenKey holds the raw bearer value for the request, mostly so
// logout can revoke the exact credential that authenticated it.
const LocalsTokenKey = "current_token"

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext retrieves the authenticated user, if any.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// WithToken returns a context carrying the raw bearer value.
func WithToken(ctx context.Context, raw string) context.Context {
	return context.WithValue(ctx, tokenContextKey, raw)
}

// TokenFromContext retrieves the raw bearer value, if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	raw, ok := ctx.Value(tokenContextKey).(string)
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}
