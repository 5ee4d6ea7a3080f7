// Package auth carries the authenticated caller identity on the request
// context. Ownership checks always use this explicit identity, never ambient
// state.
package auth

import "context"

type contextKey struct{}

type Caller struct {
	UserID    int64
	SessionID string
}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

func FromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(contextKey{}).(Caller)
	return c, ok
}

// UserID returns the authenticated caller's user id, or 0 if none.
func UserID(ctx context.Context) int64 {
	c, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return c.UserID
}
