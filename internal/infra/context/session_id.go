package context

import (
	"context"
)

const contextKeySessionID = contextKey("sessionID")

// SessionIDFromContext extracts the browser session ID from the context.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(contextKeySessionID).(string)

	return sessionID, ok && sessionID != ""
}

// WithSessionID creates a new context carrying the browser session ID that
// keys the persisted token and flash messages.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, contextKeySessionID, sessionID)
}
