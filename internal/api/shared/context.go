// Package shared holds the request context keys, request decoding and
// response writers used by the API handlers and middleware.
package shared

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is the type of the request context keys set by this package.
type ContextKey string

const (
	UserIDContextKey ContextKey = "userID"
	TraceIDKey       ContextKey = "traceID"
)

// SetTraceID adds a fresh trace ID to the context: 32 lowercase hex
// characters taken from a random UUID.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, newTraceID())
}

// GetTraceID returns the request's trace ID, or "".
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

// WithUserID marks the request as authenticated by userID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}

// UserIDFromContext returns the authenticated user ID. The nil UUID counts
// as unauthenticated.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

func newTraceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
