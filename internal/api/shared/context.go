package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/skydeals/skydeals-api/internal/domain"
)

// ContextKey is the private type for request-context values.
type ContextKey string

const (
	// PrincipalContextKey carries the authenticated principal resolved by
	// the authentication guard.
	PrincipalContextKey ContextKey = "principal"

	// TraceIDKey carries the per-request trace ID.
	TraceIDKey ContextKey = "traceID"
)

// traceIDLength is the number of random bytes in a trace ID.
const traceIDLength = 16

// SetTraceID adds a fresh trace ID to the context for correlating logs
// and error responses.
func SetTraceID(ctx context.Context) context.Context {
	b := make([]byte, traceIDLength)
	_, _ = rand.Read(b)
	return context.WithValue(ctx, TraceIDKey, hex.EncodeToString(b))
}

// GetTraceID retrieves the trace ID from the context, or "" if unset.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// WithPrincipal returns a context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, PrincipalContextKey, user)
}

// PrincipalFrom retrieves the authenticated principal from the context.
// The second return value reports whether a principal was present.
func PrincipalFrom(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(PrincipalContextKey).(*domain.User)
	return user, ok
}
