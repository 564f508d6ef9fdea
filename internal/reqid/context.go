// Package reqid carries a client request id through request contexts so
// retries of one logical request share the same id.
package reqid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header carrying the request id.
const Header = "client-request-id"

// idKey is the unexported context key for the request id.
type idKey struct{}

// WithRequestID returns a new context with the request id stored.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey{}, id)
}

// FromContext retrieves the request id if present.
// Returns ("", false) if no request id is set.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(idKey{}).(string)
	return id, ok && id != ""
}

// Ensure returns the request id stored in ctx, generating and storing a
// new random one when none is present.
func Ensure(ctx context.Context) (context.Context, string) {
	if id, ok := FromContext(ctx); ok {
		return ctx, id
	}
	id := uuid.NewString()
	return WithRequestID(ctx, id), id
}
