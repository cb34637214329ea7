// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them, services and handlers read
// them, and neither side needs net/http for it.
package requestcontext

import (
	"context"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
)

type (
	retailerIDKey struct{}
	requestIDKey  struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyRetailerID = retailerIDKey{}
	ContextKeyRequestID  = requestIDKey{}
)

// RetailerID retrieves the authenticated retailer from the context. Returns
// the nil id if not set.
func RetailerID(ctx context.Context) domain.RetailerID {
	if id, ok := ctx.Value(ContextKeyRetailerID).(domain.RetailerID); ok {
		return id
	}
	return domain.RetailerID{}
}

// WithRetailerID injects an authenticated retailer into the context.
func WithRetailerID(ctx context.Context, id domain.RetailerID) context.Context {
	return context.WithValue(ctx, ContextKeyRetailerID, id)
}

// RequestID retrieves the HTTP request correlation id from the context.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects an HTTP request correlation id into the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, id)
}
