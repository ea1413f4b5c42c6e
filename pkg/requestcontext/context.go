// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them, services and handlers read
// them, and tests inject them without touching net/http.
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	userIDKey      struct{}
	rolesKey       struct{}
	issuerKey      struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// WithUserID records the authenticated subject on the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserID returns the authenticated subject, or "" when the request carried no
// identity.
func UserID(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey{}).(string)
	return v
}

// WithAuthorities records the caller's granted authorities on the context.
func WithAuthorities(ctx context.Context, authorities []string) context.Context {
	return context.WithValue(ctx, rolesKey{}, authorities)
}

// Authorities returns the caller's granted authorities, or nil.
func Authorities(ctx context.Context) []string {
	v, _ := ctx.Value(rolesKey{}).([]string)
	return v
}

// WithIssuer records the token issuer on the context.
func WithIssuer(ctx context.Context, issuer string) context.Context {
	return context.WithValue(ctx, issuerKey{}, issuer)
}

// Issuer returns the token issuer, or "".
func Issuer(ctx context.Context) string {
	v, _ := ctx.Value(issuerKey{}).(string)
	return v
}

// WithRequestID records the request correlation id on the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the request correlation id, or "".
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// WithTime pins the request time on the context. Tests use this to make
// time-derived values (such as evidence storage keys) deterministic.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Now returns the pinned request time, falling back to the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}
