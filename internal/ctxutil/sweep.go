// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// SweepKey is the context key for the running sweep's ID.
type SweepKey struct{}

// WithSweepID returns a context with the sweep ID embedded.
func WithSweepID(ctx context.Context, sweepID string) context.Context {
	return context.WithValue(ctx, SweepKey{}, sweepID)
}

// SweepIDFromContext returns the sweep ID from context, or empty string if not set.
func SweepIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(SweepKey{}).(string); ok {
		return v
	}
	return ""
}
