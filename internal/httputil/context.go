package httputil

import (
	"context"

	"bandstand/internal/domain/models"
)

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal stores the authenticated user on the request context.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the authenticated user, if any.
func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(models.Principal)
	return p, ok
}
