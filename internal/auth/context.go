package auth

import (
	"context"

	"github.com/mindlog/mindlog/internal/model"
)

type contextKey string

const principalContextKey contextKey = "principal"

// ContextWithPrincipal attaches the authenticated identity to ctx.
func ContextWithPrincipal(ctx context.Context, p *model.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext returns the authenticated identity, or nil.
func PrincipalFromContext(ctx context.Context) *model.Principal {
	p, ok := ctx.Value(principalContextKey).(*model.Principal)
	if !ok {
		return nil
	}
	return p
}

// MustPrincipal panics when the credentials middleware did not run.
func MustPrincipal(ctx context.Context) *model.Principal {
	p := PrincipalFromContext(ctx)
	if p == nil {
		panic("principal not found - ensure credentials middleware is applied")
	}
	return p
}

// UserIDFromContext returns the authenticated user id, or "".
func UserIDFromContext(ctx context.Context) string {
	if p := PrincipalFromContext(ctx); p != nil {
		return p.UserID
	}
	return ""
}
