package auth

import (
	"context"

	"edge-authorizer/internal/authorizer"
)

type ctxKey int

const ctxAuthorizer ctxKey = iota

// WithAuthorizerContext stores the authorizer context for downstream handlers.
func WithAuthorizerContext(ctx context.Context, authz authorizer.Context) context.Context {
	return context.WithValue(ctx, ctxAuthorizer, authz)
}

// AuthorizerContext returns the stored authorizer context, or nil when none was set.
func AuthorizerContext(ctx context.Context) authorizer.Context {
	v, _ := ctx.Value(ctxAuthorizer).(authorizer.Context)
	return v
}
