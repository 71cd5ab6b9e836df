package invocation

import (
	"edge-authorizer/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const ginKey = "invocation"

// Middleware mints the invocation context for every request routed through it.
// The request id comes from logger.Middleware when it ran first.
func Middleware(id Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := logger.RequestID(c)
		if rid == "" {
			rid = uuid.NewString()
		}
		inv := id.For(rid)

		ctx := With(c.Request.Context(), inv)
		ctx = WithSourceIP(ctx, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Set(ginKey, inv)

		c.Next()
	}
}

// FromGin returns the invocation bound by Middleware. Without it, a fresh
// request id is minted so callers never see an empty context.
func FromGin(c *gin.Context) Context {
	if v, ok := c.Get(ginKey); ok {
		if inv, ok := v.(Context); ok {
			return inv
		}
	}
	if inv, ok := From(c.Request.Context()); ok {
		return inv
	}
	return Context{RequestID: uuid.NewString()}
}
