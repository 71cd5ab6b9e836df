package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"edge-authorizer/internal/auth"
	"edge-authorizer/internal/authorizer"
	"edge-authorizer/internal/invocation"
	"edge-authorizer/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Authorizer is the decision stage the gateway consults on every request.
type Authorizer interface {
	Authorize(ctx context.Context, inv invocation.Context, req authorizer.Request) (authorizer.Policy, error)
}

// ResourceFunc names the resource a request is trying to invoke.
type ResourceFunc func(c *gin.Context) string

// MethodARN builds arn:edge:execute-api:<region>:<stage>/<METHOD><path>.
// The path is the route's *path wildcard when present, the raw URL path otherwise.
func MethodARN(region, stage string) ResourceFunc {
	return func(c *gin.Context) string {
		return fmt.Sprintf("arn:edge:execute-api:%s:%s/%s%s", region, stage, c.Request.Method, RequestPath(c))
	}
}

// RequestPath is the path the downstream target sees.
func RequestPath(c *gin.Context) string {
	if p := c.Param("path"); p != "" {
		return p
	}
	return c.Request.URL.Path
}

// Authorize runs the authorizer stage in front of the handlers that follow it.
// The authorizer runs under its own function identity; the policy must allow
// the request's resource or the call stops with 403. On success the authorizer
// context is stored on the request for the target stage.
func Authorize(a Authorizer, id invocation.Identity, resource ResourceFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if a == nil || resource == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "authorizer unavailable"})
			return
		}

		rid := logger.RequestID(c)
		if rid == "" {
			rid = invocation.FromGin(c).RequestID
		}
		arn := resource(c)

		policy, err := a.Authorize(c.Request.Context(), id.For(rid), authorizer.Request{
			ResourceIdentifier: arn,
			AuthType:           authorizer.DefaultAuthType,
		})
		switch {
		case errors.Is(err, authorizer.ErrMalformedRequest):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "malformed authorization request"})
			return
		case err != nil:
			logger.FromGin(c).Error("authorizer failed", "err", err, "resource", arn)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		if !policy.Allows(arn) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		authz := policy.AuthorizerContext()
		c.Request = c.Request.WithContext(auth.WithAuthorizerContext(c.Request.Context(), authz))
		c.Set("principal_id", authz.PrincipalID())

		c.Next()
	}
}
