package main

import (
	"net/http"

	"edge-authorizer/internal/auth"
	"edge-authorizer/internal/authorizer"
	"edge-authorizer/internal/gateway"
	"edge-authorizer/internal/httpapi"
	"edge-authorizer/internal/invocation"

	"github.com/gin-gonic/gin"
)

// routeDeps is everything registerRoutes needs; main builds it once.
type routeDeps struct {
	Handlers     httpapi.Handlers
	Engine       *authorizer.Engine
	Tokens       *auth.Manager
	AuthorizerID invocation.Identity
	TargetID     invocation.Identity
	Resource     gateway.ResourceFunc
	Metrics      http.Handler
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, d routeDeps) {
	h := d.Handlers

	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	v1 := r.Group("/v1")

	// Authorizer function.
	authzGroup := v1.Group("", invocation.Middleware(d.AuthorizerID))
	{
		authzGroup.POST("/authorize", h.Authorize)
	}

	// Target function, invoked directly or with a context token from /v1/authorize.
	targetGroup := v1.Group("", invocation.Middleware(d.TargetID))
	{
		targetGroup.POST("/invoke", h.Invoke)
		targetGroup.POST("/execute", h.Execute)
		targetGroup.Any("/target/*path", auth.OptionalContextToken(d.Tokens, h.Now), h.TargetPage)
	}

	// Full flow: the authorizer runs in front of the target on every request.
	gw := r.Group("/gateway", invocation.Middleware(d.TargetID))
	{
		gw.Any("/*path", gateway.Authorize(d.Engine, d.AuthorizerID, d.Resource), h.TargetPage)
	}
}
