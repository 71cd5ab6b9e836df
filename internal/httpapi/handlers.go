package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"edge-authorizer/internal/auth"
	"edge-authorizer/internal/authorizer"
	"edge-authorizer/internal/gateway"
	"edge-authorizer/internal/invocation"
	"edge-authorizer/internal/target"
	"edge-authorizer/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Authorizer *authorizer.Engine
	Target     *target.Processor
	Tokens     *auth.Manager

	// Now is the clock used for context tokens; time.Now when nil.
	Now func() time.Time
}

func (h Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// --- Authorizer ---

// Authorize evaluates one authorization event and returns the policy document.
// The authorizer context is also handed back as a signed token for the target stage.
func (h Handlers) Authorize(c *gin.Context) {
	if h.Authorizer == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "authorizer not configured"})
		return
	}
	var req authorizer.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	policy, err := h.Authorizer.Authorize(c.Request.Context(), invocation.FromGin(c), req)
	if errors.Is(err, authorizer.ErrMalformedRequest) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "methodArn required"})
		return
	}
	if err != nil {
		logger.FromGin(c).Error("authorize failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if h.Tokens != nil {
		tok, err := h.Tokens.Issue(h.now(), policy.AuthorizerContext())
		if err != nil {
			logger.FromGin(c).Error("context token issuance failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
			return
		}
		c.Header(auth.HeaderAuthorizerContext, tok)
	}
	c.JSON(http.StatusOK, policy)
}

// --- Target ---

// proxyEvent is the proxy-integration event shape accepted by Invoke.
type proxyEvent struct {
	HTTPMethod     string         `json:"httpMethod"`
	Path           string         `json:"path"`
	Headers        target.Headers `json:"headers"`
	RequestContext struct {
		Identity struct {
			SourceIP string `json:"sourceIp"`
		} `json:"identity"`
		Authorizer map[string]any `json:"authorizer"`
	} `json:"requestContext"`
}

// Invoke runs the target stage on a proxy event and returns the proxy response as JSON.
func (h Handlers) Invoke(c *gin.Context) {
	if h.Target == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "target not configured"})
		return
	}
	var ev proxyEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	resp := h.Target.Process(c.Request.Context(), invocation.FromGin(c), target.Request{
		Method:   ev.HTTPMethod,
		Path:     ev.Path,
		SourceIP: ev.RequestContext.Identity.SourceIP,
		Headers:  ev.Headers,
	}, stringContext(ev.RequestContext.Authorizer))
	c.JSON(http.StatusOK, resp)
}

// TargetPage runs the target stage on the live HTTP request. The body is served
// as HTML unless the client asks for markdown or plain text.
func (h Handlers) TargetPage(c *gin.Context) {
	if h.Target == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "target not configured"})
		return
	}
	ctx := c.Request.Context()

	sourceIP := invocation.SourceIP(ctx)
	if sourceIP == "" {
		sourceIP = c.ClientIP()
	}
	resp := h.Target.Process(ctx, invocation.FromGin(c), target.Request{
		Method:   c.Request.Method,
		Path:     gateway.RequestPath(c),
		SourceIP: sourceIP,
		Headers:  target.FromHTTP(c.Request.Header),
	}, auth.AuthorizerContext(ctx))

	body := resp.Body
	contentType := resp.Headers[target.HeaderContentType]
	switch c.NegotiateFormat(target.ContentTypeHTML, target.ContentTypeMarkdown, target.ContentTypePlain) {
	case target.ContentTypeMarkdown:
		body, contentType = target.Markdown(body), target.ContentTypeMarkdown
	case target.ContentTypePlain:
		body, contentType = target.PlainText(body), target.ContentTypePlain
	}

	for k, v := range resp.Headers {
		if k != target.HeaderContentType {
			c.Header(k, v)
		}
	}
	c.Data(resp.StatusCode, contentType, []byte(body))
}

// --- Plain function ---

// Execute is the minimal function: it does its work and reports the request id.
func (h Handlers) Execute(c *gin.Context) {
	inv := invocation.FromGin(c)
	logger.FromGin(c).Debug("processing request", "method", c.Request.Method, "path", c.Request.URL.Path)
	c.JSON(http.StatusOK, gin.H{
		"message":   "Function executed successfully",
		"requestId": inv.RequestID,
	})
}

// stringContext flattens a proxy authorizer map; gateways may deliver non-string values.
func stringContext(in map[string]any) authorizer.Context {
	if len(in) == 0 {
		return nil
	}
	out := make(authorizer.Context, len(in))
	for k, v := range in {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}
