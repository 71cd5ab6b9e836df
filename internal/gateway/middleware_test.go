package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"edge-authorizer/internal/audit"
	"edge-authorizer/internal/auth"
	"edge-authorizer/internal/authorizer"
	"edge-authorizer/internal/invocation"

	"github.com/gin-gonic/gin"
)

var authorizerID = invocation.Identity{FunctionName: "authorizer-function", FunctionVersion: "$LATEST", MemoryLimitMB: 128}

type authorizerFunc func(ctx context.Context, inv invocation.Context, req authorizer.Request) (authorizer.Policy, error)

func (f authorizerFunc) Authorize(ctx context.Context, inv invocation.Context, req authorizer.Request) (authorizer.Policy, error) {
	return f(ctx, inv, req)
}

func newRouter(a Authorizer, resource ResourceFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Any("/gateway/*path", Authorize(a, authorizerID, resource), func(c *gin.Context) {
		authz := auth.AuthorizerContext(c.Request.Context())
		c.String(http.StatusOK, authz.PrincipalID())
	})
	return r
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestAuthorize_AllowsAndStoresContext(t *testing.T) {
	store := audit.NewMemoryStore()
	engine := authorizer.NewEngine(audit.NewRecorder(store))

	w := serve(newRouter(engine, MethodARN("us-east-1", "prod")), http.MethodGet, "/gateway/x")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "user" {
		t.Fatalf("expected principal user, got %q", w.Body.String())
	}

	recs := store.Records()
	if len(recs) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(recs))
	}
	if recs[0].EventType != audit.EventTypeAuthorizerInvoke || recs[0].FunctionName != "authorizer-function" {
		t.Fatalf("unexpected record: %+v", recs[0])
	}
	if got := recs[0].Extra["methodArn"]; got != "arn:edge:execute-api:us-east-1:prod/GET/x" {
		t.Fatalf("unexpected methodArn %q", got)
	}
}

func TestAuthorize_MalformedIs400(t *testing.T) {
	empty := func(*gin.Context) string { return "" }
	w := serve(newRouter(authorizer.NewEngine(nil), empty), http.MethodGet, "/gateway/x")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAuthorize_DenyIs403(t *testing.T) {
	deny := authorizerFunc(func(_ context.Context, inv invocation.Context, req authorizer.Request) (authorizer.Policy, error) {
		p := authorizer.AllowPolicy(req.ResourceIdentifier, inv.RequestID)
		p.PolicyDocument.Statement[0].Effect = authorizer.EffectDeny
		return p, nil
	})
	w := serve(newRouter(deny, MethodARN("us-east-1", "prod")), http.MethodPost, "/gateway/x")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestAuthorize_PolicyForOtherResourceIs403(t *testing.T) {
	other := authorizerFunc(func(_ context.Context, inv invocation.Context, _ authorizer.Request) (authorizer.Policy, error) {
		return authorizer.AllowPolicy("arn:edge:execute-api:us-east-1:prod/GET/other", inv.RequestID), nil
	})
	w := serve(newRouter(other, MethodARN("us-east-1", "prod")), http.MethodGet, "/gateway/x")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestAuthorize_ErrorIs500(t *testing.T) {
	failing := authorizerFunc(func(context.Context, invocation.Context, authorizer.Request) (authorizer.Policy, error) {
		return authorizer.Policy{}, errors.New("boom")
	})
	w := serve(newRouter(failing, MethodARN("us-east-1", "prod")), http.MethodGet, "/gateway/x")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestAuthorize_NilAuthorizerIs500(t *testing.T) {
	w := serve(newRouter(nil, MethodARN("us-east-1", "prod")), http.MethodGet, "/gateway/x")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestAuthorize_WhitespaceInPathIsAllowed(t *testing.T) {
	r := newRouter(authorizer.NewEngine(nil), MethodARN("us-east-1", "prod"))

	for _, path := range []string{"/gateway/items", "/gateway/items%20", "/gateway/%20items"} {
		w := serve(r, http.MethodGet, path)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d (%s)", path, w.Code, w.Body.String())
		}
	}
}
