package invocation

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"edge-authorizer/pkg/logger"

	"github.com/gin-gonic/gin"
)

func TestMiddleware_BindsIdentityAndRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	id := Identity{FunctionName: "target-function", FunctionVersion: "$LATEST", MemoryLimitMB: 128}

	var got Context
	var gotIP string
	r := gin.New()
	r.Use(logger.Middleware(logger.Discard()))
	r.GET("/x", Middleware(id), func(c *gin.Context) {
		got = FromGin(c)
		gotIP = SourceIP(c.Request.Context())
		c.Status(200)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-123")
	req.RemoteAddr = "10.1.2.3:5555"
	r.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got.RequestID != "req-123" {
		t.Fatalf("expected request id from header, got %q", got.RequestID)
	}
	if got.FunctionName != "target-function" || got.FunctionVersion != "$LATEST" || got.MemoryLimitMB != 128 {
		t.Fatalf("unexpected invocation: %+v", got)
	}
	if gotIP != "10.1.2.3" {
		t.Fatalf("expected source ip, got %q", gotIP)
	}
}

func TestFromGin_MintsRequestIDWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	inv := FromGin(c)
	if inv.RequestID == "" {
		t.Fatalf("expected a generated request id")
	}
}

func TestWithSourceIP_IgnoresEmpty(t *testing.T) {
	ctx := WithSourceIP(t.Context(), "")
	if SourceIP(ctx) != "" {
		t.Fatalf("expected no source ip")
	}
}
