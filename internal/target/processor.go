package target

import (
	"context"
	"net/http"

	"edge-authorizer/internal/audit"
	"edge-authorizer/internal/authorizer"
	"edge-authorizer/internal/invocation"
)

const (
	ContentTypeHTML     = "text/html"
	ContentTypeMarkdown = "text/markdown"
	ContentTypePlain    = "text/plain"

	HeaderContentType = "Content-Type"
	HeaderRequestID   = "X-Request-Id"
)

// Request is the already-authorized downstream request. Every field is optional.
type Request struct {
	Method   string  `json:"httpMethod,omitempty"`
	Path     string  `json:"path,omitempty"`
	SourceIP string  `json:"sourceIp,omitempty"`
	Headers  Headers `json:"headers,omitempty"`
}

// Response mirrors the proxy integration response shape.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// Processor is the target stage. It has no failure path.
type Processor struct {
	rec   authorizer.Recorder
	table string
}

// NewProcessor builds the target stage. table only appears in the rendered page.
func NewProcessor(rec authorizer.Recorder, table string) *Processor {
	return &Processor{rec: rec, table: table}
}

// Process records the invocation, then renders the response document.
func (p *Processor) Process(ctx context.Context, inv invocation.Context, req Request, authz authorizer.Context) Response {
	var table string
	if p != nil {
		table = p.table
		if p.rec != nil {
			p.rec.Record(ctx, audit.EventTypeInvoke, inv, map[string]string{
				"httpMethod": orNA(req.Method),
				"path":       orNA(req.Path),
				"sourceIp":   orNA(req.SourceIP),
			})
		}
	}

	return Response{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			HeaderContentType: ContentTypeHTML,
			HeaderRequestID:   inv.RequestID,
		},
		Body: Render(NewPage(inv, req, authz, table)),
	}
}
