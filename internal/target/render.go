package target

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"

	"edge-authorizer/internal/authorizer"
	"edge-authorizer/internal/invocation"

	"github.com/mssola/useragent"
)

// NotAvailable stands in for every absent field.
const NotAvailable = "N/A"

// Page is everything the rendered document shows.
type Page struct {
	RequestID      string
	FunctionName   string
	Method         string
	Path           string
	SourceIP       string
	PrincipalID    string
	AuthorizerInfo string
	Client         string
	Table          string
	Headers        Headers
}

// NewPage collects the page fields, substituting NotAvailable for blanks.
func NewPage(inv invocation.Context, req Request, authz authorizer.Context, table string) Page {
	return Page{
		RequestID:      orNA(inv.RequestID),
		FunctionName:   orNA(inv.FunctionName),
		Method:         orNA(req.Method),
		Path:           orNA(req.Path),
		SourceIP:       orNA(req.SourceIP),
		PrincipalID:    orNA(authz.PrincipalID()),
		AuthorizerInfo: orNA(authz.AuthorizerInfo()),
		Client:         clientSummary(req.Headers.Get("User-Agent")),
		Table:          orNA(table),
		Headers:        req.Headers,
	}
}

// text escapes only the HTML-special characters <>&'" so ids like "req+1"
// appear in the document exactly as received. Every field goes through it.
func text(s string) template.HTML {
	return template.HTML(html.EscapeString(s))
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{"text": text}).Parse(`<!DOCTYPE html>
<html>
<head>
  <title>Lambda Success</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 40px; background: #f0f0f0; }
    .container { background: white; padding: 30px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
    h1 { color: #28a745; }
    .section { margin: 20px 0; padding: 15px; background: #f8f9fa; border-left: 4px solid #28a745; }
    .item { margin: 5px 0; font-family: monospace; }
    .label { font-weight: bold; color: #495057; }
    .success { color: #28a745; }
  </style>
</head>
<body>
  <div class="container">
    <h1>Success!</h1>
    <p>Your request was successfully processed by the target function.</p>
    <p class="success">Event logged to audit table: {{text .Table}} (TTL: 20 minutes)</p>

    <div class="section" id="request">
      <h3>Request Information</h3>
      <div class="item"><span class="label">Request ID:</span> {{text .RequestID}}</div>
      <div class="item"><span class="label">Function Name:</span> {{text .FunctionName}}</div>
      <div class="item"><span class="label">HTTP Method:</span> {{text .Method}}</div>
      <div class="item"><span class="label">Path:</span> {{text .Path}}</div>
      <div class="item"><span class="label">Source IP:</span> {{text .SourceIP}}</div>
      <div class="item"><span class="label">Client:</span> {{text .Client}}</div>
    </div>

    <div class="section" id="authorizer">
      <h3>Authorizer Context</h3>
      <div class="item"><span class="label">Principal ID:</span> {{text .PrincipalID}}</div>
      <div class="item"><span class="label">Authorizer Info:</span> {{text .AuthorizerInfo}}</div>
    </div>

    <div class="section" id="headers">
      <h3>Request Headers</h3>
{{- range .Headers}}
      <div class="item header"><span class="label">{{text .Name}}:</span> {{text .Value}}</div>
{{- else}}
      <div class="item header"><span class="label">Headers:</span> N/A</div>
{{- end}}
    </div>
  </div>
</body>
</html>
`))

// Render produces the HTML document for p. It never fails: if the template
// cannot execute, a minimal escaped document is returned instead.
func Render(p Page) string {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		return fallbackDocument(p)
	}
	return buf.String()
}

func fallbackDocument(p Page) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><body><pre>\n")
	fmt.Fprintf(&b, "Request ID: %s\n", html.EscapeString(p.RequestID))
	fmt.Fprintf(&b, "Function Name: %s\n", html.EscapeString(p.FunctionName))
	fmt.Fprintf(&b, "HTTP Method: %s\n", html.EscapeString(p.Method))
	fmt.Fprintf(&b, "Path: %s\n", html.EscapeString(p.Path))
	fmt.Fprintf(&b, "Principal ID: %s\n", html.EscapeString(p.PrincipalID))
	fmt.Fprintf(&b, "Authorizer Info: %s\n", html.EscapeString(p.AuthorizerInfo))
	for _, h := range p.Headers {
		fmt.Fprintf(&b, "%s: %s\n", html.EscapeString(h.Name), html.EscapeString(h.Value))
	}
	b.WriteString("</pre></body></html>\n")
	return b.String()
}

// clientSummary turns a User-Agent into "Browser version on OS".
func clientSummary(ua string) string {
	if strings.TrimSpace(ua) == "" {
		return NotAvailable
	}
	parsed := useragent.New(ua)
	name, version := parsed.Browser()
	if parsed.Bot() {
		return "bot: " + name
	}
	if name == "" {
		return ua
	}
	out := name
	if version != "" {
		out += " " + version
	}
	if os := parsed.OS(); os != "" {
		out += " on " + os
	}
	return out
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}
