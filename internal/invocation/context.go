package invocation

import (
	"context"
	"strconv"
)

// Context is the per-call identity bundle of one stage invocation.
// It is built by the hosting layer and read-only for everything below it.
type Context struct {
	FunctionName    string
	FunctionVersion string
	RequestID       string
	MemoryLimitMB   int
}

// Identity is the static part of a Context: what the function is, not which call this is.
type Identity struct {
	FunctionName    string
	FunctionVersion string
	MemoryLimitMB   int
}

// For binds the identity to one request.
func (id Identity) For(requestID string) Context {
	return Context{
		FunctionName:    id.FunctionName,
		FunctionVersion: id.FunctionVersion,
		RequestID:       requestID,
		MemoryLimitMB:   id.MemoryLimitMB,
	}
}

// MemoryLimit renders the memory limit the way the runtime reports it.
func (c Context) MemoryLimit() string {
	return strconv.Itoa(c.MemoryLimitMB)
}

type ctxKey int

const (
	ctxInvocation ctxKey = iota
	ctxSourceIP
)

func With(ctx context.Context, inv Context) context.Context {
	return context.WithValue(ctx, ctxInvocation, inv)
}

func From(ctx context.Context) (Context, bool) {
	inv, ok := ctx.Value(ctxInvocation).(Context)
	return inv, ok
}

// WithSourceIP attaches the resolved client address. Empty values are not stored.
func WithSourceIP(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxSourceIP, ip)
}

func SourceIP(ctx context.Context) string {
	if s, ok := ctx.Value(ctxSourceIP).(string); ok {
		return s
	}
	return ""
}
