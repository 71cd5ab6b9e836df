package authorizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"edge-authorizer/internal/audit"
	"edge-authorizer/internal/invocation"
)

const (
	DefaultPrincipalID    = "user"
	DefaultAuthType       = "REQUEST"
	DefaultAuthorizerInfo = "Default allow policy"

	notAvailable = "N/A"
)

// ErrMalformedRequest rejects an authorization call that names no resource.
var ErrMalformedRequest = errors.New("authorizer: resource identifier required")

// Request is the inbound authorization event.
type Request struct {
	ResourceIdentifier string `json:"methodArn"`
	AuthType           string `json:"type,omitempty"`
}

// Recorder is the audit hook. Its outcome is never observed.
type Recorder interface {
	Record(ctx context.Context, eventType audit.EventType, inv invocation.Context, extra map[string]string)
}

// Engine synthesizes allow-all policies.
//
// Every call is evaluated independently: no cache, no cross-call state.
type Engine struct {
	rec Recorder
}

func NewEngine(rec Recorder) *Engine {
	return &Engine{rec: rec}
}

// Authorize records the invocation, then returns a policy granting invoke on
// exactly the requested resource.
func (e *Engine) Authorize(ctx context.Context, inv invocation.Context, req Request) (Policy, error) {
	resource := req.ResourceIdentifier
	blank := strings.TrimSpace(resource) == ""
	authType := strings.TrimSpace(req.AuthType)
	if authType == "" {
		authType = DefaultAuthType
	}

	// Step 1: audit. Written before validation so rejected calls leave a trace too.
	if e != nil && e.rec != nil {
		arn := resource
		if blank {
			arn = notAvailable
		}
		e.rec.Record(ctx, audit.EventTypeAuthorizerInvoke, inv, map[string]string{
			"methodArn":         arn,
			"authorizationType": authType,
		})
	}

	// Step 2: decide.
	if blank {
		return Policy{}, fmt.Errorf("%w (request %s)", ErrMalformedRequest, inv.RequestID)
	}
	return AllowPolicy(resource, inv.RequestID), nil
}

// AllowPolicy is the fixed allow-all decision for one resource.
func AllowPolicy(resource, correlationID string) Policy {
	return Policy{
		PrincipalID: DefaultPrincipalID,
		PolicyDocument: Document{
			Version: PolicyVersion,
			Statement: []Statement{{
				Action:   ActionInvoke,
				Effect:   EffectAllow,
				Resource: resource,
			}},
		},
		Context: Context{
			KeyAuthorizerInfo: DefaultAuthorizerInfo,
			KeyTimestamp:      correlationID,
		},
	}
}
