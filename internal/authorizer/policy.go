package authorizer

// Policy is the decision document handed back to the transport.
// It is built fresh per call and never persisted.
type Policy struct {
	PrincipalID    string   `json:"principalId"`
	PolicyDocument Document `json:"policyDocument"`
	Context        Context  `json:"context,omitempty"`
}

type Document struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

type Statement struct {
	Action   string `json:"Action"`
	Effect   Effect `json:"Effect"`
	Resource string `json:"Resource"`
}

type Effect string

const (
	EffectAllow Effect = "Allow"
	EffectDeny  Effect = "Deny"
)

const (
	ActionInvoke  = "invoke"
	PolicyVersion = "2012-10-17"
)

// Allows reports whether the policy grants invoke on resource.
// An explicit Deny on the same resource wins over any Allow.
func (p Policy) Allows(resource string) bool {
	allowed := false
	for _, s := range p.PolicyDocument.Statement {
		if s.Action != ActionInvoke || s.Resource != resource {
			continue
		}
		switch s.Effect {
		case EffectDeny:
			return false
		case EffectAllow:
			allowed = true
		}
	}
	return allowed
}

// AuthorizerContext is what the downstream stage sees: the context map plus
// the principal id, the way a gateway exposes it.
func (p Policy) AuthorizerContext() Context {
	out := make(Context, len(p.Context)+1)
	for k, v := range p.Context {
		out[k] = v
	}
	out[KeyPrincipalID] = p.PrincipalID
	return out
}

// Context is the opaque key/value map threaded from the authorizer to the target.
type Context map[string]string

const (
	KeyPrincipalID    = "principalId"
	KeyAuthorizerInfo = "authorizerInfo"
	KeyTimestamp      = "timestamp"
)

func (c Context) PrincipalID() string    { return c[KeyPrincipalID] }
func (c Context) AuthorizerInfo() string { return c[KeyAuthorizerInfo] }
