package auth

import "github.com/golang-jwt/jwt/v5"

// Claims carry the authorizer context from the authorizer stage to the target.
// The principal travels as the standard subject; every other context entry
// lives in Context.
type Claims struct {
	jwt.RegisteredClaims

	Context map[string]string `json:"ctx,omitempty"`
}
