package domain

import "github.com/google/uuid"

// Principal is an authenticated identity a request acts on behalf of.
type Principal interface {
	PrincipalName() string
}

// PlatformPrincipal is a machine client authenticated via its API key.
type PlatformPrincipal struct {
	Platform Platform
}

func (p PlatformPrincipal) PrincipalName() string {
	return "platform:" + p.Platform.ID.String()
}

// OperatorPrincipal is the human operator authenticated via a dashboard
// session token.
type OperatorPrincipal struct {
	TokenID uuid.UUID
}

func (p OperatorPrincipal) PrincipalName() string {
	return "operator"
}
