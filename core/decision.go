package core

import (
	"slices"
	"strings"
)

// Claims are the token fields an edge context cares about.
type Claims struct {
	Subject         string   `json:"sub,omitempty"`
	Roles           []string `json:"roles,omitempty"`
	OAuthClientID   string   `json:"client_id,omitempty"`
	OAuthClientType string   `json:"client_type,omitempty"`
}

// TrustDecision is the outcome of token validation. It is implemented only by
// Valid and Invalid; callers match on it with a type switch.
type TrustDecision interface {
	trustDecision()
}

// Valid carries claims taken from a verified token.
type Valid struct {
	subject         string
	roles           []string // as issued
	roleSet         []string // lower-cased, sorted
	oauthClientID   string
	oauthClientType string
}

// Invalid marks the absence of a usable token.
type Invalid struct{}

func (Valid) trustDecision()   {}
func (Invalid) trustDecision() {}

// NewValid builds a Valid decision from verified claims. The claims are
// copied.
func NewValid(claims Claims) Valid {
	roleSet := make([]string, 0, len(claims.Roles))
	for _, role := range claims.Roles {
		roleSet = append(roleSet, strings.ToLower(role))
	}
	slices.Sort(roleSet)

	return Valid{
		subject:         claims.Subject,
		roles:           slices.Clone(claims.Roles),
		roleSet:         slices.Compact(roleSet),
		oauthClientID:   claims.OAuthClientID,
		oauthClientType: claims.OAuthClientType,
	}
}

// Subject returns the verified "sub" claim.
func (v Valid) Subject() string { return v.subject }

// Roles returns a copy of the verified roles as the token issued them.
func (v Valid) Roles() []string { return slices.Clone(v.roles) }

// HasRole reports whether role (compared case-insensitively) is in the set.
func (v Valid) HasRole(role string) bool {
	_, found := slices.BinarySearch(v.roleSet, strings.ToLower(role))
	return found
}

// OAuthClientID returns the verified "client_id" claim.
func (v Valid) OAuthClientID() string { return v.oauthClientID }

// OAuthClientType returns the verified "client_type" claim.
func (v Valid) OAuthClientType() string { return v.oauthClientType }

// IsValid reports whether d is a Valid decision.
func IsValid(d TrustDecision) bool {
	_, ok := d.(Valid)
	return ok
}
