package edgecontext

import (
	"strings"

	"github.com/auth0/go-edge-context/core"
)

// OAuthClient is the OAuth2 client the token was issued to.
type OAuthClient struct {
	decision core.TrustDecision
}

// ID returns the verified client id. A valid token that names no client is
// treated like a missing token.
func (c OAuthClient) ID() (string, error) {
	valid, ok := c.decision.(core.Valid)
	if !ok || valid.OAuthClientID() == "" {
		return "", ErrAuthenticationAbsent
	}
	return valid.OAuthClientID(), nil
}

// IsType reports whether the client type is one of types, ignoring case.
//
// Check that a client is an allowed type rather than that it is not a
// disallowed one:
//
//	ok, err := client.IsType("third_party")
func (c OAuthClient) IsType(types ...string) (bool, error) {
	valid, ok := c.decision.(core.Valid)
	if !ok {
		return false, ErrAuthenticationAbsent
	}

	clientType := valid.OAuthClientType()
	if clientType == "" {
		return false, nil
	}

	for _, t := range types {
		if strings.EqualFold(t, clientType) {
			return true, nil
		}
	}
	return false, nil
}

// EventFields returns oauth_client_id, nil when absent.
func (c OAuthClient) EventFields() map[string]any {
	id, err := c.ID()
	if err != nil {
		return map[string]any{"oauth_client_id": nil}
	}
	return map[string]any{"oauth_client_id": id}
}
