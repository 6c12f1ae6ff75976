package edgecontext

import (
	"strings"

	"github.com/auth0/go-edge-context/core"
)

// Service is the identity of a calling service.
type Service struct {
	decision core.TrustDecision
}

// Name returns the service name: the verified subject without its
// "service/" prefix.
func (s Service) Name() (string, error) {
	valid, ok := s.decision.(core.Valid)
	if !ok {
		return "", ErrAuthenticationAbsent
	}

	name, found := strings.CutPrefix(valid.Subject(), ServicePrefix)
	if !found || name == "" {
		return "", ErrAuthenticationAbsent
	}
	return name, nil
}

// Session is the client session. Sessions are not authenticated.
type Session struct {
	id string
}

// ID returns the session id verbatim, or "" when absent.
func (s Session) ID() string {
	return s.id
}
