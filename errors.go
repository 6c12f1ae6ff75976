package edgecontext

import (
	"errors"
	"fmt"

	"github.com/auth0/go-edge-context/core"
	"github.com/auth0/go-edge-context/envelope"
)

// AccountPrefix is the namespace prefix of user account subjects and of
// visitor ids.
const AccountPrefix = "t2_"

// ServicePrefix is the namespace prefix of inter-service subjects.
const ServicePrefix = "service/"

var (
	// ErrAuthenticationAbsent is returned by identity view accessors when
	// there is no valid authentication, or the authenticated subject is not
	// the kind the accessor asks for.
	ErrAuthenticationAbsent = core.ErrAuthenticationAbsent

	// ErrInvalidVisitorID is matched by the ConstructionError returned when a
	// visitor id lacks the account prefix.
	ErrInvalidVisitorID = errors.New("visitor id is not in fullname format")

	// ErrInvalidText is matched by the ConstructionError returned when a
	// part is not valid UTF-8.
	ErrInvalidText = envelope.ErrInvalidText

	// ErrEdgeContextNotFound is returned by FromContext when no edge context
	// was stored in the context.
	ErrEdgeContextNotFound = errors.New("edge context not found in context")

	// Configuration errors.
	ErrTokenValidatorNil = errors.New("token validator cannot be nil (use WithTokenValidator)")
	ErrCodecNil          = errors.New("codec cannot be nil")
	ErrLoggerNil         = errors.New("logger cannot be nil")
	ErrMetricsNil        = errors.New("metrics cannot be nil")
	ErrTracerNil         = errors.New("tracer cannot be nil")
	ErrFactoryNil        = errors.New("factory cannot be nil")
	ErrExclusionsEmpty   = errors.New("exclusion URLs list cannot be empty")
	ErrExtractorNil      = errors.New("header extractor cannot be nil")
)

// ConstructionError reports input that cannot be turned into an edge
// context. It is returned only by Factory.NewFromParts.
type ConstructionError struct {
	Field string
	Value string
	Err   error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}
