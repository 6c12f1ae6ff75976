package core

import "errors"

var (
	// ErrAuthenticationAbsent is returned by identity accessors when there is
	// no valid authentication, or when the authenticated subject is not of the
	// kind the accessor asks for. Callers are expected to fall back to an
	// anonymous policy.
	ErrAuthenticationAbsent = errors.New("no valid authentication")

	// ErrTokenInvalid is the target every ValidationError matches with errors.Is.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrKeySetEmpty is returned by key sources holding no usable key.
	ErrKeySetEmpty = errors.New("key set is empty")
)

// ValidationError describes why a single key did not verify a token.
type ValidationError struct {
	// Code is a machine-readable error code (e.g., "token_expired", "invalid_signature")
	Code string

	// Message is a human-readable error message
	Message string

	// Details contains the underlying error
	Details error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Details != nil {
		return e.Message + ": " + e.Details.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ValidationError) Unwrap() error {
	return e.Details
}

// Is allows the error to be compared with ErrTokenInvalid.
func (e *ValidationError) Is(target error) bool {
	return target == ErrTokenInvalid
}

// Common error codes
const (
	ErrorCodeTokenInvalid     = "token_invalid"
	ErrorCodeTokenMalformed   = "token_malformed"
	ErrorCodeTokenExpired     = "token_expired"
	ErrorCodeTokenNotYetValid = "token_not_yet_valid"
	ErrorCodeInvalidSignature = "invalid_signature"
	ErrorCodeInvalidClaims    = "invalid_claims"
	ErrorCodeConfigInvalid    = "config_invalid"
	ErrorCodeVerifierNotSet   = "verifier_not_set"
	ErrorCodeKeySourceNotSet  = "key_source_not_set"
)

// NewValidationError creates a new ValidationError with the given code and message.
func NewValidationError(code, message string, details error) *ValidationError {
	return &ValidationError{
		Code:    code,
		Message: message,
		Details: details,
	}
}
