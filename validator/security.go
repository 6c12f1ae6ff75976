package validator

import (
	"errors"
	"strings"
)

var (
	// ErrExcessiveTokenDots is returned when a token is not a compact JWS.
	ErrExcessiveTokenDots = errors.New("token must have exactly three dot separated parts")

	// ErrTokenTooLarge is returned for tokens above maxTokenSize.
	ErrTokenTooLarge = errors.New("token exceeds maximum size")
)

const (
	// maxTokenDots is the number of dots in a compact JWS: header.payload.signature.
	maxTokenDots = 2

	// maxTokenSize bounds the work done on a single edge header token.
	// Authentication tokens are a few hundred bytes.
	maxTokenSize = 16 * 1024
)

// validateTokenFormat rejects obviously malformed input before it reaches the
// parser. Every key would reject it anyway; checking once keeps key rotation
// from multiplying the cost of garbage tokens.
func validateTokenFormat(tokenString string) error {
	if len(tokenString) == 0 {
		return errors.New("token is empty")
	}

	if len(tokenString) > maxTokenSize {
		return ErrTokenTooLarge
	}

	if strings.Count(tokenString, ".") != maxTokenDots {
		return ErrExcessiveTokenDots
	}

	return nil
}
