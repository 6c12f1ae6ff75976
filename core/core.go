// Package core provides the framework-agnostic token validation engine used by
// edge contexts.
//
// The Core type turns a raw authentication token and a rotating set of public
// keys into an immutable TrustDecision. It never returns an error: anything
// that prevents a token from being trusted degrades to Invalid.
package core

import (
	"context"
	"crypto"
	"errors"
	"time"
)

// DefaultSecretName is the versioned secret holding the token verification keys.
const DefaultSecretName = "secret/authentication/public-key"

// Verifier checks a token's signature and expiry against a single key.
// Implementations return the verified claims, or an error (typically a
// *ValidationError) when the key does not verify the token.
type Verifier interface {
	Verify(ctx context.Context, token string, key crypto.PublicKey) (*Claims, error)
}

// Logger defines an optional logging interface compatible with log/slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Core is the token validation engine.
type Core struct {
	verifier   Verifier
	keys       KeySource
	secretName string
	logger     Logger
}

// Validate returns the trust decision for a raw token.
//
//   - An empty token is Invalid without any key lookup.
//   - Keys are tried in the order the KeySource returns them (current first).
//     The first key that verifies the token wins.
//   - A key that fails (expired, malformed, signature mismatch) is skipped.
//   - If no key verifies the token the result is Invalid.
func (c *Core) Validate(ctx context.Context, token string) TrustDecision {
	if token == "" {
		return Invalid{}
	}

	keys, err := c.keys.GetVersioned(ctx, c.secretName)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("could not load verification keys",
				"secret", c.secretName,
				"error", err)
		}
		return Invalid{}
	}

	start := time.Now()
	for i, key := range keys {
		claims, err := c.verifier.Verify(ctx, token, key)
		if err != nil || claims == nil {
			if c.logger != nil {
				c.logger.Debug("key did not verify token",
					"key_index", i,
					"code", errorCode(err))
			}
			continue
		}

		if c.logger != nil {
			c.logger.Debug("token verified",
				"key_index", i,
				"duration", time.Since(start))
		}
		return NewValid(*claims)
	}

	return Invalid{}
}

func errorCode(err error) string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Code
	}
	return ErrorCodeTokenInvalid
}
