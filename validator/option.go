package validator

import (
	"errors"
	"fmt"
	"time"
)

// Option is how options for the Validator are set up.
// Options return errors to enable validation during construction.
type Option func(*Validator) error

// WithAlgorithm sets the signature algorithm that tokens must use.
//
// Default: RS256
//
// Supported algorithms: RS256, RS384, RS512, ES256, ES384, ES512,
// PS256, PS384, PS512, EdDSA.
func WithAlgorithm(algorithm SignatureAlgorithm) Option {
	return func(v *Validator) error {
		if _, ok := allowedSigningAlgorithms[algorithm]; !ok {
			return fmt.Errorf("unsupported signature algorithm: %s", algorithm)
		}
		v.signatureAlgorithm = algorithm
		return nil
	}
}

// WithIssuer requires the token's iss claim to equal issuer.
// Authentication tokens are not required to carry an issuer, so this is
// not checked unless set.
func WithIssuer(issuer string) Option {
	return func(v *Validator) error {
		if issuer == "" {
			return errors.New("issuer cannot be empty")
		}
		v.issuer = issuer
		return nil
	}
}

// WithAudience requires the token's aud claim to contain audience.
// Not checked unless set.
func WithAudience(audience string) Option {
	return func(v *Validator) error {
		if audience == "" {
			return errors.New("audience cannot be empty")
		}
		v.audience = audience
		return nil
	}
}

// WithAllowedClockSkew sets the allowed clock skew for time-based claims.
//
// This allows for some tolerance when validating exp, nbf, and iat claims
// to account for clock differences between systems. If not set, the default
// is 0 (no clock skew allowed).
func WithAllowedClockSkew(skew time.Duration) Option {
	return func(v *Validator) error {
		if skew < 0 {
			return errors.New("clock skew cannot be negative")
		}
		v.allowedClockSkew = skew
		return nil
	}
}
