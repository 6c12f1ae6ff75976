package edgecontext

import (
	"github.com/auth0/go-edge-context/envelope"
)

// Option configures the Factory.
// Returns error for validation failures.
type Option func(*Factory) error

// WithTokenValidator sets the validator for authentication tokens (REQUIRED).
// A *core.Core satisfies TokenValidator.
func WithTokenValidator(v TokenValidator) Option {
	return func(f *Factory) error {
		if v == nil {
			return ErrTokenValidatorNil
		}
		f.validator = v
		return nil
	}
}

// WithCodec sets the header codec.
//
// Default: envelope.CBOR
func WithCodec(c envelope.Codec) Option {
	return func(f *Factory) error {
		if c == nil {
			return ErrCodecNil
		}
		f.codec = c
		return nil
	}
}

// WithLogger sets an optional logger. Undecodable headers are logged at
// debug level.
//
// The logger interface is compatible with log/slog.Logger; see NewZapLogger,
// NewLogrusLogger and NewZerologLogger for other libraries.
func WithLogger(logger Logger) Option {
	return func(f *Factory) error {
		if logger == nil {
			return ErrLoggerNil
		}
		f.logger = logger
		return nil
	}
}

// WithMetrics sets where validation and decode metrics are reported.
//
// Default: NoopMetrics
func WithMetrics(m Metrics) Option {
	return func(f *Factory) error {
		if m == nil {
			return ErrMetricsNil
		}
		f.metrics = m
		return nil
	}
}

// WithTracer sets the tracer wrapping token validation in a span.
//
// Default: NoopTracer
func WithTracer(t Tracer) Option {
	return func(f *Factory) error {
		if t == nil {
			return ErrTracerNil
		}
		f.tracer = t
		return nil
	}
}
