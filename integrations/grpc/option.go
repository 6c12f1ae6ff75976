package grpc

import (
	"errors"

	edgecontext "github.com/auth0/go-edge-context"
)

// Option configures the interceptor.
type Option func(*Interceptor) error

// WithLogger sets the logger used by the interceptor. It defaults to none.
//
// The logger interface is compatible with log/slog.Logger and similar loggers.
func WithLogger(logger edgecontext.Logger) Option {
	return func(i *Interceptor) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		i.logger = logger
		return nil
	}
}

// WithHeaderExtractor sets a custom header extractor function.
// Default is MetadataHeaderExtractor which reads "edge-request-bin".
func WithHeaderExtractor(extractor HeaderExtractor) Option {
	return func(i *Interceptor) error {
		if extractor == nil {
			return errors.New("header extractor cannot be nil")
		}
		i.extractor = extractor
		return nil
	}
}

// WithExcludedMethods skips specific gRPC methods.
// Methods should be provided in the format: "/package.Service/Method"
// Example: "/grpc.health.v1.Health/Check"
func WithExcludedMethods(methods ...string) Option {
	return func(i *Interceptor) error {
		for _, method := range methods {
			i.excludedMethods[method] = true
		}
		return nil
	}
}
