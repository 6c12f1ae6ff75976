package edgeecho

import (
	"errors"

	"github.com/labstack/echo/v4/middleware"

	edgecontext "github.com/auth0/go-edge-context"
)

var errContextKeyEmpty = errors.New("context key cannot be empty")

// Option is a function that configures the middleware
type Option func(*echoMiddlewareConfig) error

// WithContextKey sets the echo.Context key the edge context is stored under.
func WithContextKey(key string) Option {
	return func(config *echoMiddlewareConfig) error {
		if key == "" {
			return errContextKeyEmpty
		}
		config.contextKey = key
		return nil
	}
}

// WithHeaderExtractor sets how the edge header is read from requests.
func WithHeaderExtractor(extractor edgecontext.HeaderExtractor) Option {
	return func(config *echoMiddlewareConfig) error {
		if extractor == nil {
			return edgecontext.ErrExtractorNil
		}
		config.extractor = extractor
		return nil
	}
}

// WithSkipper skips requests for which skipper returns true.
func WithSkipper(skipper middleware.Skipper) Option {
	return func(config *echoMiddlewareConfig) error {
		if skipper == nil {
			return nil
		}
		config.skipper = skipper
		return nil
	}
}
