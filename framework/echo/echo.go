// Package edgeecho attaches edge contexts to requests served by labstack/echo.
package edgeecho

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	edgecontext "github.com/auth0/go-edge-context"
)

// DefaultContextKey is the echo.Context key the edge context is stored under.
var DefaultContextKey = "edgecontext"

// echoMiddlewareConfig holds all configuration for the middleware
type echoMiddlewareConfig struct {
	contextKey string
	extractor  edgecontext.HeaderExtractor
	skipper    middleware.Skipper
}

// echoStore attaches edge contexts to an echo.Context.
type echoStore struct {
	c   echo.Context
	key string
}

func (s echoStore) SetEdgeContext(ec *edgecontext.EdgeContext, rawHeader []byte) {
	s.c.Set(s.key, ec)
	s.c.Set(s.key+".raw", rawHeader)
}

// NewEchoMiddleware returns echo middleware that attaches an edge context to
// every request, on the echo.Context (see GetEdgeContext) and on the request's
// context.Context. Requests are never rejected.
func NewEchoMiddleware(factory *edgecontext.Factory, opts ...Option) (echo.MiddlewareFunc, error) {
	if factory == nil {
		return nil, edgecontext.ErrFactoryNil
	}

	config := &echoMiddlewareConfig{
		contextKey: DefaultContextKey,
		extractor:  edgecontext.DefaultHeaderExtractor,
		skipper:    middleware.DefaultSkipper,
	}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.skipper(c) {
				return next(c)
			}

			r := c.Request()
			ec := factory.FromHeaderValue(config.extractor(r))
			ec.Attach(echoStore{c: c, key: config.contextKey})
			c.SetRequest(r.WithContext(edgecontext.WithEdgeContext(r.Context(), ec)))

			return next(c)
		}
	}, nil
}

// GetEdgeContext returns the edge context stored under contextKey.
func GetEdgeContext(c echo.Context, contextKey string) (*edgecontext.EdgeContext, error) {
	ec, ok := c.Get(contextKey).(*edgecontext.EdgeContext)
	if !ok || ec == nil {
		return nil, edgecontext.ErrEdgeContextNotFound
	}
	return ec, nil
}
