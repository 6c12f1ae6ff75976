package edgecontext

import (
	"github.com/gin-gonic/gin"
)

// GinContextKey is the gin.Context key the gin middleware stores the
// EdgeContext under.
const GinContextKey = "edgecontext"

// ginStore attaches edge contexts to a gin.Context.
type ginStore struct {
	c *gin.Context
}

func (s ginStore) SetEdgeContext(ec *EdgeContext, rawHeader []byte) {
	s.c.Set(GinContextKey, ec)
	s.c.Set(GinContextKey+".raw", rawHeader)
}

// NewGin returns gin middleware attaching an EdgeContext to each request,
// both on the gin.Context (see GinFromContext) and on the request's
// context.Context.
func NewGin(factory *Factory, opts ...MiddlewareOption) (gin.HandlerFunc, error) {
	m, err := NewMiddleware(factory, opts...)
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		if m.exclusionURLHandler != nil && m.exclusionURLHandler(c.Request) {
			c.Next()
			return
		}

		ec := m.factory.FromHeaderValue(m.extractor(c.Request))
		ec.Attach(ginStore{c})
		c.Request = c.Request.WithContext(WithEdgeContext(c.Request.Context(), ec))
		c.Next()
	}, nil
}

// GinFromContext returns the EdgeContext the gin middleware stored on c.
func GinFromContext(c *gin.Context) (*EdgeContext, error) {
	value, ok := c.Get(GinContextKey)
	if !ok {
		return nil, ErrEdgeContextNotFound
	}
	ec, ok := value.(*EdgeContext)
	if !ok {
		return nil, ErrEdgeContextNotFound
	}
	return ec, nil
}
