package edgecontext

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auth0/go-edge-context/envelope"
)

func TestNewGin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("nil factory", func(t *testing.T) {
		handler, err := NewGin(nil)
		assert.Nil(t, handler)
		assert.ErrorIs(t, err, ErrFactoryNil)
	})

	testCases := []struct {
		name     string
		options  []MiddlewareOption
		path     string
		header   string
		wantCode int
		wantBody string
	}{
		{
			name:     "it attaches a logged in user",
			path:     "/",
			header:   headerValue(t, envelope.Envelope{Token: "user-token", SessionID: "s1"}),
			wantCode: http.StatusOK,
			wantBody: `{"logged_in":true,"same":true,"session_id":"s1"}`,
		},
		{
			name:     "it attaches an anonymous context without a header",
			path:     "/",
			wantCode: http.StatusOK,
			wantBody: `{"logged_in":false,"same":true,"session_id":""}`,
		},
		{
			name:     "it skips excluded paths",
			options:  []MiddlewareOption{WithExclusionURLs([]string{"/health"})},
			path:     "/health",
			header:   headerValue(t, envelope.Envelope{SessionID: "s1"}),
			wantCode: http.StatusNoContent,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			f := newTestFactory(t)
			middleware, err := NewGin(f, testCase.options...)
			require.NoError(t, err)

			handler := func(c *gin.Context) {
				ec, err := GinFromContext(c)
				if err != nil {
					c.Status(http.StatusNoContent)
					return
				}

				fromRequest, err := FromContext(c.Request.Context())
				require.NoError(t, err)

				raw, ok := c.Get(GinContextKey + ".raw")
				require.True(t, ok)
				assert.Equal(t, ec.Header(), raw)

				c.JSON(http.StatusOK, gin.H{
					"logged_in":  ec.User(c.Request.Context()).IsLoggedIn(),
					"session_id": ec.Session().ID(),
					"same":       ec == fromRequest,
				})
			}

			router := gin.New()
			router.Use(middleware)
			router.GET(testCase.path, handler)

			request := httptest.NewRequest(http.MethodGet, testCase.path, nil)
			if testCase.header != "" {
				request.Header.Set(HeaderName, testCase.header)
			}

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)

			assert.Equal(t, testCase.wantCode, recorder.Code)
			if testCase.wantBody != "" {
				assert.JSONEq(t, testCase.wantBody, recorder.Body.String())
			}
		})
	}
}

func TestGinFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := GinFromContext(c)
	assert.ErrorIs(t, err, ErrEdgeContextNotFound)

	c.Set(GinContextKey, "not an edge context")
	_, err = GinFromContext(c)
	assert.ErrorIs(t, err, ErrEdgeContextNotFound)

	ec := newTestFactory(t).FromUpstream(nil)
	c.Set(GinContextKey, ec)
	got, err := GinFromContext(c)
	require.NoError(t, err)
	assert.Same(t, ec, got)
}
