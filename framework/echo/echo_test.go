package edgeecho

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	edgecontext "github.com/auth0/go-edge-context"
	"github.com/auth0/go-edge-context/core"
)

type stubValidator map[string]core.TrustDecision

func (s stubValidator) Validate(_ context.Context, token string) core.TrustDecision {
	if d, ok := s[token]; ok {
		return d
	}
	return core.Invalid{}
}

func newFactory(t *testing.T) *edgecontext.Factory {
	t.Helper()

	f, err := edgecontext.NewFactory(edgecontext.WithTokenValidator(stubValidator{
		"user-token": core.NewValid(core.Claims{Subject: "t2_xyz"}),
	}))
	require.NoError(t, err)
	return f
}

func headerFor(t *testing.T, f *edgecontext.Factory, parts edgecontext.Parts) string {
	t.Helper()

	ec, err := f.NewFromParts(context.Background(), parts)
	require.NoError(t, err)
	return ec.HeaderValue()
}

func TestNewEchoMiddleware(t *testing.T) {
	f := newFactory(t)

	testCases := []struct {
		name       string
		options    []Option
		contextKey string
		path       string
		header     string
		wantCode   int
		wantBody   string
	}{
		{
			name:     "it attaches a logged in user",
			path:     "/",
			header:   headerFor(t, f, edgecontext.Parts{Token: "user-token", SessionID: "s1"}),
			wantCode: http.StatusOK,
			wantBody: `{"logged_in":true,"same":true,"session_id":"s1"}`,
		},
		{
			name:     "it attaches an anonymous context to a malformed header",
			path:     "/",
			header:   "!!!",
			wantCode: http.StatusOK,
			wantBody: `{"logged_in":false,"same":true,"session_id":""}`,
		},
		{
			name:       "it uses a custom context key",
			options:    []Option{WithContextKey("edge")},
			contextKey: "edge",
			path:       "/",
			header:     headerFor(t, f, edgecontext.Parts{SessionID: "s2"}),
			wantCode:   http.StatusOK,
			wantBody:   `{"logged_in":false,"same":true,"session_id":"s2"}`,
		},
		{
			name: "it skips requests",
			options: []Option{WithSkipper(func(c echo.Context) bool {
				return c.Path() == "/health"
			})},
			path:     "/health",
			header:   headerFor(t, f, edgecontext.Parts{SessionID: "s1"}),
			wantCode: http.StatusNoContent,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			mw, err := NewEchoMiddleware(f, testCase.options...)
			require.NoError(t, err)

			contextKey := testCase.contextKey
			if contextKey == "" {
				contextKey = DefaultContextKey
			}

			e := echo.New()
			e.Use(mw)
			e.GET(testCase.path, func(c echo.Context) error {
				ec, err := GetEdgeContext(c, contextKey)
				if err != nil {
					return c.NoContent(http.StatusNoContent)
				}

				fromRequest, err := edgecontext.FromContext(c.Request().Context())
				require.NoError(t, err)

				return c.JSON(http.StatusOK, map[string]any{
					"logged_in":  ec.User(c.Request().Context()).IsLoggedIn(),
					"session_id": ec.Session().ID(),
					"same":       ec == fromRequest,
				})
			})

			request := httptest.NewRequest(http.MethodGet, testCase.path, nil)
			if testCase.header != "" {
				request.Header.Set(edgecontext.HeaderName, testCase.header)
			}

			recorder := httptest.NewRecorder()
			e.ServeHTTP(recorder, request)

			assert.Equal(t, testCase.wantCode, recorder.Code)
			if testCase.wantBody != "" {
				assert.JSONEq(t, testCase.wantBody, recorder.Body.String())
			}
		})
	}
}

func TestNewEchoMiddleware_Errors(t *testing.T) {
	_, err := NewEchoMiddleware(nil)
	assert.ErrorIs(t, err, edgecontext.ErrFactoryNil)

	_, err = NewEchoMiddleware(newFactory(t), WithContextKey(""))
	assert.ErrorIs(t, err, errContextKeyEmpty)

	_, err = NewEchoMiddleware(newFactory(t), WithHeaderExtractor(nil))
	assert.ErrorIs(t, err, edgecontext.ErrExtractorNil)
}

func TestGetEdgeContext(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := GetEdgeContext(c, DefaultContextKey)
	assert.ErrorIs(t, err, edgecontext.ErrEdgeContextNotFound)

	ec := newFactory(t).FromUpstream(nil)
	c.Set(DefaultContextKey, ec)

	got, err := GetEdgeContext(c, DefaultContextKey)
	require.NoError(t, err)
	assert.Same(t, ec, got)
}
