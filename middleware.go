package edgecontext

import (
	"context"
	"fmt"
	"net/http"

	"github.com/auth0/go-edge-context/envelope"
)

// Middleware attaches an EdgeContext to every inbound HTTP request. It never
// rejects a request: a missing or malformed header yields an edge context
// with no identity.
type Middleware struct {
	factory             *Factory
	extractor           HeaderExtractor
	exclusionURLHandler func(r *http.Request) bool
	logger              Logger
}

// MiddlewareOption configures the Middleware.
type MiddlewareOption func(*Middleware) error

// NewMiddleware constructs a Middleware building edge contexts with factory.
//
// Example:
//
//	mw, err := edgecontext.NewMiddleware(factory,
//	    edgecontext.WithExclusionURLs([]string{"/health"}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", mw.Handler(mux))
func NewMiddleware(factory *Factory, opts ...MiddlewareOption) (*Middleware, error) {
	if factory == nil {
		return nil, ErrFactoryNil
	}

	m := &Middleware{
		factory:   factory,
		extractor: DefaultHeaderExtractor,
		logger:    factory.logger,
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	return m, nil
}

// WithHeaderExtractor sets how the edge header is read from requests.
//
// Default: DefaultHeaderExtractor
func WithHeaderExtractor(e HeaderExtractor) MiddlewareOption {
	return func(m *Middleware) error {
		if e == nil {
			return ErrExtractorNil
		}
		m.extractor = e
		return nil
	}
}

// WithExclusionURLs skips requests whose full URL or path matches one of
// exclusions.
func WithExclusionURLs(exclusions []string) MiddlewareOption {
	return func(m *Middleware) error {
		if len(exclusions) == 0 {
			return ErrExclusionsEmpty
		}
		m.exclusionURLHandler = func(r *http.Request) bool {
			requestFullURL := r.URL.String()
			requestPath := r.URL.Path

			for _, exclusion := range exclusions {
				if requestFullURL == exclusion || requestPath == exclusion {
					return true
				}
			}
			return false
		}
		return nil
	}
}

// WithMiddlewareLogger overrides the factory's logger for the middleware.
func WithMiddlewareLogger(logger Logger) MiddlewareOption {
	return func(m *Middleware) error {
		if logger == nil {
			return ErrLoggerNil
		}
		m.logger = logger
		return nil
	}
}

// Handler wraps next so that handlers can call FromContext.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.exclusionURLHandler != nil && m.exclusionURLHandler(r) {
			if m.logger != nil {
				m.logger.Debug("skipping edge context for excluded URL",
					"method", r.Method,
					"path", r.URL.Path)
			}
			next.ServeHTTP(w, r)
			return
		}

		ec := m.factory.FromHeaderValue(m.extractor(r))
		next.ServeHTTP(w, r.WithContext(WithEdgeContext(r.Context(), ec)))
	})
}

// Inject writes the edge header attached to ctx into h. It reports whether a
// header was written.
func Inject(ctx context.Context, h http.Header) bool {
	raw, ok := RawHeaderFromContext(ctx)
	if !ok {
		return false
	}
	h.Set(HeaderName, envelope.EncodeHeader(raw))
	return true
}

// Transport is an http.RoundTripper forwarding the edge header of each
// request's context to the downstream service.
type Transport struct {
	// Base is the underlying transport; http.DefaultTransport when nil.
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	if _, ok := RawHeaderFromContext(r.Context()); ok {
		r = r.Clone(r.Context())
		Inject(r.Context(), r.Header)
	}

	return base.RoundTrip(r)
}
