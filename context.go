package edgecontext

import (
	"context"
)

type contextKey struct{}

// Store is a RequestContext that keeps what an EdgeContext attaches to it.
type Store struct {
	EdgeContext *EdgeContext
	RawHeader   []byte
}

// SetEdgeContext implements RequestContext.
func (s *Store) SetEdgeContext(ec *EdgeContext, rawHeader []byte) {
	s.EdgeContext = ec
	s.RawHeader = rawHeader
}

// WithEdgeContext returns a copy of ctx carrying ec.
func WithEdgeContext(ctx context.Context, ec *EdgeContext) context.Context {
	store := &Store{}
	ec.Attach(store)
	return context.WithValue(ctx, contextKey{}, store)
}

// FromContext returns the edge context stored in ctx.
//
// Example:
//
//	ec, err := edgecontext.FromContext(r.Context())
//	if err != nil {
//	    http.Error(w, "no edge context", http.StatusInternalServerError)
//	    return
//	}
//	loggedIn := ec.User(r.Context()).IsLoggedIn()
func FromContext(ctx context.Context) (*EdgeContext, error) {
	store, ok := ctx.Value(contextKey{}).(*Store)
	if !ok || store.EdgeContext == nil {
		return nil, ErrEdgeContextNotFound
	}
	return store.EdgeContext, nil
}

// MustFromContext returns the edge context stored in ctx or panics.
// Use only behind one of the middlewares.
func MustFromContext(ctx context.Context) *EdgeContext {
	ec, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return ec
}

// HasEdgeContext reports whether ctx carries an edge context.
func HasEdgeContext(ctx context.Context) bool {
	_, err := FromContext(ctx)
	return err == nil
}

// RawHeaderFromContext returns the header bytes attached with the edge
// context in ctx, for forwarding to downstream services.
func RawHeaderFromContext(ctx context.Context) ([]byte, bool) {
	store, ok := ctx.Value(contextKey{}).(*Store)
	if !ok || len(store.RawHeader) == 0 {
		return nil, false
	}
	return store.RawHeader, true
}
