package edgecontext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/auth0/go-edge-context/envelope"
)

// Factory builds edge contexts. Edge services use NewFromParts; internal
// services use FromUpstream or FromHeaderValue, usually through one of the
// middlewares. A Factory is safe for concurrent use.
type Factory struct {
	validator TokenValidator
	codec     envelope.Codec
	logger    Logger
	metrics   Metrics
	tracer    Tracer
}

// Parts are the raw inputs an edge service has about a request.
type Parts struct {
	// Token is the raw authentication token, if the client has one.
	Token string

	// VisitorID is the loid in fullname format ("t2_..."), if known.
	VisitorID string

	// VisitorCreatedMS is when the loid was created, in epoch milliseconds.
	VisitorCreatedMS *int64

	// SessionID is the session cookie id, if known.
	SessionID string
}

// NewFactory constructs a Factory with the supplied options.
//
// Example:
//
//	validator, err := core.New(
//	    core.WithVerifier(v),
//	    core.WithKeySource(store),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	factory, err := edgecontext.NewFactory(
//	    edgecontext.WithTokenValidator(validator),
//	    edgecontext.WithLogger(slog.Default()),
//	)
func NewFactory(opts ...Option) (*Factory, error) {
	f := &Factory{
		codec:   envelope.CBOR{},
		metrics: NoopMetrics{},
		tracer:  NoopTracer{},
	}

	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if f.validator == nil {
		return nil, fmt.Errorf("invalid factory configuration: %w", ErrTokenValidatorNil)
	}

	return f, nil
}

// NewFromParts builds an edge context from scratch. The envelope is encoded
// right away and kept, so it is never decoded again.
//
// A non-empty VisitorID must carry the account prefix; otherwise a
// *ConstructionError matching ErrInvalidVisitorID is returned. Parts that are
// not valid UTF-8 give a *ConstructionError matching ErrInvalidText; the
// token itself is left out of the error.
func (f *Factory) NewFromParts(_ context.Context, parts Parts) (*EdgeContext, error) {
	if parts.VisitorID != "" && !strings.HasPrefix(parts.VisitorID, AccountPrefix) {
		return nil, &ConstructionError{
			Field: "visitor id",
			Value: parts.VisitorID,
			Err:   fmt.Errorf("%w: expected %q prefix", ErrInvalidVisitorID, AccountPrefix),
		}
	}

	for _, part := range []struct{ field, value string }{
		{"token", parts.Token},
		{"visitor id", parts.VisitorID},
		{"session id", parts.SessionID},
	} {
		if !utf8.ValidString(part.value) {
			err := &ConstructionError{Field: part.field, Value: part.value, Err: ErrInvalidText}
			if part.field == "token" {
				err.Value = ""
			}
			return nil, err
		}
	}

	env := envelope.Envelope{
		Token:            parts.Token,
		VisitorID:        parts.VisitorID,
		VisitorCreatedMS: copyInt64(parts.VisitorCreatedMS),
		SessionID:        parts.SessionID,
	}

	header, err := f.codec.Encode(env)
	if err != nil {
		return nil, fmt.Errorf("could not encode edge request header: %w", err)
	}

	ec := f.newEdgeContext(header)
	ec.envelopeOnce.Do(func() {
		ec.envelope = env
	})

	if f.logger != nil {
		f.logger.Debug("created edge context",
			"has_token", env.Token != "",
			"has_visitor", env.VisitorID != "",
			"header_size", len(header))
	}

	return ec, nil
}

// FromUpstream wraps header bytes received from an upstream service. It
// never fails: a malformed header behaves like an empty one.
func (f *Factory) FromUpstream(header []byte) *EdgeContext {
	return f.newEdgeContext(append([]byte(nil), header...))
}

// FromHeaderValue wraps the base64 text form of a header, as carried in
// HTTP headers. Text that is not base64 behaves like an empty header.
func (f *Factory) FromHeaderValue(value string) *EdgeContext {
	header, err := envelope.DecodeHeader(value)
	if err != nil {
		if f.logger != nil {
			f.logger.Debug("invalid edge request header encoding", "error", err)
		}
		f.metrics.IncCounter(MetricHeaderDecodeFailures, nil)
		header = nil
	}
	return f.newEdgeContext(header)
}

func (f *Factory) newEdgeContext(header []byte) *EdgeContext {
	return &EdgeContext{
		header:    header,
		codec:     f.codec,
		validator: f.validator,
		logger:    f.logger,
		metrics:   f.metrics,
		tracer:    f.tracer,
	}
}
