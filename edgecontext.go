package edgecontext

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/auth0/go-edge-context/core"
	"github.com/auth0/go-edge-context/envelope"
)

// TokenValidator turns a raw token into a trust decision. It is satisfied by
// *core.Core and must never panic on malformed input.
type TokenValidator interface {
	Validate(ctx context.Context, token string) core.TrustDecision
}

// RequestContext is a per-request store an EdgeContext can attach itself to.
type RequestContext interface {
	SetEdgeContext(ec *EdgeContext, rawHeader []byte)
}

// EdgeContext is the identity and session information of one inbound
// request. The header is decoded, and the token validated, on first use; each
// derived value is computed at most once, even under concurrent first access.
//
// An EdgeContext belongs to a single request and must not be reused across
// requests.
type EdgeContext struct {
	header    []byte
	codec     envelope.Codec
	validator TokenValidator
	logger    Logger
	metrics   Metrics
	tracer    Tracer

	envelopeOnce sync.Once
	envelope     envelope.Envelope

	decisionOnce sync.Once
	decision     core.TrustDecision

	userOnce sync.Once
	user     User

	oauthClientOnce sync.Once
	oauthClient     OAuthClient

	serviceOnce sync.Once
	service     Service

	sessionOnce sync.Once
	session     Session
}

// Header returns a copy of the raw header bytes.
func (ec *EdgeContext) Header() []byte {
	return slices.Clone(ec.header)
}

// HeaderValue returns the header in the base64 form carried by the
// X-Edge-Request HTTP header.
func (ec *EdgeContext) HeaderValue() string {
	return envelope.EncodeHeader(ec.header)
}

// Envelope returns the decoded header. A header that cannot be decoded
// yields the empty envelope.
func (ec *EdgeContext) Envelope() envelope.Envelope {
	ec.envelopeOnce.Do(func() {
		ec.envelope = ec.decode()
	})
	return ec.envelope
}

func (ec *EdgeContext) decode() envelope.Envelope {
	if len(ec.header) == 0 {
		return envelope.Empty()
	}

	decoded, err := ec.codec.Decode(ec.header)
	if err != nil {
		if ec.logger != nil {
			ec.logger.Debug("invalid edge request header",
				"error", err,
				"header_size", len(ec.header))
		}
		ec.metrics.IncCounter(MetricHeaderDecodeFailures, nil)
		return envelope.Empty()
	}

	return decoded
}

// TrustDecision validates the envelope's token on first call. The context of
// the first caller bounds the key lookup; later callers get the stored
// decision.
func (ec *EdgeContext) TrustDecision(ctx context.Context) core.TrustDecision {
	ec.decisionOnce.Do(func() {
		ec.decision = ec.validate(ctx, ec.Envelope().Token)
	})
	return ec.decision
}

func (ec *EdgeContext) validate(ctx context.Context, token string) core.TrustDecision {
	if token == "" {
		return core.Invalid{}
	}

	ctx, span := ec.tracer.StartSpan(ctx, SpanValidateToken)
	defer span.Finish()

	start := time.Now()
	decision := ec.validator.Validate(ctx, token)
	if decision == nil {
		decision = core.Invalid{}
	}

	result := "invalid"
	if core.IsValid(decision) {
		result = "valid"
	}
	span.SetTag("result", result)

	ec.metrics.IncCounter(MetricTokenValidations, map[string]string{"result": result})
	ec.metrics.ObserveHistogram(MetricTokenValidationSeconds, time.Since(start).Seconds(), nil)

	return decision
}

// User returns the requesting user view.
func (ec *EdgeContext) User(ctx context.Context) User {
	ec.userOnce.Do(func() {
		env := ec.Envelope()
		ec.user = User{
			decision:         ec.TrustDecision(ctx),
			visitorID:        env.VisitorID,
			visitorCreatedMS: copyInt64(env.VisitorCreatedMS),
		}
	})
	return ec.user
}

// OAuthClient returns the OAuth client view.
func (ec *EdgeContext) OAuthClient(ctx context.Context) OAuthClient {
	ec.oauthClientOnce.Do(func() {
		ec.oauthClient = OAuthClient{decision: ec.TrustDecision(ctx)}
	})
	return ec.oauthClient
}

// Service returns the inter-service identity view.
func (ec *EdgeContext) Service(ctx context.Context) Service {
	ec.serviceOnce.Do(func() {
		ec.service = Service{decision: ec.TrustDecision(ctx)}
	})
	return ec.service
}

// Session returns the session view. It does not depend on authentication.
func (ec *EdgeContext) Session() Session {
	ec.sessionOnce.Do(func() {
		ec.session = Session{id: ec.Envelope().SessionID}
	})
	return ec.session
}

// EventFields returns flat telemetry fields: session_id plus the user and
// OAuth client fields. It never fails; absent values are nil.
func (ec *EdgeContext) EventFields(ctx context.Context) map[string]any {
	fields := map[string]any{
		"session_id": nilIfEmpty(ec.Session().ID()),
	}
	for k, v := range ec.User(ctx).EventFields() {
		fields[k] = v
	}
	for k, v := range ec.OAuthClient(ctx).EventFields() {
		fields[k] = v
	}
	return fields
}

// Attach records ec and its raw header in store.
func (ec *EdgeContext) Attach(store RequestContext) {
	store.SetEdgeContext(ec, ec.Header())
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
