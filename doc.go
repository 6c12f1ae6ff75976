/*
Package edgecontext carries verified request identity between services.

An edge service (a gateway or the first service a client talks to) builds an
EdgeContext from the raw authentication token, the visitor (loid) cookie and
the session id, and serializes it into a compact header. Every service further
down the call chain reads that header back and gets the same identity: the
authenticated user, the OAuth client, a calling service, and the session.

Nothing is decoded or verified until it is asked for. The first call to
User, OAuthClient or Service validates the token; later calls, from any
goroutine, reuse the stored result.

# Quick Start

	import (
	    "github.com/auth0/go-edge-context"
	    "github.com/auth0/go-edge-context/core"
	    "github.com/auth0/go-edge-context/secrets"
	    "github.com/auth0/go-edge-context/validator"
	)

	func main() {
	    store, err := secrets.LoadFile("/var/local/secrets.yaml")
	    if err != nil {
	        log.Fatal(err)
	    }

	    v, err := validator.New(validator.WithAlgorithm(validator.RS256))
	    if err != nil {
	        log.Fatal(err)
	    }

	    c, err := core.New(core.WithVerifier(v), core.WithKeySource(store))
	    if err != nil {
	        log.Fatal(err)
	    }

	    factory, err := edgecontext.NewFactory(edgecontext.WithTokenValidator(c))
	    if err != nil {
	        log.Fatal(err)
	    }

	    mw, err := edgecontext.NewMiddleware(factory)
	    if err != nil {
	        log.Fatal(err)
	    }

	    http.ListenAndServe(":8080", mw.Handler(apiHandler))
	}

# Reading Identity

	func handler(w http.ResponseWriter, r *http.Request) {
	    ec := edgecontext.MustFromContext(r.Context())

	    user := ec.User(r.Context())
	    if !user.IsLoggedIn() {
	        http.Error(w, "login required", http.StatusUnauthorized)
	        return
	    }

	    isAdmin, _ := user.HasRole("admin")
	    ...
	}

Accessors that need a verified token return ErrAuthenticationAbsent when the
request carries no valid token. Accessors that do not (VisitorID, Session)
never fail.

# Creating Edge Contexts

Edge services create contexts from their own inputs:

	ec, err := factory.NewFromParts(ctx, edgecontext.Parts{
	    Token:     rawToken,
	    VisitorID: "t2_abc",
	    SessionID: sessionID,
	})

and downstream services rebuild them from the header:

	ec := factory.FromUpstream(rawHeaderBytes)
	ec := factory.FromHeaderValue(r.Header.Get(edgecontext.HeaderName))

A malformed header never fails a request. It behaves like an empty one, is
logged at debug level and counted in edgecontext_header_decode_failures_total.

# Forwarding

Use Transport (or Inject) to pass the header on to the next service:

	client := &http.Client{Transport: &edgecontext.Transport{}}

# Logging

The Logger interface matches log/slog. Adapters exist for zap, zerolog and
logrus:

	factory, _ := edgecontext.NewFactory(
	    edgecontext.WithTokenValidator(c),
	    edgecontext.WithLogger(edgecontext.NewZapLogger(zapLogger.Sugar())),
	)

# Metrics and Tracing

	factory, _ := edgecontext.NewFactory(
	    edgecontext.WithTokenValidator(c),
	    edgecontext.WithMetrics(edgecontext.NewPrometheusMetrics(nil)),
	    edgecontext.WithTracer(edgecontext.NewOpenTelemetryTracer(otel.Tracer("edgecontext"))),
	)

Token validation is reported as edgecontext_token_validations_total{result}
and edgecontext_token_validation_seconds, inside an
"edgecontext.validate_token" span.
*/
package edgecontext
