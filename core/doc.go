/*
Package core provides the framework-agnostic token validation engine behind
edge contexts.

The Core type turns a raw authentication token into a TrustDecision. It has
no knowledge of transports, envelopes or identity views; those live in the
root package.

# Architecture

	┌─────────────────────────────────────────────┐
	│   EdgeContext (lazy, memoized, per request) │
	└────────────────┬────────────────────────────┘
	                 │ first access to identity
	                 ▼
	┌─────────────────────────────────────────────┐
	│          Core Engine (THIS PACKAGE)         │
	│  • empty token short-circuit                │
	│  • key rotation (ordered key trial)         │
	│  • Valid / Invalid decision                 │
	└───────┬──────────────────────────┬──────────┘
	        │                          │
	        ▼                          ▼
	┌──────────────────┐     ┌──────────────────┐
	│    KeySource     │     │     Verifier     │
	│ (secrets, jwks)  │     │   (validator)    │
	└──────────────────┘     └──────────────────┘

# Basic Usage

	store, err := secrets.LoadFile("/var/local/secrets.json")
	if err != nil {
	    log.Fatal(err)
	}

	v, err := validator.New(validator.WithAlgorithm(validator.RS256))
	if err != nil {
	    log.Fatal(err)
	}

	c, err := core.New(
	    core.WithVerifier(v),
	    core.WithKeySource(store),
	)
	if err != nil {
	    log.Fatal(err)
	}

	switch d := c.Validate(ctx, rawToken).(type) {
	case core.Valid:
	    fmt.Println("subject:", d.Subject())
	case core.Invalid:
	    fmt.Println("anonymous request")
	}

# Key Rotation

Keys are tried in the order the KeySource returns them. The first key that
verifies the token wins, so tokens signed with a retiring key keep working
until they expire. Expired tokens, malformed tokens and signature mismatches
are expected outcomes of rotation and never surface as errors.

# Error Handling

Validate never returns an error. ErrAuthenticationAbsent is the condition
identity views report when the decision is Invalid, and ValidationError
carries the per-key failure reason reported by a Verifier.
*/
package core
