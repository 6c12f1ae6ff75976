package main

import (
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/redis/go-redis/v9"

	edgecontext "github.com/auth0/go-edge-context"
	"github.com/auth0/go-edge-context/core"
	"github.com/auth0/go-edge-context/jwks"
	"github.com/auth0/go-edge-context/secrets"
	"github.com/auth0/go-edge-context/validator"
)

var errNoKeySource = errors.New("no key source configured, set --secrets, --jwks-url or --issuer-url")

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// keySource builds the key source selected by configuration. JWKS endpoints
// take precedence over a secrets file.
func (a *app) keySource() (core.KeySource, io.Closer, error) {
	jwksURL := a.v.GetString(JWKSURLKey)
	issuerURL := a.v.GetString(IssuerURLKey)

	if jwksURL == "" && issuerURL == "" {
		path := a.v.GetString(SecretsFileKey)
		if path == "" {
			return nil, nil, errNoKeySource
		}

		store, err := secrets.LoadFile(path)
		if err != nil {
			return nil, nil, err
		}
		a.logger.Debug().Str("path", path).Msg("loaded secrets file")
		return store, nopCloser{}, nil
	}

	var opts []any
	if jwksURL != "" {
		u, err := url.Parse(jwksURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid JWKS URL: %w", err)
		}
		opts = append(opts, jwks.WithCustomJWKSURI(u))
	}
	if issuerURL != "" {
		u, err := url.Parse(issuerURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid issuer URL: %w", err)
		}
		opts = append(opts, jwks.WithIssuerURL(u))
	}

	var closer io.Closer = nopCloser{}
	if addr := a.v.GetString(RedisAddrKey); addr != "" {
		cache, err := jwks.NewRedisCache(
			redis.NewClient(&redis.Options{Addr: addr}),
			jwks.WithRedisLogger(edgecontext.NewZerologLogger(a.logger)),
		)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, jwks.WithCache(cache))
		closer = cache
	}

	provider, err := jwks.NewCachingProvider(opts...)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return provider, closer, nil
}

// newCore wires the configured key source into a token validation engine.
func (a *app) newCore(keys core.KeySource) (*core.Core, error) {
	v, err := validator.New(
		validator.WithAlgorithm(validator.SignatureAlgorithm(a.v.GetString(AlgorithmKey))),
	)
	if err != nil {
		return nil, err
	}

	return core.New(
		core.WithVerifier(v),
		core.WithKeySource(keys),
		core.WithSecretName(a.v.GetString(SecretNameKey)),
		core.WithLogger(edgecontext.NewZerologLogger(a.logger)),
	)
}
