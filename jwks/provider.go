package jwks

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/auth0/go-edge-context/core"
	"github.com/auth0/go-edge-context/internal/oidc"
)

// Cache defines the interface for JWKS caching implementations.
type Cache interface {
	// Get retrieves a JWKS from the cache or fetches it if not cached.
	Get(ctx context.Context, jwksURI string) (jwk.Set, error)
}

// Provider fetches the JWKS of an issuer on every call. It implements
// core.KeySource; most deployments want CachingProvider instead.
type Provider struct {
	IssuerURL     *url.URL // Required unless CustomJWKSURI is set.
	CustomJWKSURI *url.URL // Optional.
	Client        *http.Client
}

var _ core.KeySource = (*Provider)(nil)

// NewProvider builds and returns a new *Provider.
//
// Example:
//
//	provider, err := jwks.NewProvider(
//	    jwks.WithIssuerURL(issuerURL),
//	    jwks.WithCustomClient(myHTTPClient),
//	)
func NewProvider(opts ...ProviderOption) (*Provider, error) {
	p := &Provider{
		Client: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if p.IssuerURL == nil && p.CustomJWKSURI == nil {
		return nil, fmt.Errorf("issuer URL is required (use WithIssuerURL or WithCustomJWKSURI)")
	}

	return p, nil
}

// Fetch discovers the JWKS URI (unless a custom one is set) and downloads
// the key set.
func (p *Provider) Fetch(ctx context.Context) (jwk.Set, error) {
	jwksURI := p.CustomJWKSURI
	if jwksURI == nil {
		wkEndpoints, err := oidc.GetWellKnownEndpointsFromIssuerURL(ctx, p.Client, *p.IssuerURL)
		if err != nil {
			return nil, err
		}

		jwksURI, err = url.Parse(wkEndpoints.JWKSURI)
		if err != nil {
			return nil, fmt.Errorf("could not parse JWKS URI from well known endpoints: %w", err)
		}
	}

	set, _, err := fetchWithCacheControl(ctx, p.Client, jwksURI.String())
	if err != nil {
		return nil, fmt.Errorf("could not fetch JWKS: %w", err)
	}

	return set, nil
}

// GetVersioned returns the keys of the issuer's JWKS in document order.
// The secret name is not used: an issuer publishes a single key set.
func (p *Provider) GetVersioned(ctx context.Context, _ string) (core.PublicKeySet, error) {
	set, err := p.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return publicKeys(set)
}

// CachingProvider serves an issuer's JWKS from a Cache, discovering the JWKS
// URI once. It implements core.KeySource and is safe for concurrent use.
type CachingProvider struct {
	cache      Cache
	issuerURL  *url.URL
	httpClient *http.Client

	jwksURIMu sync.Mutex
	jwksURI   string
}

var _ core.KeySource = (*CachingProvider)(nil)

// NewCachingProvider builds and returns a new CachingProvider.
//
// Accepts both ProviderOption and CachingProviderOption values, so the
// common options WithIssuerURL, WithCustomJWKSURI and WithCustomClient work
// without a wrapper.
//
// Example:
//
//	provider, err := jwks.NewCachingProvider(
//	    jwks.WithIssuerURL(issuerURL),
//	    jwks.WithCacheTTL(5*time.Minute),
//	    jwks.WithCache(redisCache),
//	)
func NewCachingProvider(opts ...any) (*CachingProvider, error) {
	config := &cachingProviderConfig{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cacheTTL:   defaultCacheTTL,
	}

	for _, opt := range opts {
		switch v := opt.(type) {
		case CachingProviderOption:
			if err := v(config); err != nil {
				return nil, fmt.Errorf("invalid option: %w", err)
			}
		case ProviderOption:
			tempProvider := &Provider{}
			if err := v(tempProvider); err != nil {
				return nil, fmt.Errorf("invalid option: %w", err)
			}

			if tempProvider.IssuerURL != nil {
				config.issuerURL = tempProvider.IssuerURL
			}
			if tempProvider.CustomJWKSURI != nil {
				config.customJWKSURI = tempProvider.CustomJWKSURI
			}
			if tempProvider.Client != nil {
				config.httpClient = tempProvider.Client
			}
		default:
			return nil, fmt.Errorf("invalid option type: %T (must be ProviderOption or CachingProviderOption)", opt)
		}
	}

	if config.issuerURL == nil && config.customJWKSURI == nil {
		return nil, fmt.Errorf("issuer URL is required (use WithIssuerURL or WithCustomJWKSURI)")
	}

	cp := &CachingProvider{
		issuerURL:  config.issuerURL,
		httpClient: config.httpClient,
		cache:      config.cache,
	}

	if config.customJWKSURI != nil {
		cp.jwksURI = config.customJWKSURI.String()
	}

	if cp.cache == nil {
		cp.cache = newMemoryCache(config.httpClient, config.cacheTTL)
	}

	return cp, nil
}

// getJWKSURI returns the JWKS URI, discovering it on first use. A failed
// discovery is retried on the next call.
func (c *CachingProvider) getJWKSURI(ctx context.Context) (string, error) {
	c.jwksURIMu.Lock()
	defer c.jwksURIMu.Unlock()

	if c.jwksURI != "" {
		return c.jwksURI, nil
	}

	wkEndpoints, err := oidc.GetWellKnownEndpointsFromIssuerURL(ctx, c.httpClient, *c.issuerURL)
	if err != nil {
		return "", fmt.Errorf("failed to discover JWKS URI: %w", err)
	}

	c.jwksURI = wkEndpoints.JWKSURI
	return c.jwksURI, nil
}

// Fetch returns the cached key set, refreshing it when the cache requires.
func (c *CachingProvider) Fetch(ctx context.Context) (jwk.Set, error) {
	jwksURI, err := c.getJWKSURI(ctx)
	if err != nil {
		return nil, err
	}

	return c.cache.Get(ctx, jwksURI)
}

// GetVersioned returns the keys of the cached JWKS in document order.
func (c *CachingProvider) GetVersioned(ctx context.Context, _ string) (core.PublicKeySet, error) {
	set, err := c.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return publicKeys(set)
}

// publicKeys converts a JWKS into a key set for core.Core, dropping any
// private material a misconfigured endpoint might publish.
func publicKeys(set jwk.Set) (core.PublicKeySet, error) {
	if set == nil || set.Len() == 0 {
		return nil, core.ErrKeySetEmpty
	}

	keys := make(core.PublicKeySet, 0, set.Len())
	for i := 0; i < set.Len(); i++ {
		key, ok := set.Key(i)
		if !ok {
			continue
		}

		pub, err := jwk.PublicKeyOf(key)
		if err != nil {
			return nil, fmt.Errorf("JWKS key %d has no public key: %w", i, err)
		}
		keys = append(keys, pub)
	}

	return keys, nil
}
