package jwks

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ProviderOption is how options for the Provider are set up.
type ProviderOption func(*Provider) error

// WithIssuerURL sets the OIDC issuer whose discovery document names the
// JWKS endpoint.
func WithIssuerURL(issuerURL *url.URL) ProviderOption {
	return func(p *Provider) error {
		if issuerURL == nil {
			return fmt.Errorf("issuer URL cannot be nil")
		}
		p.IssuerURL = issuerURL
		return nil
	}
}

// WithCustomJWKSURI fetches keys from jwksURI directly, skipping discovery.
func WithCustomJWKSURI(jwksURI *url.URL) ProviderOption {
	return func(p *Provider) error {
		if jwksURI == nil {
			return fmt.Errorf("custom JWKS URI cannot be nil")
		}
		p.CustomJWKSURI = jwksURI
		return nil
	}
}

// WithCustomClient sets a custom HTTP client for the Provider.
// If not specified, a default client with 30s timeout is used.
func WithCustomClient(c *http.Client) ProviderOption {
	return func(p *Provider) error {
		if c == nil {
			return fmt.Errorf("HTTP client cannot be nil")
		}
		p.Client = c
		return nil
	}
}

// CachingProviderOption is how options specific to the CachingProvider are
// set up.
type CachingProviderOption func(*cachingProviderConfig) error

type cachingProviderConfig struct {
	issuerURL     *url.URL
	customJWKSURI *url.URL
	httpClient    *http.Client
	cacheTTL      time.Duration
	cache         Cache
}

// WithCacheTTL sets the refresh interval of the in-memory cache.
// Zero selects the default of 15 minutes. Ignored when WithCache is used.
func WithCacheTTL(ttl time.Duration) CachingProviderOption {
	return func(c *cachingProviderConfig) error {
		if ttl < 0 {
			return fmt.Errorf("cache TTL cannot be negative")
		}
		if ttl == 0 {
			ttl = defaultCacheTTL
		}
		c.cacheTTL = ttl
		return nil
	}
}

// WithCache replaces the in-memory cache, for example with a RedisCache.
func WithCache(cache Cache) CachingProviderOption {
	return func(c *cachingProviderConfig) error {
		if cache == nil {
			return fmt.Errorf("cache cannot be nil")
		}
		c.cache = cache
		return nil
	}
}
