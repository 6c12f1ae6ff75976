package jwks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/redis/go-redis/v9"

	"github.com/auth0/go-edge-context/core"
)

// RedisCache implements Cache on top of Redis so that every replica of a
// service shares one copy of the issuer's key set.
type RedisCache struct {
	client     redis.UniversalClient
	ttl        time.Duration
	keyPrefix  string
	httpClient *http.Client
	logger     core.Logger
}

var _ Cache = (*RedisCache)(nil)

// RedisCacheOption configures a RedisCache.
type RedisCacheOption func(*RedisCache) error

// WithRedisTTL sets how long a fetched key set stays in Redis. A longer
// max-age sent by the JWKS endpoint wins. Default: 15 minutes.
func WithRedisTTL(ttl time.Duration) RedisCacheOption {
	return func(c *RedisCache) error {
		if ttl <= 0 {
			return errors.New("redis TTL must be positive")
		}
		c.ttl = ttl
		return nil
	}
}

// WithRedisKeyPrefix namespaces the Redis keys. Default: "edgecontext:jwks:".
func WithRedisKeyPrefix(prefix string) RedisCacheOption {
	return func(c *RedisCache) error {
		c.keyPrefix = prefix
		return nil
	}
}

// WithRedisHTTPClient sets the client used to fetch key sets on a miss.
func WithRedisHTTPClient(client *http.Client) RedisCacheOption {
	return func(c *RedisCache) error {
		if client == nil {
			return errors.New("HTTP client cannot be nil")
		}
		c.httpClient = client
		return nil
	}
}

// WithRedisLogger logs Redis failures. The cache falls back to the network
// on any Redis error, so these are the only trace of an unhealthy Redis.
func WithRedisLogger(logger core.Logger) RedisCacheOption {
	return func(c *RedisCache) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// NewRedisCache creates a Redis backed JWKS cache.
func NewRedisCache(client redis.UniversalClient, opts ...RedisCacheOption) (*RedisCache, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	c := &RedisCache{
		client:     client,
		ttl:        defaultCacheTTL,
		keyPrefix:  "edgecontext:jwks:",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	return c, nil
}

// Get retrieves the JWKS from Redis or fetches and stores it.
func (c *RedisCache) Get(ctx context.Context, jwksURI string) (jwk.Set, error) {
	key := c.keyPrefix + jwksURI

	cached, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		set, err := jwk.Parse(cached)
		if err == nil {
			return set, nil
		}
		c.warn("could not parse cached JWKS", "key", key, "error", err)
	case !errors.Is(err, redis.Nil):
		c.warn("could not read JWKS from redis", "key", key, "error", err)
	}

	set, cacheTTL, err := fetchWithCacheControl(ctx, c.httpClient, jwksURI)
	if err != nil {
		return nil, fmt.Errorf("could not fetch JWKS: %w", err)
	}

	data, err := json.Marshal(set)
	if err != nil {
		c.warn("could not marshal JWKS for caching", "error", err)
		return set, nil
	}

	if err := c.client.Set(ctx, key, data, effectiveTTL(c.ttl, cacheTTL)).Err(); err != nil {
		c.warn("could not write JWKS to redis", "key", key, "error", err)
	}

	return set, nil
}

// Close closes the underlying Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
