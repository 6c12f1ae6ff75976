package jwks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
)

const (
	defaultCacheTTL = 15 * time.Minute

	// maxJWKSSize bounds the response body; real key sets are a few KB.
	maxJWKSSize = 1 << 20
)

// memoryCache keeps key sets in process memory and refreshes them in the
// background once 80% of their TTL has passed.
type memoryCache struct {
	httpClient *http.Client
	cacheMu    sync.RWMutex
	cache      map[string]*cachedJWKS
	refreshTTL time.Duration
}

type cachedJWKS struct {
	set        jwk.Set
	expiresAt  time.Time
	refreshAt  time.Time
	refreshing atomic.Bool
	fetchMu    sync.Mutex
}

func newMemoryCache(httpClient *http.Client, ttl time.Duration) *memoryCache {
	return &memoryCache{
		httpClient: httpClient,
		cache:      make(map[string]*cachedJWKS),
		refreshTTL: ttl,
	}
}

func (c *memoryCache) Get(ctx context.Context, jwksURI string) (jwk.Set, error) {
	now := time.Now()

	c.cacheMu.RLock()
	cached, exists := c.cache[jwksURI]
	if exists && now.Before(cached.expiresAt) {
		result := cached.set
		shouldRefresh := now.After(cached.refreshAt)
		c.cacheMu.RUnlock()

		if shouldRefresh && cached.refreshing.CompareAndSwap(false, true) {
			go c.backgroundRefresh(jwksURI, cached)
		}

		return result, nil
	}
	c.cacheMu.RUnlock()

	if !exists {
		c.cacheMu.Lock()
		cached, exists = c.cache[jwksURI]
		if !exists {
			cached = &cachedJWKS{}
			c.cache[jwksURI] = cached
		}
		c.cacheMu.Unlock()
	}

	// One fetch per URI; waiters re-check the entry once they hold the lock.
	cached.fetchMu.Lock()
	defer cached.fetchMu.Unlock()

	c.cacheMu.RLock()
	isValid := now.Before(cached.expiresAt)
	result := cached.set
	c.cacheMu.RUnlock()

	if isValid {
		return result, nil
	}

	set, cacheTTL, err := fetchWithCacheControl(ctx, c.httpClient, jwksURI)
	if err != nil {
		return nil, fmt.Errorf("could not fetch JWKS: %w", err)
	}

	c.store(cached, set, cacheTTL)
	return set, nil
}

func (c *memoryCache) store(cached *cachedJWKS, set jwk.Set, cacheTTL time.Duration) {
	ttl := effectiveTTL(c.refreshTTL, cacheTTL)
	now := time.Now()

	c.cacheMu.Lock()
	cached.set = set
	cached.expiresAt = now.Add(ttl)
	cached.refreshAt = now.Add(ttl * 4 / 5)
	c.cacheMu.Unlock()
}

func (c *memoryCache) backgroundRefresh(jwksURI string, cached *cachedJWKS) {
	defer cached.refreshing.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	set, cacheTTL, err := fetchWithCacheControl(ctx, c.httpClient, jwksURI)
	if err != nil {
		return
	}

	c.store(cached, set, cacheTTL)
}

// effectiveTTL prefers the server's max-age when it allows caching for longer
// than configured.
func effectiveTTL(configured, fromServer time.Duration) time.Duration {
	if fromServer > 0 && configured < fromServer {
		return fromServer
	}
	return configured
}

// fetchWithCacheControl downloads a JWKS and returns the max-age the server
// sent with it, or 0.
func fetchWithCacheControl(ctx context.Context, client *http.Client, jwksURI string) (jwk.Set, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURI, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("request returned status %d, expected 200", resp.StatusCode)
	}

	var cacheTTL time.Duration
	if cacheControl := resp.Header.Get("Cache-Control"); cacheControl != "" {
		cacheTTL = parseCacheControl(cacheControl)
	}

	set, err := jwk.ParseReader(io.LimitReader(resp.Body, maxJWKSSize))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse JWKS: %w", err)
	}

	return set, cacheTTL, nil
}

// parseCacheControl extracts max-age from a Cache-Control header. Values
// outside [1s, 7d] are ignored and 0 is returned.
func parseCacheControl(cacheControl string) time.Duration {
	const (
		maxAgePrefix = "max-age="
		minTTL       = 1 * time.Second
		maxTTL       = 7 * 24 * time.Hour
	)

	for _, directive := range strings.Split(cacheControl, ",") {
		directive = strings.TrimSpace(directive)
		if !strings.HasPrefix(directive, maxAgePrefix) {
			continue
		}

		seconds, err := strconv.ParseInt(strings.TrimPrefix(directive, maxAgePrefix), 10, 64)
		if err != nil || seconds <= 0 {
			continue
		}

		ttl := time.Duration(seconds) * time.Second
		if ttl < minTTL || ttl > maxTTL {
			return 0
		}
		return ttl
	}

	return 0
}
