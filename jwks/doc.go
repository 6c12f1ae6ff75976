/*
Package jwks supplies token verification keys from an issuer's JWKS endpoint.

Both Provider and CachingProvider implement core.KeySource, so they can stand
in for a secrets file when the authentication service publishes its keys over
HTTP. The keys are returned in the order the JWKS document lists them and
core.Core tries each in turn, which is how rotation works for JWKS: publish
the new key next to the old one, then drop the old one.

# Choosing a Provider

Provider fetches the key set on every call. Use it for tests and tools.

CachingProvider caches the key set (default TTL: 15 minutes) and refreshes it
in the background once 80% of the TTL has passed. A Cache-Control max-age
longer than the configured TTL is honoured, within [1s, 7d].

# Usage

	issuerURL, _ := url.Parse("https://auth.example.com/")

	provider, err := jwks.NewCachingProvider(
	    jwks.WithIssuerURL(issuerURL),
	    jwks.WithCacheTTL(5*time.Minute),
	)
	if err != nil {
	    log.Fatal(err)
	}

	c, err := core.New(
	    core.WithVerifier(v),
	    core.WithKeySource(provider),
	)

# Sharing the Cache

RedisCache keeps the key set in Redis so a fleet of replicas fetches it once:

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	cache, err := jwks.NewRedisCache(client, jwks.WithRedisTTL(10*time.Minute))
	if err != nil {
	    log.Fatal(err)
	}

	provider, err := jwks.NewCachingProvider(
	    jwks.WithIssuerURL(issuerURL),
	    jwks.WithCache(cache),
	)

Redis errors never fail a lookup; the cache falls back to the network.
*/
package jwks
