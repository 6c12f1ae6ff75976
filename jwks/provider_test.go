package jwks

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auth0/go-edge-context/core"
	"github.com/auth0/go-edge-context/internal/oidc"
)

func Test_JWKSProvider(t *testing.T) {
	var requestCount int32

	expectedJWKS, err := generateJWKS("kid")
	require.NoError(t, err)

	expectedCustomJWKS, err := generateJWKS("custom-kid")
	require.NoError(t, err)

	testServer := setupTestServer(t, expectedJWKS, expectedCustomJWKS, &requestCount)
	defer testServer.Close()

	testServerURL, err := url.Parse(testServer.URL)
	require.NoError(t, err)

	t.Run("It fetches the JWKS after calling the discovery endpoint", func(t *testing.T) {
		provider, err := NewProvider(WithIssuerURL(testServerURL))
		require.NoError(t, err)

		set, err := provider.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"kid"}, keyIDs(t, set))
	})

	t.Run("It skips the discovery if a custom JWKS_URI is provided", func(t *testing.T) {
		customJWKSURI, err := url.Parse(testServer.URL + "/custom/jwks.json")
		require.NoError(t, err)

		provider, err := NewProvider(WithCustomJWKSURI(customJWKSURI))
		require.NoError(t, err)

		set, err := provider.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"custom-kid"}, keyIDs(t, set))
	})

	t.Run("It returns public keys only", func(t *testing.T) {
		provider, err := NewProvider(WithIssuerURL(testServerURL))
		require.NoError(t, err)

		keys, err := provider.GetVersioned(context.Background(), core.DefaultSecretName)
		require.NoError(t, err)
		require.Len(t, keys, 1)

		_, ok := keys[0].(jwk.RSAPublicKey)
		assert.True(t, ok, "expected an RSA public key, got %T", keys[0])
	})

	t.Run("It uses the specified custom client", func(t *testing.T) {
		client := &http.Client{Timeout: time.Hour}
		provider, err := NewProvider(
			WithIssuerURL(testServerURL),
			WithCustomClient(client),
		)
		require.NoError(t, err)
		assert.Equal(t, client, provider.Client)
	})

	t.Run("It stops fetching when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 0)
		defer cancel()

		provider, err := NewProvider(WithIssuerURL(testServerURL))
		require.NoError(t, err)

		_, err = provider.Fetch(ctx)
		assert.ErrorContains(t, err, "context deadline exceeded")
	})

	t.Run("It fails when the discovered jwks uri is malformed", func(t *testing.T) {
		malformedURL, err := url.Parse(testServer.URL + "/malformed")
		require.NoError(t, err)

		provider, err := NewProvider(WithIssuerURL(malformedURL))
		require.NoError(t, err)

		_, err = provider.Fetch(context.Background())
		assert.ErrorContains(t, err, "could not parse JWKS URI from well known endpoints")
	})

	t.Run("It requires an issuer or a JWKS URI", func(t *testing.T) {
		_, err := NewProvider()
		assert.ErrorContains(t, err, "issuer URL is required")

		_, err = NewCachingProvider(WithCacheTTL(5 * time.Minute))
		assert.ErrorContains(t, err, "issuer URL is required")
	})

	t.Run("CachingProvider only calls the API once under concurrent use", func(t *testing.T) {
		atomic.StoreInt32(&requestCount, 0)

		provider, err := NewCachingProvider(
			WithIssuerURL(testServerURL),
			WithCacheTTL(5*time.Minute),
		)
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = provider.GetVersioned(context.Background(), core.DefaultSecretName)
			}()
		}
		wg.Wait()

		// Discovery plus one JWKS fetch.
		assert.LessOrEqual(t, atomic.LoadInt32(&requestCount), int32(2))
	})

	t.Run("CachingProvider refetches after the TTL", func(t *testing.T) {
		atomic.StoreInt32(&requestCount, 0)

		provider, err := NewCachingProvider(
			WithIssuerURL(testServerURL),
			WithCacheTTL(100*time.Millisecond),
		)
		require.NoError(t, err)

		_, err = provider.Fetch(context.Background())
		require.NoError(t, err)
		first := atomic.LoadInt32(&requestCount)

		time.Sleep(150 * time.Millisecond)

		_, err = provider.Fetch(context.Background())
		require.NoError(t, err)
		assert.Greater(t, atomic.LoadInt32(&requestCount), first)
	})

	t.Run("CachingProvider serves repeated calls from the cache", func(t *testing.T) {
		provider, err := NewCachingProvider(
			WithIssuerURL(testServerURL),
			WithCacheTTL(time.Minute),
		)
		require.NoError(t, err)

		_, err = provider.Fetch(context.Background())
		require.NoError(t, err)
		initial := atomic.LoadInt32(&requestCount)

		for i := 0; i < 5; i++ {
			_, err := provider.Fetch(context.Background())
			require.NoError(t, err)
		}
		assert.Equal(t, initial, atomic.LoadInt32(&requestCount))
	})

	t.Run("CachingProvider uses a custom cache", func(t *testing.T) {
		jwksURL, _ := url.Parse("https://example.com/jwks")
		cache := &mockCache{jwks: expectedJWKS}

		provider, err := NewCachingProvider(
			WithCustomJWKSURI(jwksURL),
			WithCache(cache),
		)
		require.NoError(t, err)

		keys, err := provider.GetVersioned(context.Background(), core.DefaultSecretName)
		require.NoError(t, err)
		assert.Len(t, keys, 1)
		assert.Equal(t, []string{"https://example.com/jwks"}, cache.uris)
	})

	t.Run("CachingProvider propagates cache errors", func(t *testing.T) {
		jwksURL, _ := url.Parse("https://example.com/jwks")

		provider, err := NewCachingProvider(
			WithCustomJWKSURI(jwksURL),
			WithCache(&mockErrorCache{err: fmt.Errorf("cache error")}),
		)
		require.NoError(t, err)

		_, err = provider.GetVersioned(context.Background(), core.DefaultSecretName)
		assert.ErrorContains(t, err, "cache error")
	})

	t.Run("CachingProvider retries discovery after a failure", func(t *testing.T) {
		var fail atomic.Bool
		fail.Store(true)

		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/.well-known/openid-configuration":
				if fail.Load() {
					w.WriteHeader(http.StatusServiceUnavailable)
					return
				}
				_ = json.NewEncoder(w).Encode(oidc.WellKnownEndpoints{JWKSURI: server.URL + "/jwks.json"})
			default:
				_ = json.NewEncoder(w).Encode(expectedJWKS)
			}
		}))
		defer server.Close()

		serverURL, _ := url.Parse(server.URL)
		provider, err := NewCachingProvider(WithIssuerURL(serverURL))
		require.NoError(t, err)

		_, err = provider.Fetch(context.Background())
		assert.ErrorContains(t, err, "failed to discover JWKS URI")

		fail.Store(false)
		_, err = provider.Fetch(context.Background())
		assert.NoError(t, err)
	})

	t.Run("It reports JWKS fetch errors", func(t *testing.T) {
		var errorServer *httptest.Server
		errorServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/.well-known/openid-configuration" {
				_ = json.NewEncoder(w).Encode(oidc.WellKnownEndpoints{JWKSURI: errorServer.URL + "/jwks.json"})
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer errorServer.Close()

		errorServerURL, _ := url.Parse(errorServer.URL)

		provider, err := NewProvider(WithIssuerURL(errorServerURL))
		require.NoError(t, err)
		_, err = provider.Fetch(context.Background())
		assert.ErrorContains(t, err, "could not fetch JWKS")

		caching, err := NewCachingProvider(WithIssuerURL(errorServerURL))
		require.NoError(t, err)
		_, err = caching.Fetch(context.Background())
		assert.ErrorContains(t, err, "could not fetch JWKS")
	})

	t.Run("It reports an empty key set", func(t *testing.T) {
		jwksURL, _ := url.Parse("https://example.com/jwks")

		provider, err := NewCachingProvider(
			WithCustomJWKSURI(jwksURL),
			WithCache(&mockCache{jwks: jwk.NewSet()}),
		)
		require.NoError(t, err)

		_, err = provider.GetVersioned(context.Background(), core.DefaultSecretName)
		assert.ErrorIs(t, err, core.ErrKeySetEmpty)
	})
}

func TestOptions(t *testing.T) {
	issuerURL, _ := url.Parse("https://example.com")

	testCases := []struct {
		name    string
		opts    []any
		wantErr string
	}{
		{name: "nil issuer", opts: []any{WithIssuerURL(nil)}, wantErr: "issuer URL cannot be nil"},
		{name: "nil jwks uri", opts: []any{WithIssuerURL(issuerURL), WithCustomJWKSURI(nil)}, wantErr: "custom JWKS URI cannot be nil"},
		{name: "nil client", opts: []any{WithIssuerURL(issuerURL), WithCustomClient(nil)}, wantErr: "HTTP client cannot be nil"},
		{name: "negative ttl", opts: []any{WithIssuerURL(issuerURL), WithCacheTTL(-time.Second)}, wantErr: "cache TTL cannot be negative"},
		{name: "nil cache", opts: []any{WithIssuerURL(issuerURL), WithCache(nil)}, wantErr: "cache cannot be nil"},
		{name: "wrong option type", opts: []any{WithIssuerURL(issuerURL), "invalid_option"}, wantErr: "invalid option type: string"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			provider, err := NewCachingProvider(testCase.opts...)
			assert.Nil(t, provider)
			assert.ErrorContains(t, err, testCase.wantErr)
		})
	}

	t.Run("zero ttl selects the default", func(t *testing.T) {
		provider, err := NewCachingProvider(WithIssuerURL(issuerURL), WithCacheTTL(0))
		require.NoError(t, err)

		cache, ok := provider.cache.(*memoryCache)
		require.True(t, ok)
		assert.Equal(t, defaultCacheTTL, cache.refreshTTL)
	})
}

func TestParseCacheControl(t *testing.T) {
	testCases := []struct {
		header string
		want   time.Duration
	}{
		{header: "max-age=3600", want: time.Hour},
		{header: "public, max-age=60, must-revalidate", want: time.Minute},
		{header: "no-cache", want: 0},
		{header: "max-age=abc", want: 0},
		{header: "max-age=-5", want: 0},
		{header: "max-age=31536000", want: 0},
	}

	for _, testCase := range testCases {
		t.Run(testCase.header, func(t *testing.T) {
			assert.Equal(t, testCase.want, parseCacheControl(testCase.header))
		})
	}
}

func TestEffectiveTTL(t *testing.T) {
	assert.Equal(t, time.Minute, effectiveTTL(time.Minute, 0))
	assert.Equal(t, time.Hour, effectiveTTL(time.Minute, time.Hour))
	assert.Equal(t, time.Hour, effectiveTTL(time.Hour, time.Minute))
}

type mockCache struct {
	mu   sync.Mutex
	jwks jwk.Set
	uris []string
}

func (m *mockCache) Get(_ context.Context, jwksURI string) (jwk.Set, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uris = append(m.uris, jwksURI)
	return m.jwks, nil
}

type mockErrorCache struct {
	err error
}

func (m *mockErrorCache) Get(context.Context, string) (jwk.Set, error) {
	return nil, m.err
}

func keyIDs(t *testing.T, set jwk.Set) []string {
	t.Helper()

	ids := make([]string, 0, set.Len())
	for i := 0; i < set.Len(); i++ {
		key, ok := set.Key(i)
		require.True(t, ok)
		kid, ok := key.KeyID()
		require.True(t, ok)
		ids = append(ids, kid)
	}
	return ids
}

// generateJWKS publishes a private key on purpose: providers must strip it.
func generateJWKS(kid string) (jwk.Set, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}

	key, err := jwk.Import(privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWK: %w", err)
	}

	if err := key.Set(jwk.KeyIDKey, kid); err != nil {
		return nil, fmt.Errorf("failed to set key ID: %w", err)
	}

	set := jwk.NewSet()
	if err := set.AddKey(key); err != nil {
		return nil, fmt.Errorf("failed to add key to set: %w", err)
	}

	return set, nil
}

func setupTestServer(
	t *testing.T,
	expectedJWKS jwk.Set,
	expectedCustomJWKS jwk.Set,
	requestCount *int32,
) (server *httptest.Server) {
	t.Helper()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requestCount, 1)

		switch r.URL.String() {
		case "/malformed/.well-known/openid-configuration":
			_ = json.NewEncoder(w).Encode(oidc.WellKnownEndpoints{JWKSURI: ":"})
		case "/.well-known/openid-configuration":
			_ = json.NewEncoder(w).Encode(oidc.WellKnownEndpoints{JWKSURI: server.URL + "/.well-known/jwks.json"})
		case "/.well-known/jwks.json":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(expectedJWKS)
		case "/custom/jwks.json":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(expectedCustomJWKS)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	server = httptest.NewServer(handler)
	return server
}
