package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// maxDiscoveryDocumentSize bounds the discovery response read into memory.
const maxDiscoveryDocumentSize = 1 << 20

// WellKnownEndpoints holds the well known OIDC endpoints
type WellKnownEndpoints struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

// GetWellKnownEndpointsFromIssuerURL gets the well known endpoints for the
// passed in issuer url. The document's issuer must match the issuer the
// caller asked for, ignoring a trailing slash.
func GetWellKnownEndpointsFromIssuerURL(
	ctx context.Context,
	client *http.Client,
	issuerURL url.URL,
) (*WellKnownEndpoints, error) {
	if client == nil {
		client = http.DefaultClient
	}
	expectedIssuer := issuerURL.String()

	issuerURL.Path = path.Join(issuerURL.Path, ".well-known/openid-configuration")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, issuerURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not build request to get well known endpoints: %w", err)
	}

	r, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not get well known endpoints from url %s: %w", issuerURL.String(), err)
	}
	defer r.Body.Close()

	if r.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("could not get well known endpoints from url %s: status %d", issuerURL.String(), r.StatusCode)
	}

	var wkEndpoints WellKnownEndpoints
	if err := json.NewDecoder(io.LimitReader(r.Body, maxDiscoveryDocumentSize)).Decode(&wkEndpoints); err != nil {
		return nil, fmt.Errorf("could not decode json body when getting well known endpoints: %w", err)
	}

	if wkEndpoints.JWKSURI == "" {
		return nil, fmt.Errorf("well known endpoints from url %s have no jwks_uri", issuerURL.String())
	}

	if wkEndpoints.Issuer != "" && !sameIssuer(wkEndpoints.Issuer, expectedIssuer) {
		return nil, fmt.Errorf("issuer mismatch: discovery document is for %q, expected %q", wkEndpoints.Issuer, expectedIssuer)
	}

	return &wkEndpoints, nil
}

func sameIssuer(a, b string) bool {
	return strings.TrimSuffix(a, "/") == strings.TrimSuffix(b, "/")
}
