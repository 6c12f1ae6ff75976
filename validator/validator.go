package validator

import (
	"context"
	"crypto"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/auth0/go-edge-context/core"
)

// Signature algorithms
const (
	EdDSA = SignatureAlgorithm("EdDSA")
	RS256 = SignatureAlgorithm("RS256") // RSASSA-PKCS-v1.5 using SHA-256
	RS384 = SignatureAlgorithm("RS384") // RSASSA-PKCS-v1.5 using SHA-384
	RS512 = SignatureAlgorithm("RS512") // RSASSA-PKCS-v1.5 using SHA-512
	ES256 = SignatureAlgorithm("ES256") // ECDSA using P-256 and SHA-256
	ES384 = SignatureAlgorithm("ES384") // ECDSA using P-384 and SHA-384
	ES512 = SignatureAlgorithm("ES512") // ECDSA using P-521 and SHA-512
	PS256 = SignatureAlgorithm("PS256") // RSASSA-PSS using SHA256 and MGF1-SHA256
	PS384 = SignatureAlgorithm("PS384") // RSASSA-PSS using SHA384 and MGF1-SHA384
	PS512 = SignatureAlgorithm("PS512") // RSASSA-PSS using SHA512 and MGF1-SHA512
)

// SignatureAlgorithm is a signature algorithm.
type SignatureAlgorithm string

// Only asymmetric algorithms: downstream services hold public keys, never
// the signing secret.
var allowedSigningAlgorithms = map[SignatureAlgorithm]bool{
	EdDSA: true,
	RS256: true,
	RS384: true,
	RS512: true,
	ES256: true,
	ES384: true,
	ES512: true,
	PS256: true,
	PS384: true,
	PS512: true,
}

// Validator verifies authentication tokens against one public key at a time.
// It implements core.Verifier.
type Validator struct {
	signatureAlgorithm SignatureAlgorithm
	jwxAlgorithm       jwa.SignatureAlgorithm
	issuer             string        // Optional.
	audience           string        // Optional.
	allowedClockSkew   time.Duration // Optional.
}

var _ core.Verifier = (*Validator)(nil)

// New sets up a new Validator. With no options tokens must be RS256 signed.
//
// Example:
//
//	v, err := validator.New(
//	    validator.WithAlgorithm(validator.RS256),
//	    validator.WithAllowedClockSkew(30*time.Second),
//	)
func New(opts ...Option) (*Validator, error) {
	v := &Validator{
		signatureAlgorithm: RS256,
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	alg, ok := jwa.LookupSignatureAlgorithm(string(v.signatureAlgorithm))
	if !ok {
		return nil, fmt.Errorf("unsupported signature algorithm: %s", v.signatureAlgorithm)
	}
	v.jwxAlgorithm = alg

	return v, nil
}

// Verify checks the token's signature with key and validates its time based
// claims. On success the verified payload is returned as core.Claims.
func (v *Validator) Verify(_ context.Context, token string, key crypto.PublicKey) (*core.Claims, error) {
	if err := validateTokenFormat(token); err != nil {
		return nil, core.NewValidationError(core.ErrorCodeTokenMalformed, "token is malformed", err)
	}

	verificationKey, err := importKey(key)
	if err != nil {
		return nil, core.NewValidationError(core.ErrorCodeInvalidSignature, "could not use verification key", err)
	}

	parseOpts := []jwt.ParseOption{
		jwt.WithKey(v.jwxAlgorithm, verificationKey),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(v.allowedClockSkew),
	}
	if v.issuer != "" {
		parseOpts = append(parseOpts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		parseOpts = append(parseOpts, jwt.WithAudience(v.audience))
	}

	if _, err := jwt.ParseString(token, parseOpts...); err != nil {
		return nil, classifyParseError(err)
	}

	claims, err := extractClaims(token)
	if err != nil {
		return nil, core.NewValidationError(core.ErrorCodeInvalidClaims, "could not read token claims", err)
	}

	return claims, nil
}

func classifyParseError(err error) *core.ValidationError {
	switch {
	case errors.Is(err, jwt.TokenExpiredError()):
		return core.NewValidationError(core.ErrorCodeTokenExpired, "token is expired", err)
	case errors.Is(err, jwt.TokenNotYetValidError()):
		return core.NewValidationError(core.ErrorCodeTokenNotYetValid, "token is not valid yet", err)
	case errors.Is(err, jwt.InvalidIssuerError()),
		errors.Is(err, jwt.InvalidAudienceError()),
		errors.Is(err, jwt.InvalidIssuedAtError()),
		errors.Is(err, jwt.ValidateError()):
		return core.NewValidationError(core.ErrorCodeInvalidClaims, "token claims are invalid", err)
	default:
		return core.NewValidationError(core.ErrorCodeInvalidSignature, "token signature could not be verified", err)
	}
}

func importKey(key crypto.PublicKey) (jwk.Key, error) {
	if key == nil {
		return nil, errors.New("key is nil")
	}
	if k, ok := key.(jwk.Key); ok {
		return k, nil
	}
	return jwk.Import(key)
}

// extractClaims decodes the payload of an already verified compact JWS.
func extractClaims(token string) (*core.Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid JWT format: expected 3 parts, got %d", len(parts))
	}

	payloadJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("failed to decode token payload: %w", err)
	}

	var claims core.Claims
	if err := json.Unmarshal(payloadJSON, &claims); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token claims: %w", err)
	}

	return &claims, nil
}
