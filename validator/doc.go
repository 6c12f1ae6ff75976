/*
Package validator verifies authentication tokens using the lestrrat-go/jwx v3
library.

A Validator checks one token against one public key: the signature, the
algorithm named in the token header, and the time based claims (exp, nbf,
iat). It implements core.Verifier; key rotation is handled by core.Core,
which calls Verify once per candidate key.

# Supported Algorithms

Only asymmetric algorithms are accepted, since services verifying edge
contexts hold public keys only:

  - RS256 (default), RS384, RS512
  - PS256, PS384, PS512
  - ES256, ES384, ES512
  - EdDSA

# Basic Usage

	v, err := validator.New(
	    validator.WithAlgorithm(validator.RS256),
	    validator.WithAllowedClockSkew(30*time.Second),
	)
	if err != nil {
	    log.Fatal(err)
	}

	claims, err := v.Verify(ctx, rawToken, publicKey)
	if err != nil {
	    var validationErr *core.ValidationError
	    if errors.As(err, &validationErr) {
	        log.Printf("rejected: %s", validationErr.Code)
	    }
	}

# Keys

Keys may be raw crypto public keys (*rsa.PublicKey, *ecdsa.PublicKey,
ed25519.PublicKey) or jwk.Key values, so key sets read from PEM secrets and
from JWKS endpoints work the same way.

# Claims

After verification the payload is decoded into core.Claims:

	{
	  "sub": "t2_abc",
	  "roles": ["admin"],
	  "client_id": "client-1",
	  "client_type": "third_party",
	  "exp": 1700000000
	}
*/
package validator
