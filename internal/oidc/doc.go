/*
Package oidc discovers the JWKS endpoint of an OpenID Connect issuer.

Providers publish a discovery document at

	https://issuer.example.com/.well-known/openid-configuration

and GetWellKnownEndpointsFromIssuerURL reads its issuer and jwks_uri fields.
A document whose issuer does not match the requested issuer is rejected.
*/
package oidc
