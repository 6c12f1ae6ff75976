/*
Package secrets serves versioned public keys to core.Core.

A secrets document maps secret names to versioned secrets. Each version is a
PEM encoded public key, optionally base64 wrapped:

	secrets:
	  secret/authentication/public-key:
	    type: versioned
	    current: |
	      -----BEGIN PUBLIC KEY-----
	      ...
	    previous: |
	      -----BEGIN PUBLIC KEY-----
	      ...

JSON documents of the same shape are accepted as well. GetVersioned returns
the keys current first, then previous, then next, which is the order core.Core
tries them in. Secrets of any other type are ignored.

Call Reload after the file is rewritten to pick up a rotated key.
*/
package secrets
