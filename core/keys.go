package core

import (
	"context"
	"crypto"
)

// PublicKeySet is an ordered list of verification keys: the current key
// first, followed by older (and upcoming) keys still accepted during rotation.
type PublicKeySet []crypto.PublicKey

// KeySource supplies the versioned key set stored under a secret name.
type KeySource interface {
	GetVersioned(ctx context.Context, name string) (PublicKeySet, error)
}

// KeySourceFunc adapts a plain function to the KeySource interface.
type KeySourceFunc func(ctx context.Context, name string) (PublicKeySet, error)

// GetVersioned calls f(ctx, name).
func (f KeySourceFunc) GetVersioned(ctx context.Context, name string) (PublicKeySet, error) {
	return f(ctx, name)
}
