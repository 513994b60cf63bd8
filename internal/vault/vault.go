// Package vault provides per-actor key custody. Keys are generated and used
// behind an opaque handle; private key material never leaves the vault.
package vault

import (
	"context"
	"crypto/ed25519"
)

// Vault is the key custody capability the identity and token layers depend
// on. Implementations must be safe for concurrent use.
type Vault interface {
	// GenerateKey creates a new Ed25519 key pair and returns the opaque
	// handle naming it together with the public key.
	GenerateKey(ctx context.Context) (handle string, pub ed25519.PublicKey, err error)

	// PublicKey returns the public key for a handle.
	PublicKey(ctx context.Context, handle string) (ed25519.PublicKey, error)

	// Sign signs data with the private key behind the handle.
	Sign(ctx context.Context, handle string, data []byte) ([]byte, error)
}
