package vault

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"sync"

	"github.com/google/uuid"

	dErrors "haulpass/pkg/domain-errors"
)

// MemoryVault keeps keys in process memory. Test use only.
type MemoryVault struct {
	mu   sync.Mutex
	keys map[string]ed25519.PrivateKey
}

func NewMemory() *MemoryVault {
	return &MemoryVault{keys: make(map[string]ed25519.PrivateKey)}
}

func (v *MemoryVault) GenerateKey(ctx context.Context) (string, ed25519.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeVault, "generate key pair")
	}
	handle := "key-" + uuid.NewString()[:8]
	v.keys[handle] = priv
	return handle, pub, nil
}

func (v *MemoryVault) PublicKey(ctx context.Context, handle string) (ed25519.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	priv, ok := v.keys[handle]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeVault, "unknown key handle %q", handle)
	}
	return priv.Public().(ed25519.PublicKey), nil
}

func (v *MemoryVault) Sign(ctx context.Context, handle string, data []byte) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	priv, ok := v.keys[handle]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeVault, "unknown key handle %q", handle)
	}
	return ed25519.Sign(priv, data), nil
}

var _ Vault = (*MemoryVault)(nil)
