package vault

import (
	"fmt"
	"path/filepath"
	"sync"

	id "haulpass/pkg/domain"
)

// Provider hands out the vault belonging to an actor role. Each role keeps
// its own keyring so one actor's custody never mixes with another's.
type Provider interface {
	ForRole(role id.ActorRole) (Vault, error)
}

// FileProvider opens one encrypted vault file per role under a data
// directory, caching open vaults so a role's keyring is unsealed once.
type FileProvider struct {
	dir      string
	password string

	mu   sync.Mutex
	open map[id.ActorRole]*FileVault
}

func NewFileProvider(dir, password string) *FileProvider {
	return &FileProvider{
		dir:      dir,
		password: password,
		open:     make(map[id.ActorRole]*FileVault),
	}
}

func (p *FileProvider) ForRole(role id.ActorRole) (Vault, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v, ok := p.open[role]; ok {
		return v, nil
	}

	path := filepath.Join(p.dir, fmt.Sprintf("%s.vault", role))
	v, err := OpenFile(path, p.password)
	if err != nil {
		return nil, err
	}
	p.open[role] = v
	return v, nil
}

// MemoryProvider hands each role an independent in-memory vault. Test use only.
type MemoryProvider struct {
	mu   sync.Mutex
	open map[id.ActorRole]*MemoryVault
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{open: make(map[id.ActorRole]*MemoryVault)}
}

func (p *MemoryProvider) ForRole(role id.ActorRole) (Vault, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v, ok := p.open[role]; ok {
		return v, nil
	}
	v := NewMemory()
	p.open[role] = v
	return v, nil
}
