package wallet

import (
	"context"
	"sync"

	id "haulpass/pkg/domain"
	dErrors "haulpass/pkg/domain-errors"
)

// InMemoryStore is a wallet for tests.
type InMemoryStore struct {
	mu            sync.RWMutex
	credentials   map[id.ActorRole]string
	presentations map[id.ActorRole]string
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		credentials:   make(map[id.ActorRole]string),
		presentations: make(map[id.ActorRole]string),
	}
}

func (s *InMemoryStore) SaveCredential(ctx context.Context, role id.ActorRole, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[role] = token
	return nil
}

func (s *InMemoryStore) LoadCredential(ctx context.Context, role id.ActorRole) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.credentials[role]
	if !ok {
		return "", dErrors.Newf(dErrors.CodeStorage, "no credential stored for %s", role)
	}
	return token, nil
}

func (s *InMemoryStore) SavePresentation(ctx context.Context, role id.ActorRole, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presentations[role] = token
	return nil
}

func (s *InMemoryStore) LoadPresentation(ctx context.Context, role id.ActorRole) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.presentations[role]
	if !ok {
		return "", dErrors.Newf(dErrors.CodeStorage, "no presentation stored for %s", role)
	}
	return token, nil
}

var _ Store = (*InMemoryStore)(nil)
