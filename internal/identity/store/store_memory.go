package store

import (
	"context"
	"sync"

	"haulpass/internal/domain"
	id "haulpass/pkg/domain"
	dErrors "haulpass/pkg/domain-errors"
)

// InMemoryStore holds identities in a map. Test use only.
type InMemoryStore struct {
	mu         sync.RWMutex
	identities map[id.ActorRole]domain.ActorIdentity
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{identities: make(map[id.ActorRole]domain.ActorIdentity)}
}

func (s *InMemoryStore) Load(ctx context.Context, role id.ActorRole) (domain.ActorIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.identities[role]
	if !ok {
		return domain.ActorIdentity{}, dErrors.Newf(dErrors.CodeNotFound, "no identity persisted for %s", role)
	}
	return identity, nil
}

func (s *InMemoryStore) Save(ctx context.Context, role id.ActorRole, identity domain.ActorIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[role] = identity
	return nil
}

func (s *InMemoryStore) Exists(ctx context.Context, role id.ActorRole) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.identities[role]
	return ok, nil
}

var _ Store = (*InMemoryStore)(nil)
