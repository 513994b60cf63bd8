// Package memory provides an in-process audit store. It backs local
// development and tests; production deployments point the publisher at the
// Kafka sink instead.
package memory

import (
	"context"
	"sync"

	id "haulpass/pkg/domain"
	audit "haulpass/pkg/platform/audit"
)

// InMemoryStore keeps events in append order, per actor.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(ctx context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListByActor(ctx context.Context, actor id.ActorRole) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.Event
	for _, e := range s.events {
		if e.Actor == actor {
			out = append(out, e)
		}
	}
	return out, nil
}

// All returns every stored event. Test helper.
func (s *InMemoryStore) All() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.Event, len(s.events))
	copy(out, s.events)
	return out
}

var _ audit.Store = (*InMemoryStore)(nil)
