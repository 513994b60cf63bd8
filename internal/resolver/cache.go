package resolver

import (
	"context"
	"sync"

	"haulpass/internal/domain"
	id "haulpass/pkg/domain"
)

// Cache stores resolved DID documents. Documents are immutable once published
// in this system, so cached entries never need invalidation.
type Cache interface {
	Get(ctx context.Context, did id.DID) (domain.Document, bool, error)
	Set(ctx context.Context, did id.DID, doc domain.Document) error
}

// MemoryCache is an unbounded in-process cache. The document population is
// one per actor role, so growth is not a concern here.
type MemoryCache struct {
	mu   sync.RWMutex
	docs map[id.DID]domain.Document
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{docs: make(map[id.DID]domain.Document)}
}

func (c *MemoryCache) Get(ctx context.Context, did id.DID) (domain.Document, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[did]
	return doc, ok, nil
}

func (c *MemoryCache) Set(ctx context.Context, did id.DID, doc domain.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[did] = doc
	return nil
}

var _ Cache = (*MemoryCache)(nil)
