package ledger

import (
	"context"
	"fmt"
	"sync"

	"haulpass/internal/domain"
	id "haulpass/pkg/domain"
	dErrors "haulpass/pkg/domain-errors"
)

// Memory is an in-process ledger for tests and local development. It assigns
// sequential did:example identifiers and tracks call counts so tests can
// assert publication happened exactly once.
type Memory struct {
	mu        sync.Mutex
	docs      map[id.DID]domain.Document
	balances  map[string]uint64
	nextSeq   int
	namer     func(seq int) id.DID
	publishes int
	resolves  int
	fundings  int
}

// MemoryOption configures the in-memory ledger.
type MemoryOption func(*Memory)

// WithDIDNamer overrides how published documents are named. Tests use it to
// pin well-known DIDs like did:example:driver1.
func WithDIDNamer(namer func(seq int) id.DID) MemoryOption {
	return func(m *Memory) { m.namer = namer }
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		docs:     make(map[id.DID]domain.Document),
		balances: make(map[string]uint64),
		namer: func(seq int) id.DID {
			return id.DID(fmt.Sprintf("did:example:%d", seq))
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Publish(ctx context.Context, doc domain.Document, gasBudget uint64) (domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.publishes++
	m.nextSeq++
	published := doc.WithID(m.namer(m.nextSeq))
	m.docs[published.ID] = published
	return published, nil
}

func (m *Memory) Resolve(ctx context.Context, did id.DID) (domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resolves++
	doc, ok := m.docs[did]
	if !ok {
		return domain.Document{}, dErrors.Newf(dErrors.CodeResolution, "DID %s is not resolvable", did)
	}
	return doc, nil
}

func (m *Memory) Balance(ctx context.Context, address string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[address], nil
}

func (m *Memory) RequestFunds(ctx context.Context, address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fundings++
	m.balances[address] += 1_000_000_000
	return nil
}

// Register stores a document under a fixed DID without going through Publish.
// Test seeding only.
func (m *Memory) Register(doc domain.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc
}

// PublishCount reports how many publications have happened.
func (m *Memory) PublishCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.publishes
}

// ResolveCount reports how many ledger resolutions have happened, cache
// misses included.
func (m *Memory) ResolveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolves
}

// FundingCount reports how many faucet requests have happened.
func (m *Memory) FundingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fundings
}

var _ Ledger = (*Memory)(nil)
