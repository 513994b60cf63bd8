// Package identity manages actor identity lifecycle: creating, publishing,
// and loading each role's DID document and signing key fragment.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"haulpass/internal/domain"
	"haulpass/internal/identity/metrics"
	"haulpass/internal/identity/store"
	"haulpass/internal/ledger"
	"haulpass/internal/vault"
	id "haulpass/pkg/domain"
	dErrors "haulpass/pkg/domain-errors"
	audit "haulpass/pkg/platform/audit"
	"haulpass/pkg/requestcontext"
)

// Service is the actor identity manager. Identity creation is serialized per
// role so concurrent first requests cannot double-publish a document or leak
// duplicate vault keys.
type Service struct {
	store   store.Store
	vaults  vault.Provider
	ledger  ledger.Ledger
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   audit.Publisher

	mu    sync.Mutex
	locks map[id.ActorRole]*sync.Mutex
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func New(identityStore store.Store, vaults vault.Provider, l ledger.Ledger, opts ...Option) (*Service, error) {
	if identityStore == nil {
		return nil, fmt.Errorf("identity store is required")
	}
	if vaults == nil {
		return nil, fmt.Errorf("vault provider is required")
	}
	if l == nil {
		return nil, fmt.Errorf("ledger is required")
	}

	svc := &Service{
		store:  identityStore,
		vaults: vaults,
		ledger: l,
		locks:  make(map[id.ActorRole]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// roleLock returns the mutex guarding identity creation for a role.
func (s *Service) roleLock(role id.ActorRole) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[role]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[role] = lock
	}
	return lock
}

// EnsureIdentity returns the actor's identity, creating and publishing it on
// first use. Subsequent calls load the persisted record without touching the
// vault or the ledger.
func (s *Service) EnsureIdentity(ctx context.Context, role id.ActorRole) (domain.ActorIdentity, error) {
	if !role.IsValid() {
		return domain.ActorIdentity{}, dErrors.Newf(dErrors.CodeBadRequest, "unknown actor role %q", role)
	}

	lock := s.roleLock(role)
	lock.Lock()
	defer lock.Unlock()

	identity, err := s.store.Load(ctx, role)
	if err == nil {
		if s.metrics != nil {
			s.metrics.IncrementLoads()
		}
		return identity, nil
	}
	if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return domain.ActorIdentity{}, err
	}

	return s.createIdentity(ctx, role)
}

// LoadIdentity returns the persisted identity without creating one. Callers
// that require the actor to have already established their identity (the
// presentation path) use this.
func (s *Service) LoadIdentity(ctx context.Context, role id.ActorRole) (domain.ActorIdentity, error) {
	if !role.IsValid() {
		return domain.ActorIdentity{}, dErrors.Newf(dErrors.CodeBadRequest, "unknown actor role %q", role)
	}
	identity, err := s.store.Load(ctx, role)
	if err != nil {
		return domain.ActorIdentity{}, err
	}
	if s.metrics != nil {
		s.metrics.IncrementLoads()
	}
	return identity, nil
}

func (s *Service) createIdentity(ctx context.Context, role id.ActorRole) (domain.ActorIdentity, error) {
	v, err := s.vaults.ForRole(role)
	if err != nil {
		return domain.ActorIdentity{}, err
	}

	fragment, pub, err := v.GenerateKey(ctx)
	if err != nil {
		return domain.ActorIdentity{}, err
	}

	unpublished := domain.NewUnpublishedDocument(fragment, pub)

	// The signing address pays gas for the publication, so it has to be
	// funded before the first ledger write.
	address := ledger.AddressFromPublicKey(pub)
	balance, err := s.ledger.Balance(ctx, address)
	if err != nil {
		return domain.ActorIdentity{}, dErrors.Wrap(err, dErrors.CodeLedger, "check signing address balance")
	}
	if balance == 0 {
		if err := s.ledger.RequestFunds(ctx, address); err != nil {
			return domain.ActorIdentity{}, dErrors.Wrap(err, dErrors.CodeLedger, "fund signing address")
		}
	}

	published, err := s.ledger.Publish(ctx, unpublished, ledger.GasBudget)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrementPublishFailures()
		}
		return domain.ActorIdentity{}, dErrors.Wrap(err, dErrors.CodeLedger, "publish DID document")
	}

	identity := domain.ActorIdentity{Document: published, Fragment: fragment}

	// Persist before reporting success. A crash between publish and save
	// leaves an orphaned on-ledger document with no local record; accepted
	// for this scope.
	if err := s.store.Save(ctx, role, identity); err != nil {
		return domain.ActorIdentity{}, err
	}

	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "actor identity created",
			"request_id", requestcontext.RequestID(ctx),
			"role", role,
			"did", identity.DID(),
			"fragment", fragment,
		)
	}
	s.emitAudit(ctx, role, identity.DID())

	return identity, nil
}

func (s *Service) emitAudit(ctx context.Context, role id.ActorRole, did id.DID) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		Actor:     role,
		DID:       did,
		Action:    string(audit.EventIdentityCreated),
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.audit.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}
