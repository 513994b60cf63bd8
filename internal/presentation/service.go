// Package presentation wraps the holder's current credential into a signed,
// time-boxed verifiable presentation.
package presentation

import (
	"context"
	"fmt"
	"log/slog"

	"haulpass/internal/domain"
	"haulpass/internal/identity"
	"haulpass/internal/token"
	"haulpass/internal/vault"
	"haulpass/internal/wallet"
	id "haulpass/pkg/domain"
	audit "haulpass/pkg/platform/audit"
	"haulpass/pkg/requestcontext"
)

// Service builds presentations for a holder role. Unlike issuance, presenting
// never creates an identity: a holder with no DID has nothing to present as.
type Service struct {
	identities *identity.Service
	vaults     vault.Provider
	wallet     wallet.Store
	logger     *slog.Logger
	audit      audit.Publisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func New(identities *identity.Service, vaults vault.Provider, walletStore wallet.Store, opts ...Option) (*Service, error) {
	if identities == nil {
		return nil, fmt.Errorf("identity service is required")
	}
	if vaults == nil {
		return nil, fmt.Errorf("vault provider is required")
	}
	if walletStore == nil {
		return nil, fmt.Errorf("wallet store is required")
	}

	svc := &Service{
		identities: identities,
		vaults:     vaults,
		wallet:     walletStore,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Present signs the holder's current credential into a presentation valid for
// a fixed window from now, and stores it as the current presentation.
func (s *Service) Present(ctx context.Context, role id.ActorRole) (string, error) {
	holder, err := s.identities.LoadIdentity(ctx, role)
	if err != nil {
		return "", err
	}

	vcToken, err := s.wallet.LoadCredential(ctx, role)
	if err != nil {
		return "", err
	}

	holderVault, err := s.vaults.ForRole(role)
	if err != nil {
		return "", err
	}

	now := requestcontext.Now(ctx)
	pres := domain.Presentation{
		Holder:           holder.DID(),
		CredentialTokens: []string{vcToken},
		ExpiresAt:        now.Add(domain.PresentationTTL),
	}

	vpToken, err := token.EncodePresentation(ctx, holderVault, holder, pres, now)
	if err != nil {
		return "", err
	}

	if err := s.wallet.SavePresentation(ctx, role, vpToken); err != nil {
		return "", err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "presentation created",
			"request_id", requestcontext.RequestID(ctx),
			"holder", holder.DID(),
			"expires_at", pres.ExpiresAt,
		)
	}
	s.emitAudit(ctx, role, holder.DID())

	return vpToken, nil
}

func (s *Service) emitAudit(ctx context.Context, role id.ActorRole, holder id.DID) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		Actor:     role,
		DID:       holder,
		Action:    string(audit.EventPresentationCreated),
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.audit.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}
