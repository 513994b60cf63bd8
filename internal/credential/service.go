// Package credential issues signed driver credentials.
package credential

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
	dErrors "haulpass/pkg/domain-errors"
	audit "haulpass/pkg/platform/audit"
	"haulpass/pkg/requestcontext"
)

// Service issues verifiable credentials under the issuer's identity. The
// issuer identity is created on first use; the subject DID is accepted as-is
// and only resolved later, at verification time.
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

// Issue signs a credential about subjectDID under the issuer's key and stores
// it as the subject's current credential.
func (s *Service) Issue(ctx context.Context, subjectRole id.ActorRole, subjectDID id.DID, claims map[string]any) (string, error) {
	if subjectDID.IsZero() {
		return "", dErrors.New(dErrors.CodeBadRequest, "credential subject DID is required")
	}

	issuer, err := s.identities.EnsureIdentity(ctx, id.RoleIssuer)
	if err != nil {
		return "", err
	}

	issuerVault, err := s.vaults.ForRole(id.RoleIssuer)
	if err != nil {
		return "", err
	}

	cred := domain.Credential{
		Issuer: issuer.DID(),
		Type:   domain.CredentialType,
		Subject: domain.Subject{
			ID:     subjectDID,
			Claims: claims,
		},
	}

	vcToken, err := token.EncodeCredential(ctx, issuerVault, issuer, cred, requestcontext.Now(ctx))
	if err != nil {
		return "", err
	}

	if err := s.wallet.SaveCredential(ctx, subjectRole, vcToken); err != nil {
		return "", err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "credential issued",
			"request_id", requestcontext.RequestID(ctx),
			"issuer", issuer.DID(),
			"subject", subjectDID,
			"type", domain.CredentialType,
		)
	}
	s.emitAudit(ctx, subjectRole, subjectDID)

	return vcToken, nil
}

func (s *Service) emitAudit(ctx context.Context, role id.ActorRole, subject id.DID) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		Actor:     role,
		DID:       subject,
		Action:    string(audit.EventCredentialIssued),
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.audit.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}
