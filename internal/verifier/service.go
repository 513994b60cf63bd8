// Package verifier checks a presented credential chain end to end: the
// presentation's signature and validity window, every embedded credential's
// signature against its resolved issuer, and the holder binding between the
// two layers.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"haulpass/internal/domain"
	"haulpass/internal/resolver"
	"haulpass/internal/token"
	"haulpass/internal/verifier/metrics"
	id "haulpass/pkg/domain"
	dErrors "haulpass/pkg/domain-errors"
	audit "haulpass/pkg/platform/audit"
	"haulpass/pkg/requestcontext"
)

// Policy controls how credential-level failures are reported.
type Policy int

const (
	// FailFast stops at the first credential that fails verification.
	FailFast Policy = iota

	// CollectAllErrors evaluates every credential and reports all failures
	// together. Useful for diagnostics; the outcome is still fail-closed.
	CollectAllErrors
)

// Result is the outcome of a successful verification. Valid is always true
// when the error is nil; a failed verification returns an error and never a
// partial result.
type Result struct {
	Valid           bool
	Holder          id.DID
	CredentialCount int
}

// Service verifies presentations. Every trust decision is fail-closed: any
// error at any step means the presentation is not valid.
type Service struct {
	resolver *resolver.Service
	policy   Policy
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    audit.Publisher
}

type Option func(*Service)

func WithPolicy(policy Policy) Option {
	return func(s *Service) { s.policy = policy }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func New(documentResolver *resolver.Service, opts ...Option) (*Service, error) {
	if documentResolver == nil {
		return nil, fmt.Errorf("document resolver is required")
	}

	svc := &Service{
		resolver: documentResolver,
		policy:   FailFast,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Verify checks a presentation token and every credential it carries.
func (s *Service) Verify(ctx context.Context, vpToken string) (Result, error) {
	start := time.Now()
	result, err := s.verify(ctx, vpToken)

	if s.metrics != nil {
		s.metrics.Record(err == nil, time.Since(start))
	}
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "presentation rejected",
				"request_id", requestcontext.RequestID(ctx),
				"reason", dErrors.CodeOf(err),
				"error", err,
			)
		}
		s.emitAudit(ctx, result.Holder, audit.EventVerificationFailed, string(dErrors.CodeOf(err)))
		return Result{}, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "presentation verified",
			"request_id", requestcontext.RequestID(ctx),
			"holder", result.Holder,
			"credential_count", result.CredentialCount,
		)
	}
	s.emitAudit(ctx, result.Holder, audit.EventPresentationVerified, "")

	return result, nil
}

func (s *Service) verify(ctx context.Context, vpToken string) (Result, error) {
	if vpToken == "" {
		return Result{}, dErrors.New(dErrors.CodeBadRequest, "presentation token is required")
	}

	// The holder claim is read before any signature check: it names the
	// document the signature must be checked against.
	holder, err := token.ExtractHolder(vpToken)
	if err != nil {
		return Result{}, err
	}

	holderDoc, err := s.resolver.Resolve(ctx, holder)
	if err != nil {
		return Result{Holder: holder}, err
	}

	now := requestcontext.Now(ctx)
	pres, err := token.VerifyPresentation(vpToken, holderDoc, now)
	if err != nil {
		return Result{Holder: holder}, err
	}

	if len(pres.CredentialTokens) == 0 {
		return Result{Holder: holder}, dErrors.New(dErrors.CodeSignatureInvalid, "presentation carries no credentials")
	}

	issuers := make([]id.DID, 0, len(pres.CredentialTokens))
	for _, vcToken := range pres.CredentialTokens {
		issuer, err := token.ExtractIssuer(vcToken)
		if err != nil {
			return Result{Holder: holder}, err
		}
		issuers = append(issuers, issuer)
	}

	// All issuer documents are fetched in one batch before any credential
	// is checked, so a chain with an unresolvable issuer fails uniformly
	// regardless of credential order.
	issuerDocs, err := s.resolver.ResolveMany(ctx, issuers)
	if err != nil {
		return Result{Holder: holder}, err
	}

	var failures []error
	for i, vcToken := range pres.CredentialTokens {
		if err := s.verifyCredential(vcToken, issuerDocs[issuers[i]], holder, now); err != nil {
			if s.policy == FailFast {
				return Result{Holder: holder}, err
			}
			failures = append(failures, fmt.Errorf("credential %d: %w", i, err))
		}
	}
	if len(failures) > 0 {
		return Result{Holder: holder}, dErrors.Wrap(errors.Join(failures...), dErrors.CodeSignatureInvalid, "credential verification failed")
	}

	return Result{
		Valid:           true,
		Holder:          holder,
		CredentialCount: len(pres.CredentialTokens),
	}, nil
}

func (s *Service) verifyCredential(vcToken string, issuerDoc domain.Document, holder id.DID, now time.Time) error {
	cred, err := token.VerifyCredential(vcToken, issuerDoc, now)
	if err != nil {
		return err
	}

	// Holder binding: a credential about someone else proves nothing about
	// the presenter, however valid its signature.
	if cred.Subject.ID != holder {
		return dErrors.Newf(dErrors.CodeHolderBinding,
			"credential subject %s does not match presentation holder %s", cred.Subject.ID, holder)
	}

	return nil
}

func (s *Service) emitAudit(ctx context.Context, holder id.DID, action audit.AuditEvent, reason string) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		Actor:     id.RoleDriver,
		DID:       holder,
		Action:    string(action),
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.audit.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}
