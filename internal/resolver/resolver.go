// Package resolver turns DIDs into their published documents, with request
// collapsing and optional caching in front of the ledger.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"haulpass/internal/domain"
	"haulpass/internal/ledger"
	id "haulpass/pkg/domain"
	dErrors "haulpass/pkg/domain-errors"
)

// Service resolves DID documents. Concurrent lookups of the same DID share a
// single ledger call; resolved documents are cached when a cache is wired.
type Service struct {
	ledger ledger.Ledger
	cache  Cache
	logger *slog.Logger
	tracer trace.Tracer
	group  singleflight.Group
}

type Option func(*Service)

func WithCache(cache Cache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(l ledger.Ledger, opts ...Option) (*Service, error) {
	if l == nil {
		return nil, fmt.Errorf("ledger is required")
	}

	svc := &Service{
		ledger: l,
		tracer: otel.Tracer("haulpass/resolver"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Resolve returns the published document for a DID. A DID the ledger does
// not know yields a resolution error naming it.
func (s *Service) Resolve(ctx context.Context, did id.DID) (domain.Document, error) {
	if did.IsZero() {
		return domain.Document{}, dErrors.New(dErrors.CodeResolution, "cannot resolve an empty DID")
	}

	ctx, span := s.tracer.Start(ctx, "resolver.Resolve",
		trace.WithAttributes(attribute.String("did", did.String())))
	defer span.End()

	if s.cache != nil {
		doc, ok, err := s.cache.Get(ctx, did)
		if err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "document cache read failed", "did", did, "error", err)
		}
		if ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return doc, nil
		}
	}

	result, err, _ := s.group.Do(did.String(), func() (any, error) {
		doc, err := s.ledger.Resolve(ctx, did)
		if err != nil {
			return domain.Document{}, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, did, doc); err != nil && s.logger != nil {
				s.logger.WarnContext(ctx, "document cache write failed", "did", did, "error", err)
			}
		}
		return doc, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolution failed")
		return domain.Document{}, err
	}

	return result.(domain.Document), nil
}

// ResolveMany resolves a set of DIDs concurrently and returns documents for
// all of them, or an error for the whole batch. Partial results are never
// returned: a credential chain with one unresolvable issuer is not partially
// trustworthy.
func (s *Service) ResolveMany(ctx context.Context, dids []id.DID) (map[id.DID]domain.Document, error) {
	ctx, span := s.tracer.Start(ctx, "resolver.ResolveMany",
		trace.WithAttributes(attribute.Int("did.count", len(dids))))
	defer span.End()

	distinct := make([]id.DID, 0, len(dids))
	seen := make(map[id.DID]struct{}, len(dids))
	for _, did := range dids {
		if _, ok := seen[did]; ok {
			continue
		}
		seen[did] = struct{}{}
		distinct = append(distinct, did)
	}

	docs := make(map[id.DID]domain.Document, len(distinct))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, did := range distinct {
		g.Go(func() error {
			doc, err := s.Resolve(gctx, did)
			if err != nil {
				return dErrors.Wrapf(err, dErrors.CodeResolution, "resolve %s", did)
			}
			mu.Lock()
			docs[did] = doc
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch resolution failed")
		return nil, err
	}

	return docs, nil
}
