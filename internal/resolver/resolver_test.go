package resolver

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"haulpass/internal/domain"
	"haulpass/internal/ledger"
	id "haulpass/pkg/domain"
	dErrors "haulpass/pkg/domain-errors"
)

type ResolverSuite struct {
	suite.Suite
	ledger *ledger.Memory
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.ledger = ledger.NewMemory()
}

func (s *ResolverSuite) registerDocument(did string) domain.Document {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	s.Require().NoError(err)

	doc := domain.NewUnpublishedDocument("key-1", pub).WithID(id.DID(did))
	s.ledger.Register(doc)
	return doc
}

func (s *ResolverSuite) TestResolve() {
	ctx := context.Background()

	s.Run("returns the published document", func() {
		doc := s.registerDocument("did:example:issuer1")

		service, err := New(s.ledger)
		s.Require().NoError(err)

		resolved, err := service.Resolve(ctx, doc.ID)
		s.Require().NoError(err)
		s.Equal(doc, resolved)
	})

	s.Run("unknown DID is a resolution error", func() {
		service, err := New(s.ledger)
		s.Require().NoError(err)

		_, err = service.Resolve(ctx, id.DID("did:example:ghost"))
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeResolution))
	})

	s.Run("empty DID is rejected before touching the ledger", func() {
		service, err := New(s.ledger)
		s.Require().NoError(err)

		before := s.ledger.ResolveCount()
		_, err = service.Resolve(ctx, id.DID(""))
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeResolution))
		s.Equal(before, s.ledger.ResolveCount())
	})

	s.Run("cache serves repeat lookups without the ledger", func() {
		doc := s.registerDocument("did:example:cached")

		service, err := New(s.ledger, WithCache(NewMemoryCache()))
		s.Require().NoError(err)

		_, err = service.Resolve(ctx, doc.ID)
		s.Require().NoError(err)
		after := s.ledger.ResolveCount()

		resolved, err := service.Resolve(ctx, doc.ID)
		s.Require().NoError(err)
		s.Equal(doc, resolved)
		s.Equal(after, s.ledger.ResolveCount())
	})
}

func (s *ResolverSuite) TestResolveMany() {
	ctx := context.Background()

	s.Run("resolves all distinct DIDs", func() {
		a := s.registerDocument("did:example:a")
		b := s.registerDocument("did:example:b")

		service, err := New(s.ledger)
		s.Require().NoError(err)

		docs, err := service.ResolveMany(ctx, []id.DID{a.ID, b.ID, a.ID})
		s.Require().NoError(err)
		s.Len(docs, 2)
		s.Equal(a, docs[a.ID])
		s.Equal(b, docs[b.ID])
	})

	s.Run("one missing DID fails the whole batch and names it", func() {
		a := s.registerDocument("did:example:present")

		service, err := New(s.ledger)
		s.Require().NoError(err)

		docs, err := service.ResolveMany(ctx, []id.DID{a.ID, id.DID("did:example:absent")})
		s.Error(err)
		s.Nil(docs, "no partial results on batch failure")
		s.True(dErrors.HasCode(err, dErrors.CodeResolution))
		s.Contains(err.Error(), "did:example:absent")
	})

	s.Run("empty batch resolves to an empty map", func() {
		service, err := New(s.ledger)
		s.Require().NoError(err)

		docs, err := service.ResolveMany(ctx, nil)
		s.Require().NoError(err)
		s.Empty(docs)
	})
}

func (s *ResolverSuite) TestConcurrentResolution() {
	ctx := context.Background()
	doc := s.registerDocument("did:example:hot")

	service, err := New(s.ledger, WithCache(NewMemoryCache()))
	s.Require().NoError(err)

	var g errgroup.Group
	for range 16 {
		g.Go(func() error {
			resolved, err := service.Resolve(ctx, doc.ID)
			if err != nil {
				return err
			}
			s.Equal(doc, resolved)
			return nil
		})
	}
	s.Require().NoError(g.Wait())
	s.LessOrEqual(s.ledger.ResolveCount(), 16)
}
