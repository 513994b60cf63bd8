package presentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"haulpass/internal/credential"
	"haulpass/internal/domain"
	"haulpass/internal/identity"
	"haulpass/internal/identity/store"
	"haulpass/internal/ledger"
	"haulpass/internal/token"
	"haulpass/internal/vault"
	"haulpass/internal/wallet"
	id "haulpass/pkg/domain"
	dErrors "haulpass/pkg/domain-errors"
	"haulpass/pkg/requestcontext"
)

type PresentationServiceSuite struct {
	suite.Suite
	ledger      *ledger.Memory
	wallet      *wallet.InMemoryStore
	identities  *identity.Service
	credentials *credential.Service
	service     *Service
}

func TestPresentationServiceSuite(t *testing.T) {
	suite.Run(t, new(PresentationServiceSuite))
}

func (s *PresentationServiceSuite) SetupTest() {
	s.ledger = ledger.NewMemory()
	s.wallet = wallet.NewMemory()
	vaults := vault.NewMemoryProvider()

	var err error
	s.identities, err = identity.New(store.NewMemory(), vaults, s.ledger)
	s.Require().NoError(err)
	s.credentials, err = credential.New(s.identities, vaults, s.wallet)
	s.Require().NoError(err)
	s.service, err = New(s.identities, vaults, s.wallet)
	s.Require().NoError(err)
}

// seedDriver walks the driver through identity creation and issuance.
func (s *PresentationServiceSuite) seedDriver(ctx context.Context) domain.ActorIdentity {
	driver, err := s.identities.EnsureIdentity(ctx, id.RoleDriver)
	s.Require().NoError(err)

	_, err = s.credentials.Issue(ctx, id.RoleDriver, driver.DID(), map[string]any{"name": "Joe Bloggs"})
	s.Require().NoError(err)

	return driver
}

func (s *PresentationServiceSuite) TestPresent() {
	ctx := context.Background()

	s.Run("wraps the current credential into a valid presentation", func() {
		driver := s.seedDriver(ctx)

		vpToken, err := s.service.Present(ctx, id.RoleDriver)
		s.Require().NoError(err)

		decoded, err := token.VerifyPresentation(vpToken, driver.Document, time.Now())
		s.Require().NoError(err)
		s.Equal(driver.DID(), decoded.Holder)
		s.Len(decoded.CredentialTokens, 1)

		stored, err := s.wallet.LoadPresentation(ctx, id.RoleDriver)
		s.Require().NoError(err)
		s.Equal(vpToken, stored)
	})

	s.Run("expiry is a fixed window from the request time", func() {
		driver := s.seedDriver(ctx)

		now := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
		frozen := requestcontext.WithTime(ctx, now)

		vpToken, err := s.service.Present(frozen, id.RoleDriver)
		s.Require().NoError(err)

		decoded, err := token.VerifyPresentation(vpToken, driver.Document, now)
		s.Require().NoError(err)
		s.Equal(now.Add(domain.PresentationTTL).Unix(), decoded.ExpiresAt.Unix())

		_, err = token.VerifyPresentation(vpToken, driver.Document, now.Add(domain.PresentationTTL+time.Second))
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeExpiredPresentation))
	})
}

func (s *PresentationServiceSuite) TestPresentPreconditions() {
	ctx := context.Background()

	s.Run("no identity means nothing to present as", func() {
		_, err := s.service.Present(ctx, id.RoleDriver)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal(0, s.ledger.PublishCount(), "presenting must not create an identity")
	})

	s.Run("identity without a credential is a storage error", func() {
		_, err := s.identities.EnsureIdentity(ctx, id.RoleDriver)
		s.Require().NoError(err)

		_, err = s.service.Present(ctx, id.RoleDriver)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeStorage))
	})
}
