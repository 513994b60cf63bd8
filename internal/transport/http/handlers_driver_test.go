package httptransport_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"haulpass/internal/credential"
	"haulpass/internal/identity"
	"haulpass/internal/identity/store"
	"haulpass/internal/ledger"
	"haulpass/internal/presentation"
	"haulpass/internal/resolver"
	httptransport "haulpass/internal/transport/http"
	"haulpass/internal/vault"
	"haulpass/internal/verifier"
	"haulpass/internal/wallet"
)

type DriverRoutesSuite struct {
	suite.Suite
	server *httptest.Server
	ledger *ledger.Memory
}

func TestDriverRoutesSuite(t *testing.T) {
	suite.Run(t, new(DriverRoutesSuite))
}

func (s *DriverRoutesSuite) SetupTest() {
	s.ledger = ledger.NewMemory()
	vaults := vault.NewMemoryProvider()
	wallets := wallet.NewMemory()

	identities, err := identity.New(store.NewMemory(), vaults, s.ledger)
	s.Require().NoError(err)
	credentials, err := credential.New(identities, vaults, wallets)
	s.Require().NoError(err)
	presentations, err := presentation.New(identities, vaults, wallets)
	s.Require().NoError(err)
	documents, err := resolver.New(s.ledger)
	s.Require().NoError(err)
	verifierService, err := verifier.New(documents)
	s.Require().NoError(err)

	handler := httptransport.NewDriverHandler(identities, credentials, presentations, verifierService, wallets, nil)
	s.server = httptest.NewServer(httptransport.NewRouter(handler, nil))
	s.T().Cleanup(s.server.Close)
}

func (s *DriverRoutesSuite) post(path string) (*http.Response, map[string]any) {
	resp, err := http.Post(s.server.URL+path, "application/json", nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { resp.Body.Close() })

	var body map[string]any
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func (s *DriverRoutesSuite) TestCreateDID() {
	s.Run("returns the driver DID", func() {
		resp, body := s.post("/driver/create-did")
		s.Equal(http.StatusOK, resp.StatusCode)

		did, ok := body["did"].(string)
		s.Require().True(ok)
		s.True(strings.HasPrefix(did, "did:"))
	})

	s.Run("is idempotent", func() {
		_, first := s.post("/driver/create-did")
		_, second := s.post("/driver/create-did")
		s.Equal(first["did"], second["did"])
		s.Equal(1, s.ledger.PublishCount())
	})
}

func (s *DriverRoutesSuite) TestIssueVC() {
	s.Run("without a driver identity fails with 404", func() {
		resp, body := s.post("/driver/issue-vc")
		s.Equal(http.StatusNotFound, resp.StatusCode)
		s.Equal("not_found", body["error"])
		s.Equal(0, s.ledger.PublishCount())
	})

	s.Run("after create-did returns a signed credential", func() {
		s.post("/driver/create-did")

		resp, body := s.post("/driver/issue-vc")
		s.Equal(http.StatusOK, resp.StatusCode)

		vc, ok := body["vc"].(string)
		s.Require().True(ok)
		s.Len(strings.Split(vc, "."), 3)
	})
}

func (s *DriverRoutesSuite) TestCreateVP() {
	s.Run("without a driver identity fails with 404", func() {
		resp, body := s.post("/driver/create-vp")
		s.Equal(http.StatusNotFound, resp.StatusCode)
		s.Equal("not_found", body["error"])
	})

	s.Run("after issuance returns a presentation token", func() {
		s.post("/driver/create-did")
		s.post("/driver/issue-vc")

		resp, body := s.post("/driver/create-vp")
		s.Equal(http.StatusOK, resp.StatusCode)

		vp, ok := body["vp"].(string)
		s.Require().True(ok)
		s.Len(strings.Split(vp, "."), 3)
	})
}

func (s *DriverRoutesSuite) TestVerify() {
	s.Run("without a stored presentation fails", func() {
		resp, body := s.post("/driver/verify")
		s.Equal(http.StatusInternalServerError, resp.StatusCode)
		s.Equal("storage_error", body["error"])
	})

	s.Run("full pipeline verifies the stored presentation", func() {
		_, didBody := s.post("/driver/create-did")
		s.post("/driver/issue-vc")
		s.post("/driver/create-vp")

		resp, body := s.post("/driver/verify")
		s.Equal(http.StatusOK, resp.StatusCode)

		s.Equal(true, body["valid"])
		s.Equal(didBody["did"], body["holder"])
		s.Equal(float64(1), body["credential_count"])
	})
}

func (s *DriverRoutesSuite) TestRequestIDPropagation() {
	resp, err := http.Post(s.server.URL+"/driver/create-did", "application/json", nil)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.NotEmpty(resp.Header.Get("X-Request-Id"))
}

func (s *DriverRoutesSuite) TestHealthz() {
	resp, err := http.Get(s.server.URL + "/healthz")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *DriverRoutesSuite) TestMethodNotAllowed() {
	resp, err := http.Get(s.server.URL + "/driver/create-did")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusMethodNotAllowed, resp.StatusCode)
}
