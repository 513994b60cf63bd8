package ledger

//go:generate mockgen -source=ledger.go -destination=mocks/mocks.go -package=mocks Ledger

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"haulpass/internal/domain"
	id "haulpass/pkg/domain"
	dErrors "haulpass/pkg/domain-errors"
)

type HTTPClientSuite struct {
	suite.Suite
}

func TestHTTPClientSuite(t *testing.T) {
	suite.Run(t, new(HTTPClientSuite))
}

func (s *HTTPClientSuite) newDocument(did string) domain.Document {
	return s.newUnpublished().WithID(id.DID(did))
}

func (s *HTTPClientSuite) newUnpublished() domain.Document {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	s.Require().NoError(err)
	return domain.NewUnpublishedDocument("key-1", pub)
}

func (s *HTTPClientSuite) TestPublish() {
	ctx := context.Background()

	s.Run("sends the document and returns the published one", func() {
		published := s.newDocument("did:example:new1")

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.Equal(http.MethodPost, r.Method)
			s.Equal("/identity/v1/0xpkg/documents", r.URL.Path)

			var req publishRequest
			s.Require().NoError(json.NewDecoder(r.Body).Decode(&req))
			s.Equal(GasBudget, req.GasBudget)

			_ = json.NewEncoder(w).Encode(documentResponse{Document: published})
		}))
		defer server.Close()

		client := NewHTTP(server.URL, "0xpkg")
		doc, err := client.Publish(ctx, s.newUnpublished(), GasBudget)
		s.Require().NoError(err)
		s.Equal(published.ID, doc.ID)
	})

	s.Run("retries once on a transient server error", func() {
		published := s.newDocument("did:example:retry1")
		var calls atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_ = json.NewEncoder(w).Encode(documentResponse{Document: published})
		}))
		defer server.Close()

		client := NewHTTP(server.URL, "0xpkg")
		doc, err := client.Publish(ctx, s.newUnpublished(), GasBudget)
		s.Require().NoError(err)
		s.Equal(published.ID, doc.ID)
		s.Equal(int32(2), calls.Load())
	})

	s.Run("client errors are not retried", func() {
		var calls atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := NewHTTP(server.URL, "0xpkg")
		_, err := client.Publish(ctx, s.newUnpublished(), GasBudget)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeLedger))
		s.Equal(int32(1), calls.Load())
	})
}

func (s *HTTPClientSuite) TestResolve() {
	ctx := context.Background()

	s.Run("returns the document", func() {
		doc := s.newDocument("did:example:r1")

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.Equal(http.MethodGet, r.Method)
			s.Equal("/identity/v1/0xpkg/documents/did:example:r1", r.URL.Path)
			_ = json.NewEncoder(w).Encode(documentResponse{Document: doc})
		}))
		defer server.Close()

		client := NewHTTP(server.URL, "0xpkg")
		resolved, err := client.Resolve(ctx, doc.ID)
		s.Require().NoError(err)
		s.Equal(doc.ID, resolved.ID)
	})

	s.Run("404 is a resolution error naming the DID", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewHTTP(server.URL, "0xpkg")
		_, err := client.Resolve(ctx, id.DID("did:example:missing"))
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeResolution))
		s.Contains(err.Error(), "did:example:missing")
	})

	s.Run("resolution is never retried", func() {
		var calls atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewHTTP(server.URL, "0xpkg")
		_, err := client.Resolve(ctx, id.DID("did:example:x"))
		s.Error(err)
		s.Equal(int32(1), calls.Load())
	})
}

func (s *HTTPClientSuite) TestFaucet() {
	ctx := context.Background()

	s.Run("reads the balance", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.Equal("/faucet/v1/balance/0xabc", r.URL.Path)
			_ = json.NewEncoder(w).Encode(balanceResponse{Balance: 42})
		}))
		defer server.Close()

		client := NewHTTP(server.URL, "0xpkg")
		balance, err := client.Balance(ctx, "0xabc")
		s.Require().NoError(err)
		s.Equal(uint64(42), balance)
	})

	s.Run("unknown address has zero balance", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewHTTP(server.URL, "0xpkg")
		balance, err := client.Balance(ctx, "0xnew")
		s.Require().NoError(err)
		s.Zero(balance)
	})

	s.Run("posts funding requests", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.Equal(http.MethodPost, r.Method)
			s.Equal("/faucet/v1/fund", r.URL.Path)

			var req fundRequest
			s.Require().NoError(json.NewDecoder(r.Body).Decode(&req))
			s.Equal("0xabc", req.Address)

			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("{}"))
		}))
		defer server.Close()

		client := NewHTTP(server.URL, "0xpkg")
		s.NoError(client.RequestFunds(ctx, "0xabc"))
	})
}

func (s *HTTPClientSuite) TestCircuitBreaker() {
	ctx := context.Background()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTP(server.URL, "0xpkg")

	// Each failed resolve counts one failure; the breaker opens after five.
	for range 5 {
		_, err := client.Resolve(ctx, id.DID("did:example:x"))
		s.Error(err)
	}
	s.Equal(int32(5), calls.Load())

	_, err := client.Resolve(ctx, id.DID("did:example:x"))
	s.Error(err)
	s.Contains(err.Error(), "circuit")
	s.Equal(int32(5), calls.Load(), "open circuit must not reach the ledger")
}
