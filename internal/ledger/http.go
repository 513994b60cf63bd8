package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"haulpass/internal/domain"
	id "haulpass/pkg/domain"
	dErrors "haulpass/pkg/domain-errors"
	"haulpass/pkg/platform/circuit"
)

const (
	defaultTimeout  = 15 * time.Second
	retryBackoff    = 500 * time.Millisecond
	breakerCooldown = 30 * time.Second
)

// HTTPClient talks to the ledger node's identity API. Publish and funding
// calls get one retry for transient failures; resolution is deterministic and
// never retried. A circuit breaker skips the node entirely after repeated
// failures so a dead ledger fails requests fast instead of on timeout.
type HTTPClient struct {
	baseURL   string
	packageID string
	client    *http.Client
	breaker   *circuit.Breaker

	mu       sync.Mutex
	openedAt time.Time
}

// NewHTTP builds a ledger client for the node at endpoint, scoped to the
// on-ledger identity package.
func NewHTTP(endpoint, packageID string) *HTTPClient {
	return &HTTPClient{
		baseURL:   endpoint,
		packageID: packageID,
		client:    &http.Client{Timeout: defaultTimeout},
		breaker:   circuit.New("ledger", circuit.WithFailureThreshold(5)),
	}
}

type publishRequest struct {
	Document  domain.Document `json:"document"`
	GasBudget uint64          `json:"gasBudget"`
}

type documentResponse struct {
	Document domain.Document `json:"document"`
}

type balanceResponse struct {
	Balance uint64 `json:"balance"`
}

type fundRequest struct {
	Address string `json:"address"`
}

func (c *HTTPClient) Publish(ctx context.Context, doc domain.Document, gasBudget uint64) (domain.Document, error) {
	body, err := json.Marshal(publishRequest{Document: doc, GasBudget: gasBudget})
	if err != nil {
		return domain.Document{}, dErrors.Wrap(err, dErrors.CodeInternal, "encode publish request")
	}

	endpoint := c.url("identity/v1/%s/documents", c.packageID)
	resp, err := c.doWithRetry(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return domain.Document{}, dErrors.Wrap(err, dErrors.CodeLedger, "publish DID document")
	}

	var out documentResponse
	if err := json.Unmarshal(resp, &out); err != nil {
		return domain.Document{}, dErrors.Wrap(err, dErrors.CodeLedger, "decode published document")
	}
	if out.Document.ID.IsZero() {
		return domain.Document{}, dErrors.New(dErrors.CodeLedger, "ledger returned a document without a DID")
	}
	return out.Document, nil
}

func (c *HTTPClient) Resolve(ctx context.Context, did id.DID) (domain.Document, error) {
	endpoint := c.url("identity/v1/%s/documents/%s", c.packageID, url.PathEscape(did.String()))

	resp, status, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Document{}, dErrors.Wrap(err, dErrors.CodeResolution, "resolve DID")
	}
	if status == http.StatusNotFound {
		return domain.Document{}, dErrors.Newf(dErrors.CodeResolution, "DID %s is not resolvable", did)
	}
	if status != http.StatusOK {
		return domain.Document{}, dErrors.Newf(dErrors.CodeResolution, "resolve DID %s: ledger returned %d", did, status)
	}

	var out documentResponse
	if err := json.Unmarshal(resp, &out); err != nil {
		return domain.Document{}, dErrors.Wrap(err, dErrors.CodeResolution, "decode resolved document")
	}
	return out.Document, nil
}

func (c *HTTPClient) Balance(ctx context.Context, address string) (uint64, error) {
	endpoint := c.url("faucet/v1/balance/%s", url.PathEscape(address))

	resp, status, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeLedger, "query balance")
	}
	if status == http.StatusNotFound {
		// Unknown address: never funded.
		return 0, nil
	}
	if status != http.StatusOK {
		return 0, dErrors.Newf(dErrors.CodeLedger, "query balance: ledger returned %d", status)
	}

	var out balanceResponse
	if err := json.Unmarshal(resp, &out); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeLedger, "decode balance")
	}
	return out.Balance, nil
}

func (c *HTTPClient) RequestFunds(ctx context.Context, address string) error {
	body, err := json.Marshal(fundRequest{Address: address})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode funding request")
	}

	endpoint := c.url("faucet/v1/fund")
	if _, err := c.doWithRetry(ctx, http.MethodPost, endpoint, body); err != nil {
		return dErrors.Wrap(err, dErrors.CodeLedger, "request faucet funds")
	}
	return nil
}

func (c *HTTPClient) recordFailure() {
	c.breaker.RecordFailure()
	if c.breaker.IsOpen() {
		c.mu.Lock()
		c.openedAt = time.Now()
		c.mu.Unlock()
	}
}

// cooldownElapsed lets one probe request through after the circuit has been
// open long enough; its outcome re-opens or closes the breaker.
func (c *HTTPClient) cooldownElapsed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.openedAt) >= breakerCooldown
}

func (c *HTTPClient) url(format string, args ...any) string {
	return c.baseURL + "/" + fmt.Sprintf(format, args...)
}

// doWithRetry performs the request with a single retry on transient failures
// (network errors and 5xx responses). The retry budget is deliberately one:
// these calls mutate ledger state and callers need bounded latency.
func (c *HTTPClient) doWithRetry(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	resp, status, err := c.do(ctx, method, endpoint, body)
	if err == nil && status < http.StatusInternalServerError {
		if status >= http.StatusBadRequest {
			return nil, fmt.Errorf("ledger returned %d: %s", status, string(resp))
		}
		return resp, nil
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(retryBackoff):
	}

	resp, status, err = c.do(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if status >= http.StatusBadRequest {
		return nil, fmt.Errorf("ledger returned %d: %s", status, string(resp))
	}
	return resp, nil
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, int, error) {
	if c.breaker.IsOpen() && !c.cooldownElapsed() {
		return nil, 0, dErrors.Newf(dErrors.CodeLedger, "ledger circuit %s is open", c.breaker.Name())
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.recordFailure()
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		c.recordFailure()
	} else {
		c.breaker.RecordSuccess()
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return raw, resp.StatusCode, nil
}

var _ Ledger = (*HTTPClient)(nil)
