// Package fetcher obtains the liquidity set for a solve: either the
// auction's embedded liquidity, or one fetch against the external
// liquidity service, with a block-keyed cache in between.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/balancer/solver-scripts/internal/graph"
	"github.com/balancer/solver-scripts/internal/liquidity"
	"github.com/ethereum/go-ethereum/common"
	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client is an HTTP client for the external liquidity service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	logger     *zap.Logger
}

// NewClient creates a new liquidity-service client. retries is the number
// of attempts beyond the first; the per-request timeout applies to each
// attempt individually.
func NewClient(baseURL string, timeout time.Duration, retries int, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retries: retries,
		logger:  logger,
	}
}

// Request is the liquidity-fetch payload. The service queries all
// requested protocols concurrently and returns whatever succeeded, pinned
// to the requested block.
type Request struct {
	AuctionID string           `json:"auctionId"`
	RequestID string           `json:"requestId"`
	Tokens    []common.Address `json:"tokens"`
	Pairs     []graph.Pair     `json:"pairs"`
	Block     uint64           `json:"block"`
	Protocols []string         `json:"protocols"`
}

// Response is the liquidity-fetch result.
type Response struct {
	AuctionID string            `json:"auctionId"`
	Liquidity liquidity.Sources `json:"liquidity"`
	Block     uint64            `json:"block"`
	Timestamp time.Time         `json:"timestamp"`
}

// Fetch requests liquidity for the given pair set. The request is
// idempotent on the service side, so failed attempts are retried with
// doubling backoff until the attempts or the context run out.
func (c *Client) Fetch(ctx context.Context, req *Request) (*Response, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}

	body, err := gojson.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	backoff := 250 * time.Millisecond
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		resp, err := c.fetchOnce(ctx, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		c.logger.Debug("liquidity-fetch-attempt-failed",
			zap.String("auction-id", req.AuctionID),
			zap.String("request-id", req.RequestID),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("fetch liquidity after %d attempts: %w", c.retries+1, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, body []byte) (*Response, error) {
	endpoint := fmt.Sprintf("%s/liquidity", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "solver-scripts/1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	FetchDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(payload))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var result Response
	err = gojson.Unmarshal(payload, &result)
	if err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &result, nil
}
