// Package lightspeed is a minimal client for the Lightspeed Retail V3 API:
// paged item listing, item lookup and creation, purchase orders and order
// lines, plus the OAuth refresh-token exchange.
package lightspeed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meeplemtl/invoice-scanner/internal/common"
)

func init() {
	// The API expects bare JSON numbers for money fields.
	decimal.MarshalJSONWithoutQuotes = true
}

// Config holds the client configuration.
type Config struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	APIBase      string
	TokenURL     string
	TokenFile    string
	Timeout      time.Duration
}

// Client talks to the Lightspeed Retail API on behalf of one account.
type Client struct {
	http   *http.Client
	cfg    Config
	creds  *Credentials
	logger *slog.Logger
}

func NewClient(cfg Config, creds *Credentials, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:   &http.Client{Timeout: timeout},
		cfg:    cfg,
		creds:  creds,
		logger: logger,
	}
}

// StatusError is a non-2xx API response, body included so failures can be
// surfaced verbatim to the operator.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("lightspeed: status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return common.ErrUnauthorized
	case http.StatusTooManyRequests:
		return common.ErrRateLimited
	}
	return nil
}

// IsRateLimited reports whether err is a 429 response.
func IsRateLimited(err error) bool {
	return errors.Is(err, common.ErrRateLimited)
}

func (c *Client) accountURL(resource string) string {
	return fmt.Sprintf("%s/Account/%s/%s", c.cfg.APIBase, c.cfg.AccountID, resource)
}

// do issues one authorized request. A 401 triggers exactly one
// refresh-and-retry cycle; a second consecutive 401 is returned to the
// caller. Rate-limit responses are returned as StatusError for the caller's
// own backoff policy.
func (c *Client) do(ctx context.Context, method, rawURL string, query url.Values, body any) ([]byte, error) {
	raw, err := c.doOnce(ctx, method, rawURL, query, body)
	if err == nil {
		return raw, nil
	}
	if !errors.Is(err, common.ErrUnauthorized) {
		return raw, err
	}

	c.logger.Warn("unauthorized response, refreshing access token", "url", rawURL)
	if refreshErr := c.RefreshAccess(ctx); refreshErr != nil {
		return nil, common.NewAppError("AUTH_REFRESH_FAILED", "token refresh failed", refreshErr)
	}
	return c.doOnce(ctx, method, rawURL, query, body)
}

func (c *Client) doOnce(ctx context.Context, method, rawURL string, query url.Values, body any) ([]byte, error) {
	reqID := uuid.New().String()
	start := time.Now()

	var reader io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		reader = bytes.NewReader(bs)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("Authorization", "Bearer "+c.creds.AccessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("lightspeed.request", "req_id", reqID, "method", method, "url", req.URL.String())

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("lightspeed.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	defer closeBody(resp, c.logger)

	raw, _ := io.ReadAll(resp.Body)

	c.logger.Debug("lightspeed.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return raw, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

func closeBody(resp *http.Response, logger *slog.Logger) {
	if err := resp.Body.Close(); err != nil {
		logger.Warn("response body close error", "error", err)
	}
}
