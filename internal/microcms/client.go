// Package microcms provides a client for the microCMS content REST API.
package microcms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"sitecontent/internal/config"
	"sitecontent/internal/logger"
	"sitecontent/internal/models"
	"sitecontent/internal/provider"
	"sitecontent/pkg/utils"
)

// API errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrMissingCredentials   = errors.New("microcms service domain and API key are required")
	ErrInvalidResponse      = errors.New("invalid microcms response")
)

// APIKeyHeader carries the API key on every request.
const APIKeyHeader = "X-MICROCMS-API-KEY"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 10 * 1024 * 1024

// Ensure Client implements provider.Provider.
var _ provider.Provider = (*Client)(nil)

// Client talks to one microCMS service.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	retryPolicy config.RetryPolicy
	logger      *logger.Logger
}

// listResponse is the body of a list request.
type listResponse struct {
	Contents   []models.RawArticle `json:"contents"`
	TotalCount *int                `json:"totalCount"`
	Offset     int                 `json:"offset"`
	Limit      int                 `json:"limit"`
}

// NewClient creates a client from the CMS and retry settings. A zero attempt
// count or timeout takes the configuration default.
func NewClient(cms config.CMSConfig, retry config.RetryPolicy, log *logger.Logger) (*Client, error) {
	if (cms.ServiceDomain == "" && cms.BaseURL == "") || cms.APIKey == "" {
		return nil, ErrMissingCredentials
	}

	if log == nil {
		log = logger.Discard()
	}

	defaults := config.Default().Retry

	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = defaults.MaxAttempts
	}

	if retry.TimeoutSec < 1 {
		retry.TimeoutSec = defaults.TimeoutSec
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: retry.GetTimeout(),
		},
		baseURL:     cms.APIBaseURL(),
		apiKey:      cms.APIKey,
		retryPolicy: retry,
		logger:      log.With("provider", "microcms"),
	}, nil
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc

	return c
}

// Name implements provider.Provider.
func (c *Client) Name() string {
	return "microcms"
}

// List requests one page of records.
func (c *Client) List(ctx context.Context, q provider.ListQuery) (*provider.ListResult, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("offset", strconv.Itoa(q.Offset))

	if q.OrderBy != "" {
		params.Set("orders", q.OrderBy)
	}

	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(q.Endpoint), params.Encode())

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := decode(body, &resp); err != nil {
		return nil, err
	}

	if resp.Contents == nil {
		return nil, fmt.Errorf("%w: missing contents", ErrInvalidResponse)
	}

	c.logger.Debug("page fetched",
		"endpoint", q.Endpoint,
		"offset", q.Offset,
		"limit", q.Limit,
		"items", len(resp.Contents))

	return &provider.ListResult{
		Items:      resp.Contents,
		TotalCount: resp.TotalCount,
	}, nil
}

// Get requests a single record. A 404 is reported as provider.ErrNotFound.
func (c *Client) Get(ctx context.Context, endpoint, id string) (*models.RawArticle, error) {
	target := fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(endpoint), url.PathEscape(id))

	body, err := c.get(ctx, target)
	if err != nil {
		return nil, err
	}

	var raw models.RawArticle
	if err := decode(body, &raw); err != nil {
		return nil, err
	}

	return &raw, nil
}

// get performs a GET with retries on transport failures and temporary statuses.
func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retryPolicy.MaxAttempts; attempt++ {
		body, status, err := c.do(ctx, target)
		if err == nil {
			return body, nil
		}

		if status == http.StatusNotFound {
			return nil, provider.ErrNotFound
		}

		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if status != 0 && !isRetryableStatus(status) {
			return nil, lastErr
		}

		if attempt < c.retryPolicy.MaxAttempts {
			delay := c.retryPolicy.GetRetryDelay(attempt)
			c.logger.Warn("request failed, retrying",
				"attempt", attempt,
				"max_attempts", c.retryPolicy.MaxAttempts,
				"delay", delay,
				"error", err)

			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}

	return nil, lastErr
}

// do sends one request. The status is 0 when no response was received.
func (c *Client) do(ctx context.Context, target string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = utils.BuildHeaders(map[string]string{APIKeyHeader: c.apiKey})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("failed to close response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	return body, resp.StatusCode, nil
}

func decode(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isRetryableStatus reports whether a status code is a temporary failure.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests,
		http.StatusRequestTimeout:
		return true
	}

	return false
}
