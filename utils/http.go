package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"shopify-insights/internal/types"
)

// Response is the transport-level view of a completed request. Status is
// returned as a value so probe-style callers can inspect non-2xx results
// without treating them as transport errors.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// HTTPClient provides HTTP functionality with rate limiting and retries
type HTTPClient struct {
	client  *http.Client
	config  *types.Config
	logger  types.Logger
	limiter *time.Ticker
}

// NewHTTPClient creates a new HTTP client with the given configuration
func NewHTTPClient(config *types.Config, logger types.Logger) *HTTPClient {
	client := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &HTTPClient{
		client:  client,
		config:  config,
		logger:  logger,
		limiter: time.NewTicker(config.RequestDelay),
	}
}

// Get performs a GET request with rate limiting and retries. A non-2xx
// status counts as a failed attempt; after the retry budget is exhausted
// the last error is returned.
func (h *HTTPClient) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := h.do(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	if resp.Status < 200 || resp.Status > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.Status)
	}
	return resp.Body, nil
}

// GetResponse performs a GET request and returns the raw response,
// including non-2xx statuses. Only transport failures are errors.
func (h *HTTPClient) GetResponse(ctx context.Context, url string) (*Response, error) {
	return h.do(ctx, http.MethodGet, url)
}

// Head performs a HEAD request and returns the raw response, including
// non-2xx statuses. Only transport failures are errors.
func (h *HTTPClient) Head(ctx context.Context, url string) (*Response, error) {
	return h.do(ctx, http.MethodHead, url)
}

func (h *HTTPClient) do(ctx context.Context, method, url string) (*Response, error) {
	var lastErr error

	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		// Wait for rate limiter
		select {
		case <-h.limiter.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("User-Agent", h.config.UserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,application/json;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.5")
		req.Header.Set("Connection", "keep-alive")

		h.logger.Debugf("%s %s (attempt %d/%d)", method, url, attempt+1, h.config.MaxRetries+1)

		resp, err := h.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			h.logger.Warnf("Request to %s failed (attempt %d): %v", url, attempt+1, err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			h.logger.Warnf("Failed to read response body from %s (attempt %d): %v", url, attempt+1, err)
			continue
		}

		h.logger.Debugf("Retrieved %d bytes from %s (status %d)", len(body), url, resp.StatusCode)
		return &Response{
			Status:  resp.StatusCode,
			Headers: resp.Header,
			Body:    body,
		}, nil
	}

	return nil, fmt.Errorf("all retry attempts failed: %w", lastErr)
}

// Close cleans up resources
func (h *HTTPClient) Close() {
	if h.limiter != nil {
		h.limiter.Stop()
	}
}
