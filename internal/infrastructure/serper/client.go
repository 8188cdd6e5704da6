package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/pricelens/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	maxAttempts      = 3
	maxResponseBytes = 1 << 20 // 1 MB cap on search responses
)

// Client handles communication with the Serper search API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	country     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new Serper API client. requestsPerHour bounds the
// query budget against the upstream index; burst of 10 absorbs short spikes.
func NewClient(apiKey, baseURL, country string, requestsPerHour int) *Client {
	if requestsPerHour <= 0 {
		requestsPerHour = 2500
	}
	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerHour)/3600.0), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		country:     country,
		rateLimiter: limiter,
	}
}

// SetDebug toggles verbose request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// debugLog logs only when debug mode is enabled
func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Printf("[SERPER] "+format, args...)
	}
}

// searchPayload is the request body for the Serper /search endpoint
type searchPayload struct {
	Query      string `json:"q"`
	NumResults int    `json:"num"`
	Country    string `json:"gl"`
}

// Search issues one query against the search index and returns the organic
// results. Retries transient failures (network errors, 5xx, 429) up to
// maxAttempts with exponential backoff; other 4xx responses fail immediately.
func (c *Client) Search(ctx context.Context, query string, maxResults int) (*domain.SearchResponse, error) {
	log.Printf("[SERPER] Search called with query: %q", query)

	payload, err := json.Marshal(searchPayload{
		Query:      query,
		NumResults: maxResults,
		Country:    c.country,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search payload: %w", err)
	}

	reqURL := fmt.Sprintf("%s/search", c.baseURL)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			log.Printf("[SERPER] Rate limiter error: %v", err)
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL, payload)
		if err != nil {
			log.Printf("[SERPER] Request error (attempt %d): %v", attempt, err)
			lastErr = err
			if ctx.Err() != nil {
				return nil, lastErr
			}
			sleepBackoff(ctx, attempt)
			continue
		}

		body, err := readLimitedBody(resp.Body, maxResponseBytes)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			sleepBackoff(ctx, attempt)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			c.debugLog("API error (attempt %d) - Status: %d, Body: %s", attempt, resp.StatusCode, string(body))
			if resp.StatusCode == http.StatusTooManyRequests {
				lastErr = fmt.Errorf("%w: status %d", domain.ErrRateLimited, resp.StatusCode)
				sleepBackoff(ctx, attempt)
				continue
			}
			if resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("%w: status %d", domain.ErrSearchAPIFailure, resp.StatusCode)
				sleepBackoff(ctx, attempt)
				continue
			}
			// Remaining 4xx (bad key, bad request) will not improve on retry
			return nil, fmt.Errorf("%w: status %d", domain.ErrSearchAPIFailure, resp.StatusCode)
		}

		var searchResp domain.SearchResponse
		if err := json.Unmarshal(body, &searchResp); err != nil {
			log.Printf("[SERPER] JSON decode error: %v", err)
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}

		log.Printf("[SERPER] Found %d organic results for query: %q", len(searchResp.Organic), query)
		return &searchResp, nil
	}

	log.Printf("[SERPER] All retries failed for query: %q", query)
	return nil, lastErr
}

// doRequest executes an HTTP POST request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "PriceLens/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchAPIFailure, err)
	}

	return resp, nil
}

// exponentialBackoff returns the delay before the given retry attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// sleepBackoff sleeps for the backoff delay unless the context ends first
func sleepBackoff(ctx context.Context, attempt int) {
	timer := time.NewTimer(exponentialBackoff(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return body, nil
}
