package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/quoteflow/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	maxAttempts  = 3
	maxErrorBody = 4096
	maxBodyBytes = 64 << 20
)

// Config holds settings for the hosted corpus API
type Config struct {
	BaseURL           string
	APIKey            string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

// Client loads the historical corpus from a hosted HTTP API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new corpus API client
func NewClient(config Config) *Client {
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 2
	}
	if config.Burst <= 0 {
		config.Burst = 5
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		apiKey:      config.APIKey,
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		rateLimiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
	}
}

// SetDebug toggles verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Printf("[REMOTE] "+format, args...)
	}
}

// exponentialBackoff returns the wait before retrying after attempt (1-based)
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

// newRequest builds a GET request with proper headers
func (c *Client) newRequest(ctx context.Context, reqURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "QuoteFlow/1.0")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	return req, nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// LoadCorpus implements domain.CorpusProvider
func (c *Client) LoadCorpus(ctx context.Context) (*domain.Corpus, error) {
	reqURL := c.baseURL + "/v1/corpus"
	c.debugLog("LoadCorpus %s", reqURL)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(exponentialBackoff(attempt - 1)):
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := c.newRequest(ctx, reqURL)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Printf("[REMOTE] request error (attempt %d): %v", attempt, err)
			lastErr = fmt.Errorf("%w: %v", domain.ErrCorpusUnavailable, err)
			if ctx.Err() != nil {
				return nil, lastErr
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := readLimitedBody(resp.Body, maxErrorBody)
			resp.Body.Close()
			log.Printf("[REMOTE] API error (attempt %d) - Status: %d, Body: %s", attempt, resp.StatusCode, string(body))

			lastErr = fmt.Errorf("%w: status %d", domain.ErrCorpusUnavailable, resp.StatusCode)
			if !retryable(resp.StatusCode) {
				return nil, lastErr
			}
			continue
		}

		body, err := readLimitedBody(resp.Body, maxBodyBytes)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("%w: reading body: %v", domain.ErrCorpusUnavailable, err)
			continue
		}

		var corpus domain.Corpus
		if err := json.Unmarshal(body, &corpus); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		if corpus.Requests == nil {
			corpus.Requests = []domain.Request{}
		}

		log.Printf("[REMOTE] loaded %d requests", len(corpus.Requests))
		return &corpus, nil
	}

	log.Printf("[REMOTE] all %d attempts failed", maxAttempts)
	return nil, lastErr
}
