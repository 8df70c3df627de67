// internal/scraper/client.go
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/evostudios/StableScraper/internal/utils"
)

// HTTPClient provides the HTTP client used for report and player page
// fetches: fixed browser-like user agent, bounded timeout, optional rate
// limiting toward the upstream host.
type HTTPClient struct {
	httpClient    *http.Client
	userAgent     string
	rateLimiter   *rate.Limiter
	retryAttempts int
	retryDelay    time.Duration
}

// ClientConfig defines configuration options for the HTTP client.
type ClientConfig struct {
	Timeout       time.Duration
	UserAgent     string
	RateLimit     float64 // requests per second; 0 disables limiting
	RateBurst     int
	RetryAttempts int
	RetryDelay    time.Duration
}

// NewHTTPClient creates a new HTTP client with the specified configuration.
func NewHTTPClient(config ClientConfig) *HTTPClient {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = time.Second
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		burst := config.RateBurst
		if burst == 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}

	return &HTTPClient{
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent:     config.UserAgent,
		rateLimiter:   limiter,
		retryAttempts: config.RetryAttempts,
		retryDelay:    config.RetryDelay,
	}
}

// Fetch retrieves the raw markup at targetURL. Non-2xx responses and
// transport failures surface as FETCH_FAILED errors.
func (c *HTTPClient) Fetch(ctx context.Context, targetURL string) (string, error) {
	resp, err := c.Get(ctx, targetURL, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", utils.WrapError(utils.ErrCodeFetchFailed, "failed to read response body", err).
			WithContext("url", targetURL)
	}

	return string(body), nil
}

// Get performs an HTTP GET with the client's headers and retry policy and
// returns the open response. The caller owns the body.
func (c *HTTPClient) Get(ctx context.Context, targetURL string, headers map[string]string) (*http.Response, error) {
	if _, err := url.Parse(targetURL); err != nil {
		return nil, utils.WrapError(utils.ErrCodeFetchFailed, "invalid URL", err).
			WithContext("url", targetURL)
	}

	var lastErr error

	for attempt := 0; attempt <= c.retryAttempts; attempt++ {
		if c.rateLimiter != nil {
			if err := c.rateLimiter.Wait(ctx); err != nil {
				return nil, utils.WrapError(utils.ErrCodeFetchFailed, "rate limiter interrupted", err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
		if err != nil {
			return nil, utils.WrapError(utils.ErrCodeFetchFailed, "failed to create request", err)
		}
		c.setRequestHeaders(req, headers)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = utils.WrapError(utils.ErrCodeFetchFailed,
				fmt.Sprintf("request failed (attempt %d/%d)", attempt+1, c.retryAttempts+1), err).
				WithContext("url", targetURL).
				WithRetryable(true)
			if attempt < c.retryAttempts {
				c.waitForRetry(ctx, attempt)
				continue
			}
			break
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		resp.Body.Close()
		lastErr = utils.NewError(utils.ErrCodeFetchFailed,
			fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.Status)).
			WithContext("url", targetURL).
			WithRetryable(shouldRetryStatusCode(resp.StatusCode))

		if !shouldRetryStatusCode(resp.StatusCode) {
			break
		}
		if attempt < c.retryAttempts {
			c.waitForRetry(ctx, attempt)
		}
	}

	return nil, lastErr
}

// setRequestHeaders configures browser-like request headers.
func (c *HTTPClient) setRequestHeaders(req *http.Request, extra map[string]string) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	for key, value := range extra {
		req.Header.Set(key, value)
	}
}

// waitForRetry implements linear backoff scaled by attempt number.
func (c *HTTPClient) waitForRetry(ctx context.Context, attempt int) {
	delay := c.retryDelay * time.Duration(attempt+1)
	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
}

// shouldRetryStatusCode determines if a status code warrants a retry.
func shouldRetryStatusCode(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
