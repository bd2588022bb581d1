package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"time"
)

// Error variables for HTTP client errors
var (
	// ErrMaxRetriesExceeded is returned when all retry attempts have failed
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
	// ErrRequestTimeout is returned when a request times out
	ErrRequestTimeout = errors.New("request timeout")
)

// envVarPattern matches ${VAR_NAME} syntax for environment variable substitution
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	// MaxRetries is the number of attempts after the first one
	MaxRetries int
	// BaseDelay is the delay before the first retry
	BaseDelay time.Duration
	// MaxDelay caps the exponential delay
	MaxDelay time.Duration
	// Timeout bounds each individual request; zero means no timeout
	Timeout time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
// Uses exponential backoff with delays of 1s, 2s, 4s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   4 * time.Second,
		Timeout:    30 * time.Second,
	}
}

// Client wraps an http.Client with retry and default-header handling.
type Client struct {
	client  *http.Client
	config  RetryConfig
	headers map[string]string
	// sleep waits between attempts; replaced in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a client using the default retry configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultRetryConfig())
}

// NewClientWithConfig creates a client with a custom retry configuration.
func NewClientWithConfig(config RetryConfig) *Client {
	return &Client{
		client: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
		sleep:  sleepContext,
	}
}

// SetHTTPClient sets a custom underlying HTTP client (useful for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.client = client
}

// SetDelayFunc replaces the wait between attempts. The function receives the
// delay that would normally be slept.
func (c *Client) SetDelayFunc(fn func(time.Duration)) {
	c.sleep = func(ctx context.Context, d time.Duration) error {
		fn(d)
		return ctx.Err()
	}
}

// SetDefaultHeaders sets headers applied to every request. Values are
// expanded with SubstituteEnvVars at request time.
func (c *Client) SetDefaultHeaders(headers map[string]string) {
	c.headers = headers
}

// Get performs a GET with retry logic. Network errors, 5xx and 429 responses
// are retried with exponential backoff; any other response is returned as is
// and the caller owns its body.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for key, value := range c.headers {
		req.Header.Set(key, SubstituteEnvVars(value))
	}
	return c.Do(ctx, req)
}

// Do executes req with retry logic.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt > 0 {
			if err := c.sleep(ctx, c.calculateDelay(attempt)); err != nil {
				return nil, err
			}
		}

		resp, err := c.client.Do(req.Clone(ctx))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if isTimeoutError(err) {
				lastErr = fmt.Errorf("%w: %v", ErrRequestTimeout, err)
			}
			continue
		}

		if shouldRetry(resp.StatusCode) {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: status %d", resp.StatusCode)
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, lastErr)
}

// calculateDelay returns baseDelay * 2^(attempt-1), capped at MaxDelay.
func (c *Client) calculateDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delay := c.config.BaseDelay * time.Duration(1<<(attempt-1))
	if delay > c.config.MaxDelay {
		delay = c.config.MaxDelay
	}
	return delay
}

// shouldRetry reports whether a status code is worth another attempt.
func shouldRetry(statusCode int) bool {
	return (statusCode >= 500 && statusCode < 600) || statusCode == http.StatusTooManyRequests
}

// isTimeoutError checks if an error is a timeout error.
func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	if errors.As(err, &te) {
		return te.Timeout()
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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

// SubstituteEnvVars replaces ${VAR_NAME} patterns in a string with
// the corresponding environment variable values.
// Unset variables are replaced with an empty string.
func SubstituteEnvVars(value string) string {
	return envVarPattern.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}
