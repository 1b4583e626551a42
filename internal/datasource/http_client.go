package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/hitter-splits/internal/config"
	"github.com/yourusername/hitter-splits/internal/logger"
	"github.com/yourusername/hitter-splits/internal/metrics"
)

// HTTPClientConfig holds configuration for HTTP clients
type HTTPClientConfig struct {
	Timeout                time.Duration
	MaxRetries             int
	RetryWaitMin           time.Duration
	RetryWaitMax           time.Duration
	RateLimit              float64 // requests per second
	CircuitBreakerMax      int     // max consecutive failures before circuit break
	CircuitBreakerCooldown time.Duration
}

// DefaultHTTPClientConfig returns recommended defaults
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:                30 * time.Second,
		MaxRetries:             3,
		RetryWaitMin:           200 * time.Millisecond,
		RetryWaitMax:           5 * time.Second,
		RateLimit:              5.0,
		CircuitBreakerMax:      5,
		CircuitBreakerCooldown: 30 * time.Second,
	}
}

// HTTPClientConfigFromProvider maps provider configuration onto client settings
func HTTPClientConfigFromProvider(p config.ProviderConfig) HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:                time.Duration(p.TimeoutSeconds) * time.Second,
		MaxRetries:             p.MaxRetries,
		RetryWaitMin:           time.Duration(p.RetryWaitMinMs) * time.Millisecond,
		RetryWaitMax:           time.Duration(p.RetryWaitMaxMs) * time.Millisecond,
		RateLimit:              p.RateLimit,
		CircuitBreakerMax:      p.CircuitBreakerMax,
		CircuitBreakerCooldown: time.Duration(p.CircuitBreakerCooldownSeconds) * time.Second,
	}
}

// RateLimitedHTTPClient wraps retryablehttp.Client with rate limiting and circuit breaker.
// After the cooldown an open breaker lets one request through; success closes it.
type RateLimitedHTTPClient struct {
	client   *retryablehttp.Client
	limiter  *rate.Limiter
	logger   *logrus.Entry
	now      func() time.Time
	maxFails int
	cooldown time.Duration

	mu                sync.Mutex
	consecutiveErrors int
	isOpen            bool
	openedAt          time.Time
	lastError         error
}

// NewRateLimitedHTTPClient creates a new rate-limited HTTP client
func NewRateLimitedHTTPClient(cfg HTTPClientConfig, log *logrus.Logger) *RateLimitedHTTPClient {
	if log == nil {
		log = logger.Discard()
	}
	if cfg.CircuitBreakerMax <= 0 {
		cfg.CircuitBreakerMax = DefaultHTTPClientConfig().CircuitBreakerMax
	}
	if cfg.CircuitBreakerCooldown <= 0 {
		cfg.CircuitBreakerCooldown = DefaultHTTPClientConfig().CircuitBreakerCooldown
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = customRetryPolicy()
	// Hand the final response back instead of a generic "giving up" error
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = logger.NewRetryLogger(log, "http")

	return &RateLimitedHTTPClient{
		client:   retryClient,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		logger:   log.WithField("component", "http_client"),
		now:      time.Now,
		maxFails: cfg.CircuitBreakerMax,
		cooldown: cfg.CircuitBreakerCooldown,
	}
}

// Do executes an HTTP request with rate limiting and circuit breaker
func (c *RateLimitedHTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.allow(); err != nil {
		return nil, err
	}

	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	retryReq, err := retryablehttp.FromRequest(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to wrap request: %w", err)
	}

	resp, err := c.client.Do(retryReq)
	switch {
	case err != nil:
		// caller deadlines and cancellations are not upstream failures
		if ctx.Err() == nil {
			c.recordFailure(err)
		}
		return nil, err
	case resp.StatusCode >= 500:
		c.recordFailure(fmt.Errorf("server returned %d", resp.StatusCode))
	default:
		c.recordSuccess()
	}

	return resp, nil
}

// Get executes a GET request
func (c *RateLimitedHTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Post executes a POST request
func (c *RateLimitedHTTPClient) Post(ctx context.Context, url string, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return c.Do(ctx, req)
}

// IsOpen reports whether the circuit breaker is currently open
func (c *RateLimitedHTTPClient) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isOpen
}

// Close closes any resources held by the client
func (c *RateLimitedHTTPClient) Close() error {
	c.client.HTTPClient.CloseIdleConnections()
	return nil
}

func (c *RateLimitedHTTPClient) allow() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isOpen && c.now().Sub(c.openedAt) < c.cooldown {
		return fmt.Errorf("%w: %v", ErrCircuitOpen, c.lastError)
	}
	return nil
}

func (c *RateLimitedHTTPClient) recordFailure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveErrors++
	c.lastError = err

	if c.isOpen {
		// half-open trial request failed
		c.openedAt = c.now()
		return
	}
	if c.consecutiveErrors >= c.maxFails {
		c.isOpen = true
		c.openedAt = c.now()
		metrics.RecordCircuitBreakerTrip()
		c.logger.WithFields(logrus.Fields{
			"consecutive_errors": c.consecutiveErrors,
			"cooldown":           c.cooldown.String(),
		}).WithError(err).Warn("Circuit breaker opened")
	}
}

func (c *RateLimitedHTTPClient) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isOpen {
		c.logger.Info("Circuit breaker closed")
	}
	c.consecutiveErrors = 0
	c.isOpen = false
	c.lastError = nil
}

// customRetryPolicy defines which HTTP responses should trigger a retry
func customRetryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		// Do not retry once the caller has given up
		if ctx.Err() != nil {
			return false, ctx.Err()
		}

		if err != nil {
			// Retry on network errors
			return true, nil
		}

		// Retry on rate limit (429) and server errors (500, 502, 503, 504)
		switch resp.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true, nil
		}

		// Don't retry on other client errors
		return false, nil
	}
}
