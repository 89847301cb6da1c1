package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/wonny/bullscan/pkg/config"
	"github.com/wonny/bullscan/pkg/logger"
)

// ErrCircuitOpen is returned while the upstream is considered down
var ErrCircuitOpen = errors.New("upstream circuit open")

// StatusError is returned for non-2xx responses after retries are exhausted
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Client is an HTTP client wrapper with pacing, retry and circuit breaking
// ⭐ SSOT: 모든 외부 HTTP 요청은 이 클라이언트를 통해서만 수행
type Client struct {
	httpClient  *http.Client
	logger      *logger.Logger
	retryConfig RetryConfig
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
	userAgent   string
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// New creates a client for the market data provider
// ⭐ SSOT: http.Client 인스턴스는 여기서만 생성
func New(cfg config.MarketDataConfig, log *logger.Logger) *Client {
	rps := cfg.RPS
	if rps <= 0 {
		rps = 1
	}

	settings := gobreaker.Settings{
		Name:    "market-data",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log.Component("httputil"),
		retryConfig: RetryConfig{
			MaxRetries:   cfg.MaxRetries,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     8 * time.Second,
		},
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		breaker:   gobreaker.NewCircuitBreaker(settings),
		userAgent: cfg.UserAgent,
	}
}

// WithRetry overrides the retry schedule
func (c *Client) WithRetry(maxRetries int, initialDelay time.Duration) *Client {
	c.retryConfig.MaxRetries = maxRetries
	c.retryConfig.InitialDelay = initialDelay
	if c.retryConfig.MaxDelay < initialDelay {
		c.retryConfig.MaxDelay = initialDelay
	}
	return c
}

// GetBytes performs a paced GET through the breaker and returns the body of a 2xx response
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.getWithRetry(ctx, url)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, url)
	}
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// GetJSON performs GetBytes and decodes the body into dest
func (c *Client) GetJSON(ctx context.Context, url string, dest interface{}) error {
	body, err := c.GetBytes(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func (c *Client) getWithRetry(ctx context.Context, url string) ([]byte, error) {
	delay := c.retryConfig.InitialDelay
	var lastErr error

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(map[string]interface{}{
				"attempt": attempt,
				"delay":   delay.String(),
				"url":     url,
			}).Warn("retrying HTTP request")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}

			delay *= 2
			if delay > c.retryConfig.MaxDelay {
				delay = c.retryConfig.MaxDelay
			}
		}

		body, status, err := c.once(ctx, url)
		if err == nil && status >= 200 && status < 300 {
			return body, nil
		}
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		lastErr = &StatusError{URL: url, StatusCode: status, Body: truncate(string(body), 200)}
		if !IsRetryableStatus(status) {
			return nil, lastErr
		}
	}

	return nil, lastErr
}

func (c *Client) once(ctx context.Context, url string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limit wait failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create GET request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json, text/html")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"url":         url,
		"status_code": resp.StatusCode,
		"duration":    time.Since(start).String(),
	}).Debug("HTTP request completed")

	return body, resp.StatusCode, nil
}

// IsRetryableStatus reports 5xx and 429 responses
func IsRetryableStatus(statusCode int) bool {
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
