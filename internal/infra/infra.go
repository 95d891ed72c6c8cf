// Package infra provides shared infrastructure used by the fetchers:
// a rate-limited HTTP GET helper.
package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultUserAgent is sent with every request. FRED's graph endpoint serves
// an HTML page to some non-browser agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

// ErrHTTP wraps a non-2xx response. Body holds the start of the response
// for debug logging and is not part of the error text.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, e.Status)
}

// --- Rate limiter ---

// RateLimiter spaces outgoing requests. A nil *RateLimiter never waits.
type RateLimiter struct {
	lim *rate.Limiter
}

// NewRateLimiter allows perSecond requests on average with bursts of burst.
// A non-positive perSecond disables limiting.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{lim: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until a request slot is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}
	return rl.lim.Wait(ctx)
}

// --- HTTP ---

// Client performs GET requests with a fixed timeout, user agent and limiter.
type Client struct {
	http      *http.Client
	userAgent string
	limiter   *RateLimiter
}

// NewClient creates a Client. Zero values fall back to DefaultTimeout and
// DefaultUserAgent.
func NewClient(timeout time.Duration, userAgent string, limiter *RateLimiter) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
		limiter:   limiter,
	}
}

// Timeout returns the per-request ceiling.
func (c *Client) Timeout() time.Duration { return c.http.Timeout }

// DoGet performs a GET request and returns the body. Responses with status
// >= 400 are returned as *ErrHTTP along with the status code; the caller is
// responsible for closing the returned ReadCloser on success.
func (c *Client) DoGet(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, limiterError(ctx, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/csv, text/plain, */*")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP GET %s: %w", url, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, resp.StatusCode, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, resp.StatusCode, nil
}

// limiterError maps a failed limiter wait onto the context error it stands
// for. The limiter refuses up front when the next slot falls after the
// deadline, before ctx itself has expired.
func limiterError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if _, ok := ctx.Deadline(); ok {
		return fmt.Errorf("rate limit wait: %v: %w", err, context.DeadlineExceeded)
	}
	return fmt.Errorf("rate limit wait: %w", err)
}
