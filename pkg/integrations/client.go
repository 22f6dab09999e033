package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	errs "github.com/quarkusio/extensions-enricher/pkg/errors"
	"github.com/quarkusio/extensions-enricher/pkg/httputil"
	"github.com/quarkusio/extensions-enricher/pkg/observability"
)

// Client provides shared HTTP functionality for the GitHub API clients and
// the image downloader. It handles retry logic, rate limiting and common
// request headers.
type Client struct {
	http     *http.Client
	headers  map[string]string
	limiter  *rate.Limiter
	attempts int
	delay    time.Duration
}

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client, typically with one
// from [NewAuthHTTPClient] or an httptest server's client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithLimiter throttles every request through l.
func WithLimiter(l *rate.Limiter) ClientOption {
	return func(c *Client) { c.limiter = l }
}

// WithRetry sets the number of attempts and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) ClientOption {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

// NewClient creates a Client with the given default headers.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed.
func NewClient(headers map[string]string, opts ...ClientOption) *Client {
	c := &Client{
		http:     NewHTTPClient(),
		headers:  headers,
		limiter:  rate.NewLimiter(rate.Inf, 0),
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	return c.do(ctx, http.MethodGet, url, nil, headers, func(resp *http.Response) error {
		return json.NewDecoder(resp.Body).Decode(v)
	})
}

// GetBytes performs an HTTP GET request and returns the raw body together
// with the response Content-Type.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, string, error) {
	var (
		data        []byte
		contentType string
	)
	err := c.do(ctx, http.MethodGet, url, nil, nil, func(resp *http.Response) error {
		var err error
		data, err = io.ReadAll(resp.Body)
		contentType = resp.Header.Get("Content-Type")
		return err
	})
	return data, contentType, err
}

// PostJSON sends body as JSON and decodes the JSON response into v.
func (c *Client) PostJSON(ctx context.Context, url string, body, v any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	headers := map[string]string{"Content-Type": "application/json"}
	return c.do(ctx, http.MethodPost, url, payload, headers, func(resp *http.Response) error {
		return json.NewDecoder(resp.Body).Decode(v)
	})
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte, headers map[string]string, decode func(*http.Response) error) error {
	return httputil.Retry(ctx, c.attempts, c.delay, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return err
		}
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		hooks := observability.HTTP()
		host, path := req.URL.Host, req.URL.Path
		hooks.OnRequest(ctx, method, host, path)
		start := time.Now()

		resp, err := c.http.Do(req)
		if err != nil {
			hooks.OnError(ctx, method, host, path, err)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
		}
		defer resp.Body.Close()
		hooks.OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))

		if err := checkStatus(resp); err != nil {
			return err
		}
		return decode(resp)
	})
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusUnauthorized:
		return errs.New(errs.ErrCodeUnauthorized, "status %d from %s", code, resp.Request.URL.Host)
	case code == http.StatusTooManyRequests,
		code == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &errs.RateLimitedError{RetryAfter: retryAfter, Message: resp.Status}
	case code >= 500:
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
