// Package client talks to a running mdp-service over HTTP.
//
// Solve retries transport failures and 5xx responses with exponential
// backoff. A 4xx response means the request itself was rejected and is
// returned immediately as an *APIError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/decisionstack/decisionstack/pkg/types"
)

const (
	defaultAttempts = 4
	defaultTimeout  = 30 * time.Second
	requestIDHeader = "X-Request-Id"
	solvePath       = "/mdp/relative-value-iteration"
	healthPath      = "/health"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Temporary reports whether the request may succeed on retry.
func (e *APIError) Temporary() bool {
	return e.Status >= 500
}

// Client is safe for concurrent use.
type Client struct {
	base     string
	http     *http.Client
	header   string
	key      string
	attempts int
	initial  time.Duration
	max      time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sends key in header on every request.
func WithAPIKey(header, key string) Option {
	return func(c *Client) {
		c.header = header
		c.key = key
	}
}

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetry sets the total number of attempts and the backoff bounds.
// attempts below 1 are treated as 1.
func WithRetry(attempts int, initial, max time.Duration) Option {
	return func(c *Client) {
		if attempts < 1 {
			attempts = 1
		}
		c.attempts = attempts
		c.initial = initial
		c.max = max
	}
}

// withSleep is used by tests to skip real waits.
func withSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = fn }
}

// New returns a Client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:     strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: defaultTimeout},
		attempts: defaultAttempts,
		initial:  backoffInitial,
		max:      backoffMax,
		sleep:    sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Solve submits req and returns the solution together with the request ID
// the server assigned.
func (c *Client) Solve(ctx context.Context, req types.SolveRequest) (types.SolveResponse, string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return types.SolveResponse{}, "", fmt.Errorf("client: encode request: %w", err)
	}
	var resp types.SolveResponse
	id, err := c.do(ctx, http.MethodPost, solvePath, body, &resp)
	if err != nil {
		return types.SolveResponse{}, id, err
	}
	return resp, id, nil
}

// Health returns the status string reported by GET /health.
func (c *Client) Health(ctx context.Context) (string, error) {
	var resp types.HealthResponse
	if _, err := c.do(ctx, http.MethodGet, healthPath, nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) (string, error) {
	bo := newBackoff(c.initial, c.max)
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		id, err := c.once(ctx, method, path, body, out)
		if err == nil {
			return id, nil
		}
		if !retryable(err) || ctx.Err() != nil {
			return id, err
		}
		lastErr = err
		if attempt == c.attempts {
			break
		}
		if err := c.sleep(ctx, bo.next()); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("client: giving up after %d attempts: %w", c.attempts, lastErr)
}

func (c *Client) once(ctx context.Context, method, path string, body []byte, out any) (string, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return "", fmt.Errorf("client: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.key != "" {
		req.Header.Set(c.header, c.key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &transportError{err: err}
	}
	defer resp.Body.Close()
	id := resp.Header.Get(requestIDHeader)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return id, &transportError{err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return id, &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return id, fmt.Errorf("client: decode response: %w", err)
	}
	return id, nil
}

type transportError struct{ err error }

func (e *transportError) Error() string { return "client: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var te *transportError
	if errors.As(err, &te) {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Temporary()
	}
	return false
}

func errorMessage(data []byte) string {
	var e types.ErrorResponse
	if err := json.Unmarshal(data, &e); err == nil && e.Error != "" {
		return e.Error
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
