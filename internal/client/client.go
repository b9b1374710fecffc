// Package client talks to the record API the way the admin dashboard does:
// bounded retries on reads, parallel loading of every collection, and
// plain request/response calls for mutations.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAttempts = 3
	defaultBackoff  = time.Second
	defaultTimeout  = 10 * time.Second
)

// NetworkError reports a read that kept failing after every retry.
type NetworkError struct {
	Endpoint string
	Attempts int
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.Endpoint, e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response. Code carries the body's "error" field
// when the server sent one.
type HTTPError struct {
	Status int
	Code   string
}

func (e *HTTPError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, http.StatusText(e.Status))
}

// Client calls the record API at a base URL.
type Client struct {
	baseURL  string
	http     *http.Client
	attempts int
	backoff  time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithAttempts sets how many times FetchWithRetry tries an endpoint.
func WithAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// WithBackoff sets the wait unit; attempt n waits n units before retrying.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// WithSleep replaces the wait between attempts.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = fn }
}

// New creates a Client for baseURL, e.g. "http://localhost:3000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: defaultTimeout},
		attempts: defaultAttempts,
		backoff:  defaultBackoff,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API origin.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchWithRetry GETs endpoint. A transport error or non-2xx response is
// retried after attempt×backoff; once every attempt failed it returns a
// NetworkError. Cancelling ctx stops the wait.
func (c *Client) FetchWithRetry(ctx context.Context, endpoint string) (json.RawMessage, error) {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		slog.Debug("fetching", "endpoint", endpoint, "attempt", attempt)
		body, err := c.do(ctx, http.MethodGet, endpoint, nil)
		if err == nil {
			return body, nil
		}
		lastErr = err
		slog.Warn("fetch attempt failed", "endpoint", endpoint, "attempt", attempt, "error", err)

		if attempt == c.attempts {
			break
		}
		if err := c.sleep(ctx, time.Duration(attempt)*c.backoff); err != nil {
			return nil, &NetworkError{Endpoint: endpoint, Attempts: attempt, Err: err}
		}
	}
	return nil, &NetworkError{Endpoint: endpoint, Attempts: c.attempts, Err: lastErr}
}

// Ack is the liveness response of GET /api/test.
type Ack struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
}

// Ping checks that the API answers before anything is loaded.
func (c *Client) Ping(ctx context.Context) (Ack, error) {
	var ack Ack
	body, err := c.do(ctx, http.MethodGet, "/api/test", nil)
	if err != nil {
		return ack, fmt.Errorf("api unavailable: %w", err)
	}
	if err := json.Unmarshal(body, &ack); err != nil {
		return ack, fmt.Errorf("decode ping: %w", err)
	}
	return ack, nil
}

// Post sends body as JSON and decodes the response into out (if non-nil).
func (c *Client) Post(ctx context.Context, endpoint string, body, out any) error {
	return c.send(ctx, http.MethodPost, endpoint, body, out)
}

// Put sends body as JSON and decodes the response into out (if non-nil).
func (c *Client) Put(ctx context.Context, endpoint string, body, out any) error {
	return c.send(ctx, http.MethodPut, endpoint, body, out)
}

// Delete removes the resource at endpoint and returns the server's message.
func (c *Client) Delete(ctx context.Context, endpoint string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.send(ctx, http.MethodDelete, endpoint, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) send(ctx context.Context, method, endpoint string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	resp, err := c.do(ctx, method, endpoint, payload)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, endpoint, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		herr := &HTTPError{Status: resp.StatusCode}
		var body struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &body) == nil {
			herr.Code = body.Error
		}
		return nil, herr
	}
	return data, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
