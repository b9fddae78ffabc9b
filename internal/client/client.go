// Package client is the typed REST client for the Community Pulse API.
// Authentication is explicit per request: a TokenSource supplies the bearer
// token each call, nothing is mutated process-wide. Idempotent GETs are
// retried with exponential backoff; mutating calls are never retried.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource yields a bearer token for a single request. Implementations
// front the identity provider; the client never caches or installs tokens
// globally.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed token, used by the CLI and by tests.
type StaticToken string

func (s StaticToken) Token(_ context.Context) (string, error) {
	return string(s), nil
}

type RetryPolicy struct {
	Attempts int
	Initial  time.Duration
	Max      time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Initial: 500 * time.Millisecond, Max: 5 * time.Second}
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	Retry   RetryPolicy
	Tokens  TokenSource
	// Transport overrides the default tuned transport; used to install the
	// metrics RoundTripper.
	Transport http.RoundTripper
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	retry   RetryPolicy
	log     *slog.Logger
}

func New(cfg Config, log *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("client: base URL is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	if cfg.Retry.Attempts <= 0 {
		cfg.Retry = DefaultRetryPolicy()
	}

	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
		}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout, Transport: transport},
		tokens:  cfg.Tokens,
		retry:   cfg.Retry,
		log:     log,
	}, nil
}

// APIError is a non-2xx response. The backend reports failures as a
// human-readable "detail" string; Detail carries it when present.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Detail)
	}

	return fmt.Sprintf("api: unexpected status %d", e.StatusCode)
}

func IsNotFound(err error) bool {
	var apiErr *APIError

	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// get issues an idempotent GET with retry/backoff on network failures and
// 5xx responses.
func (c *Client) get(ctx context.Context, path string, query url.Values, auth bool, out any) error {
	const op = "client.get"

	attempt := 0
	delay := c.retry.Initial

	for {
		attempt++

		err := c.do(ctx, http.MethodGet, path, query, nil, "", auth, out)
		if err == nil {
			return nil
		}

		if !retryable(err) || attempt >= c.retry.Attempts {
			return fmt.Errorf("%s %s: %w", op, path, err)
		}

		c.log.Debug("retrying request",
			slog.String("path", path),
			slog.Int("attempt", attempt),
			slog.String("backoff", delay.String()),
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s %s: %w", op, path, ctx.Err())
		}

		if delay < c.retry.Max {
			delay *= 2
			if delay > c.retry.Max {
				delay = c.retry.Max
			}
		}
	}
}

// send issues a mutating request exactly once.
func (c *Client) send(ctx context.Context, method, path string, body any, auth bool, out any) error {
	var buf io.Reader
	contentType := ""

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client.send %s: encode body: %w", path, err)
		}

		buf = bytes.NewReader(b)
		contentType = "application/json"
	}

	if err := c.do(ctx, method, path, nil, buf, contentType, auth, out); err != nil {
		return fmt.Errorf("client.send %s %s: %w", method, path, err)
	}

	return nil
}

// ImageUpload is an optional image part for multipart create/update calls.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// sendMultipart posts form fields plus an optional image part, matching the
// backend's multipart create/update endpoints. Never retried.
func (c *Client) sendMultipart(ctx context.Context, method, path string, fields map[string]string, image *ImageUpload, out any) error {
	const op = "client.sendMultipart"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("%s %s: %w", op, path, err)
		}
	}

	if image != nil {
		part, err := mw.CreateFormFile("image", image.Filename)
		if err != nil {
			return fmt.Errorf("%s %s: %w", op, path, err)
		}

		if _, err = io.Copy(part, image.Content); err != nil {
			return fmt.Errorf("%s %s: %w", op, path, err)
		}
	}

	if err := mw.Close(); err != nil {
		return fmt.Errorf("%s %s: %w", op, path, err)
	}

	if err := c.do(ctx, method, path, nil, &buf, mw.FormDataContentType(), true, out); err != nil {
		return fmt.Errorf("%s %s: %w", op, path, err)
	}

	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, auth bool, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	req.Header.Set("Accept", "application/json")

	if auth {
		if c.tokens == nil {
			return fmt.Errorf("authenticated call without a token source")
		}

		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("obtain token: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload); err == nil {
		apiErr.Detail = payload.Detail
		if apiErr.Detail == "" {
			apiErr.Detail = payload.Error
		}
	}

	return apiErr
}

func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}

	// Context cancellation is final; everything else on the wire is worth
	// another attempt.
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
