// Package api provides the HTTP client for the external collection backend.
// All state the application shows lives server-side; this package is the only
// path to it. Authentication is a session cookie managed by the client's
// cookie jar, never a bearer token.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultUserAgent = "YGO-Companion/1.0"

// ClientConfig holds configuration for the backend HTTP client.
type ClientConfig struct {
	// BaseURL is the base URL of the backend API (e.g., "http://localhost:8080/api")
	BaseURL string

	// Timeout is the timeout for individual requests
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts for read requests.
	// Mutations are never retried: every request carries a quantity delta and
	// a blind retry could apply it twice.
	MaxRetries int

	// RetryBaseDelay is the base delay for exponential backoff
	RetryBaseDelay time.Duration

	// RequestsPerSecond caps the client-side request rate (0 = no limit)
	RequestsPerSecond float64

	// Logger receives request-level debug logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultClientConfig returns a ClientConfig with sensible defaults.
func DefaultClientConfig(baseURL string) *ClientConfig {
	return &ClientConfig{
		BaseURL:           strings.TrimRight(baseURL, "/"),
		Timeout:           10 * time.Second,
		MaxRetries:        3,
		RetryBaseDelay:    500 * time.Millisecond,
		RequestsPerSecond: 10,
	}
}

// Client is an HTTP client for the collection backend.
type Client struct {
	config      *ClientConfig
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// NewClient creates a new backend client with its own cookie jar. The jar
// holds the session cookie issued by /auth/login for the lifetime of the
// client.
func NewClient(config *ClientConfig) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Jar:     jar,
		},
		rateLimiter: limiter,
		logger:      logger,
	}, nil
}

// SetBaseURL updates the base URL for the client.
func (c *Client) SetBaseURL(u string) {
	c.config.BaseURL = strings.TrimRight(u, "/")
}

// GetBaseURL returns the current base URL.
func (c *Client) GetBaseURL() string {
	return c.config.BaseURL
}

// SessionCookies returns the cookies currently held for the backend host.
func (c *Client) SessionCookies() []*http.Cookie {
	u, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return nil
	}
	return c.httpClient.Jar.Cookies(u)
}

// SetSessionCookies installs previously saved cookies for the backend host,
// restoring a session without a fresh login.
func (c *Client) SetSessionCookies(cookies []*http.Cookie) error {
	u, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	c.httpClient.Jar.SetCookies(u, cookies)
	return nil
}

// ClearSession drops all session cookies.
func (c *Client) ClearSession() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("failed to reset cookie jar: %w", err)
	}
	c.httpClient.Jar = jar
	return nil
}

// get performs a GET request with rate limiting and retry on network and
// server (5xx/429) failures. The response body is decoded into result.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.config.RetryBaseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return &Error{Kind: KindNetwork, Message: "request cancelled", Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		err := c.do(ctx, http.MethodGet, path, nil, result)
		if err == nil {
			return nil
		}
		lastErr = err

		kind := KindOf(err)
		if kind != KindNetwork && kind != KindServer {
			return err
		}
		c.logger.Debug("retrying request", "path", path, "attempt", attempt+1, "error", err)
	}
	return lastErr
}

// send performs a mutating request exactly once. result may be nil when the
// caller only cares about success.
func (c *Client) send(ctx context.Context, method, path string, body, result interface{}) error {
	return c.do(ctx, method, path, body, result)
}

// do executes a single JSON request/response cycle.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	resp, err := c.roundTrip(ctx, method, path, body, "")
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFromResponse(resp)
	}

	if result == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &Error{
			Kind:       KindServer,
			StatusCode: resp.StatusCode,
			Message:    "malformed response from server",
			Err:        err,
		}
	}
	return nil
}

// roundTrip builds and executes one HTTP request. contentType overrides the
// default JSON content type for pre-encoded bodies (multipart uploads).
func (c *Client) roundTrip(ctx context.Context, method, path string, body interface{}, contentType string) (*http.Response, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, &Error{Kind: KindNetwork, Message: "request cancelled", Err: err}
		}
	}

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)
	if reader != nil {
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "could not reach server", Err: err}
	}
	return resp, nil
}

// errorBody is the JSON error envelope the backend uses for failures.
type errorBody struct {
	Error string `json:"error"`
}

// errorFromResponse classifies a non-2xx response into an *Error, preferring
// the server's message field. The body is consumed.
func (c *Client) errorFromResponse(resp *http.Response) error {
	apiErr := &Error{
		Kind:       KindForStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil {
		var eb errorBody
		if jsonErr := json.Unmarshal(raw, &eb); jsonErr == nil && eb.Error != "" {
			apiErr.Message = eb.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = genericMessage(apiErr.Kind)
	}
	return apiErr
}

func genericMessage(kind ErrorKind) string {
	switch kind {
	case KindValidation:
		return "the server rejected the request"
	case KindUnauthorized:
		return "not logged in"
	case KindForbidden:
		return "not allowed"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflicts with existing data"
	case KindNetwork:
		return "could not reach server"
	default:
		return "the server reported an error"
	}
}
