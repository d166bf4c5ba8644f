package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the root of the public mail.tm API.
const DefaultBaseURL = "https://api.mail.tm"

// ContentType is the media type used for both request and response bodies.
const ContentType = "application/ld+json"

// Client is the HTTP API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
}

// Option configures the API client.
type Option func(*Client)

// WithBaseURL sets the base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the HTTP client timeout. Zero means no timeout.
// The timeout is set on a copy, so a client passed to WithHTTPClient is
// never modified.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = timeout
		c.httpClient = &hc
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a new API client.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", c.baseURL)
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")

	return c, nil
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes a single API call.
type Request struct {
	Method string
	// Path is joined to the base URL and must start with "/".
	Path  string
	Query url.Values
	// Body is marshaled to JSON when non-nil.
	Body any
	// Token is sent as a bearer credential when non-empty.
	Token string
}

// Response is the status code and raw body of a completed call.
type Response struct {
	StatusCode int
	Body       []byte
}

// Success reports whether the status code is in the success set.
func (r *Response) Success() bool {
	return IsSuccess(r.StatusCode)
}

// IsSuccess reports whether code is one of 200, 201 or 204.
func IsSuccess(code int) bool {
	switch code {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return true
	}
	return false
}

// Do performs the request and reads the whole response body.
// Only transport-level failures are returned as errors; any HTTP status,
// successful or not, is reported through the Response.
func (c *Client) Do(ctx context.Context, r *Request) (*Response, error) {
	var bodyReader io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	fullURL := c.baseURL + r.Path
	if len(r.Query) > 0 {
		fullURL += "?" + r.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", ContentType)
	if bodyReader != nil {
		req.Header.Set("Content-Type", ContentType)
	}
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.Path),
			zap.Error(err))
		return nil, &NetworkError{Err: err, URL: fullURL}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("read response body: %w", err), URL: fullURL}
	}

	c.logger.Debug("request completed",
		zap.String("method", r.Method),
		zap.String("path", r.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
