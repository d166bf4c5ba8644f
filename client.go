package mailtm

import (
	"context"

	"go.uber.org/zap"

	"github.com/mailtm/client-go/internal/api"
)

// Client talks to the mail.tm API. It holds no per-account state: every
// method takes the credentials it needs, so a single Client is safe for
// concurrent use by any number of accounts.
type Client struct {
	apiClient *api.Client
	logger    *zap.Logger
}

// buildAPIClient creates and configures an API client from the given config.
func buildAPIClient(cfg *clientConfig) (*api.Client, error) {
	apiOpts := []api.Option{
		api.WithBaseURL(cfg.baseURL),
		api.WithUserAgent(cfg.userAgent),
		api.WithLogger(cfg.logger),
	}
	if cfg.httpClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(cfg.httpClient))
	}
	if cfg.timeout > 0 {
		apiOpts = append(apiOpts, api.WithTimeout(cfg.timeout))
	}
	return api.New(apiOpts...)
}

// New creates a new mail.tm client.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		baseURL:   DefaultBaseURL,
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	apiClient, err := buildAPIClient(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		apiClient: apiClient,
		logger:    cfg.logger,
	}, nil
}

// BaseURL returns the API root the client sends requests to.
func (c *Client) BaseURL() string {
	return c.apiClient.BaseURL()
}

// call performs one request, checks its status against op and returns the
// raw response.
func (c *Client) call(ctx context.Context, op operation, req *api.Request) (*api.Response, error) {
	resp, err := c.apiClient.Do(ctx, req)
	if err != nil {
		return nil, wrapError(err)
	}
	if err := op.check(resp); err != nil {
		return nil, err
	}
	return resp, nil
}
