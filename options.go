package mailtm

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mailtm/client-go/internal/api"
)

const (
	// DefaultBaseURL is the root of the public mail.tm API.
	DefaultBaseURL = api.DefaultBaseURL

	defaultUserAgent = "mailtm-go"
)

// clientConfig holds configuration for the client.
type clientConfig struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	logger     *zap.Logger
}

// Option configures the client.
type Option func(*clientConfig)

// WithBaseURL sets the API base URL. Useful for pointing the client at a
// mock server such as the one in package mailtmtest.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets a per-request timeout on the HTTP client.
// By default there is none; deadlines come from the caller's context.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *clientConfig) {
		c.userAgent = ua
	}
}

// WithLogger sets a logger for request tracing at debug level.
// Tokens, passwords and bodies are never logged. Default: no-op.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// mailboxConfig holds configuration for mailbox creation.
type mailboxConfig struct {
	address        string
	domain         string
	password       string
	passwordLength int
}

// MailboxOption configures mailbox creation.
type MailboxOption func(*mailboxConfig)

// WithAddress sets the full address of the new mailbox.
// It takes precedence over WithDomain.
func WithAddress(address string) MailboxOption {
	return func(c *mailboxConfig) {
		c.address = address
	}
}

// WithDomain sets the domain used for a generated address.
func WithDomain(domain string) MailboxOption {
	return func(c *mailboxConfig) {
		c.domain = domain
	}
}

// WithPassword sets the mailbox password instead of generating one.
func WithPassword(password string) MailboxOption {
	return func(c *mailboxConfig) {
		c.password = password
	}
}

// WithPasswordLength sets the length of the generated password.
// Default: DefaultPasswordLength.
func WithPasswordLength(n int) MailboxOption {
	return func(c *mailboxConfig) {
		c.passwordLength = n
	}
}
