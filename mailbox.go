package mailtm

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNoDomain is returned by CreateMailbox when no usable domain is available.
var ErrNoDomain = errors.New("no active public domain available")

// Mailbox binds an account, its password and its bearer token to a Client.
// It is a convenience over the Client methods and performs no background
// work; each method issues exactly one request. A Mailbox is safe for
// concurrent use.
type Mailbox struct {
	client *Client

	mu       sync.RWMutex
	account  *Account
	password string
	token    string
}

// Address returns the mailbox address.
func (m *Mailbox) Address() string {
	return m.Account().Address
}

// Password returns the mailbox password.
func (m *Mailbox) Password() string {
	return m.password
}

// Token returns the bearer token of the mailbox.
func (m *Mailbox) Token() string {
	return m.token
}

// Account returns the account as last fetched.
func (m *Mailbox) Account() *Account {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.account
}

// CreateMailbox creates a new account and logs into it.
//
// Without options it picks the first active, public domain from the first
// page of ListDomains, generates an address with NewAddress and a password
// with GeneratePassword, then calls CreateAccount and GetToken.
func (c *Client) CreateMailbox(ctx context.Context, opts ...MailboxOption) (*Mailbox, error) {
	cfg := &mailboxConfig{
		passwordLength: DefaultPasswordLength,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	address := cfg.address
	if address == "" {
		domain := cfg.domain
		if domain == "" {
			d, err := c.firstDomain(ctx)
			if err != nil {
				return nil, err
			}
			domain = d
		}
		address = NewAddress(domain)
	}

	password := cfg.password
	if password == "" {
		password = GeneratePassword(cfg.passwordLength)
	}

	account, err := c.CreateAccount(ctx, address, password)
	if err != nil {
		return nil, err
	}

	token, err := c.GetToken(ctx, address, password)
	if err != nil {
		return nil, fmt.Errorf("log into new account: %w", err)
	}

	return &Mailbox{
		client:   c,
		account:  account,
		password: password,
		token:    token.Token,
	}, nil
}

// OpenMailbox logs into an existing account.
func (c *Client) OpenMailbox(ctx context.Context, address, password string) (*Mailbox, error) {
	token, err := c.GetToken(ctx, address, password)
	if err != nil {
		return nil, err
	}

	account, err := c.GetCurrentAccount(ctx, token.Token)
	if err != nil {
		return nil, err
	}

	return &Mailbox{
		client:   c,
		account:  account,
		password: password,
		token:    token.Token,
	}, nil
}

func (c *Client) firstDomain(ctx context.Context) (string, error) {
	domains, err := c.ListDomains(ctx, 1)
	if err != nil {
		return "", err
	}
	for _, d := range domains.Member {
		if d.IsActive && !d.IsPrivate {
			return d.Domain, nil
		}
	}
	return "", ErrNoDomain
}
