package mailtm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mailtm/client-go/internal/api"
)

// Account is a mailbox account.
type Account struct {
	Context    string `json:"@context,omitempty"`
	IRI        string `json:"@id,omitempty"`
	Type       string `json:"@type,omitempty"`
	ID         string `json:"id"`
	Address    string `json:"address"`
	Quota      int64  `json:"quota"`
	Used       int64  `json:"used"`
	IsDisabled bool   `json:"isDisabled"`
	// IsDeleted is read from isDeleted. Older clients always copied
	// isDisabled here; when the server omits isDeleted that value is kept.
	IsDeleted bool      `json:"isDeleted"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

type accountFields Account

// UnmarshalJSON implements json.Unmarshaler.
func (a *Account) UnmarshalJSON(data []byte) error {
	var raw struct {
		accountFields
		IsDeleted *bool `json:"isDeleted"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Account(raw.accountFields)
	if raw.IsDeleted != nil {
		a.IsDeleted = *raw.IsDeleted
	} else {
		a.IsDeleted = a.IsDisabled
	}
	return requireTimestamps(a.CreatedAt, a.UpdatedAt)
}

// requireTimestamps fails when createdAt or updatedAt was absent.
func requireTimestamps(createdAt, updatedAt Timestamp) error {
	if createdAt.IsZero() {
		return fmt.Errorf("missing createdAt")
	}
	if updatedAt.IsZero() {
		return fmt.Errorf("missing updatedAt")
	}
	return nil
}

type credentials struct {
	Address  string `json:"address"`
	Password string `json:"password"`
}

// CreateAccount registers a new account. The address domain must be one of
// the domains returned by ListDomains.
func (c *Client) CreateAccount(ctx context.Context, address, password string) (*Account, error) {
	resp, err := c.call(ctx, opCreateAccount, &api.Request{
		Method: http.MethodPost,
		Path:   "/accounts",
		Body:   credentials{Address: address, Password: password},
	})
	if err != nil {
		return nil, err
	}
	return decode[Account]("account", resp.Body)
}

// GetAccount fetches an account by ID.
func (c *Client) GetAccount(ctx context.Context, id, token string) (*Account, error) {
	resp, err := c.call(ctx, opGetAccount, &api.Request{
		Method: http.MethodGet,
		Path:   "/accounts/" + url.PathEscape(id),
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	return decode[Account]("account", resp.Body)
}

// GetCurrentAccount fetches the account the token belongs to.
// Unlike GetAccount, a 401 is reported as KindCannotGetAccountInfo.
func (c *Client) GetCurrentAccount(ctx context.Context, token string) (*Account, error) {
	resp, err := c.call(ctx, opGetCurrentAccount, &api.Request{
		Method: http.MethodGet,
		Path:   "/me",
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	return decode[Account]("account", resp.Body)
}

// DeleteAccount deletes an account. It reports true iff the server answered
// 204 No Content. Other statuses yield false and a nil error; the error is
// non-nil only for transport failures.
func (c *Client) DeleteAccount(ctx context.Context, id, token string) (bool, error) {
	resp, err := c.apiClient.Do(ctx, &api.Request{
		Method: http.MethodDelete,
		Path:   "/accounts/" + url.PathEscape(id),
		Token:  token,
	})
	if err != nil {
		return false, wrapError(err)
	}
	return resp.StatusCode == http.StatusNoContent, nil
}
