package mailtm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/mailtm/client-go/internal/api"
)

// Address is a named mail address, as found in a message's from and to.
type Address struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// String formats the address as "Name <address>", or just the address
// when there is no name.
func (a Address) String() string {
	if a.Name == "" {
		return a.Address
	}
	return a.Name + " <" + a.Address + ">"
}

// Message is a received message as listed by the API. The full raw
// content is available through GetSource.
type Message struct {
	Context        string    `json:"@context,omitempty"`
	IRI            string    `json:"@id,omitempty"`
	Type           string    `json:"@type,omitempty"`
	ID             string    `json:"id"`
	AccountID      string    `json:"accountId"`
	MsgID          string    `json:"msgid"`
	From           Address   `json:"from"`
	To             []Address `json:"to"`
	Subject        string    `json:"subject"`
	Intro          string    `json:"intro"`
	Seen           bool      `json:"seen"`
	IsDeleted      bool      `json:"isDeleted"`
	HasAttachments bool      `json:"hasAttachments"`
	Size           int64     `json:"size"`
	DownloadURL    string    `json:"downloadUrl"`
	CreatedAt      Timestamp `json:"createdAt"`
	UpdatedAt      Timestamp `json:"updatedAt"`
}

type messageFields Message

// UnmarshalJSON implements json.Unmarshaler.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw messageFields
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Message(raw)
	if m.To == nil {
		m.To = []Address{}
	}
	return requireTimestamps(m.CreatedAt, m.UpdatedAt)
}

// Messages is one page of an account's messages.
type Messages = Collection[Message]

// ListMessages lists one page of the token owner's messages.
func (c *Client) ListMessages(ctx context.Context, page int, token string) (*Messages, error) {
	resp, err := c.call(ctx, opGetMessage, &api.Request{
		Method: http.MethodGet,
		Path:   "/messages",
		Query:  pageQuery(page),
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	return decode[Messages]("messages", resp.Body)
}

// GetMessage fetches a message by ID.
func (c *Client) GetMessage(ctx context.Context, id, token string) (*Message, error) {
	resp, err := c.call(ctx, opGetMessage, &api.Request{
		Method: http.MethodGet,
		Path:   "/messages/" + url.PathEscape(id),
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	return decode[Message]("message", resp.Body)
}

// DeleteMessage deletes a message. Unlike DeleteAccount it fails with an
// *Error on non-success statuses. On success it reports whether the status
// was exactly 204.
func (c *Client) DeleteMessage(ctx context.Context, id, token string) (bool, error) {
	resp, err := c.call(ctx, opDeleteMessage, &api.Request{
		Method: http.MethodDelete,
		Path:   "/messages/" + url.PathEscape(id),
		Token:  token,
	})
	if err != nil {
		return false, err
	}
	return resp.StatusCode == http.StatusNoContent, nil
}

// MarkMessageRead marks a message as seen and returns the seen flag from
// the response. A response without the flag yields false.
func (c *Client) MarkMessageRead(ctx context.Context, id, token string) (bool, error) {
	resp, err := c.call(ctx, opMarkMessageRead, &api.Request{
		Method: http.MethodPatch,
		Path:   "/messages/" + url.PathEscape(id),
		Token:  token,
	})
	if err != nil {
		return false, err
	}
	if len(resp.Body) == 0 {
		return false, nil
	}

	var result struct {
		Seen bool `json:"seen"`
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return false, &DecodeError{Resource: "message", Err: err}
	}
	return result.Seen, nil
}
