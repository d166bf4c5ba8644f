package mailtm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mailtm/client-go/internal/api"
)

// Domain is a mail domain accounts can be created under.
type Domain struct {
	Context   string    `json:"@context,omitempty"`
	IRI       string    `json:"@id,omitempty"`
	Type      string    `json:"@type,omitempty"`
	ID        string    `json:"id"`
	Domain    string    `json:"domain"`
	IsActive  bool      `json:"isActive"`
	IsPrivate bool      `json:"isPrivate"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

type domainFields Domain

// UnmarshalJSON implements json.Unmarshaler.
func (d *Domain) UnmarshalJSON(data []byte) error {
	var raw domainFields
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Domain(raw)
	return requireTimestamps(d.CreatedAt, d.UpdatedAt)
}

// Domains is one page of the domain collection.
type Domains = Collection[Domain]

// pageQuery returns the page query parameter. The page is sent as given;
// the server rejects pages below 1.
func pageQuery(page int) url.Values {
	return url.Values{"page": {strconv.Itoa(page)}}
}

// ListDomains lists the domains available for new accounts. It needs no
// token. An empty page is a valid result, not an error.
func (c *Client) ListDomains(ctx context.Context, page int) (*Domains, error) {
	resp, err := c.call(ctx, opListDomains, &api.Request{
		Method: http.MethodGet,
		Path:   "/domains",
		Query:  pageQuery(page),
	})
	if err != nil {
		return nil, err
	}
	return decode[Domains]("domains", resp.Body)
}

// GetDomain fetches a domain by ID.
func (c *Client) GetDomain(ctx context.Context, id, token string) (*Domain, error) {
	resp, err := c.call(ctx, opGetDomain, &api.Request{
		Method: http.MethodGet,
		Path:   "/domains/" + url.PathEscape(id),
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	return decode[Domain]("domain", resp.Body)
}
