package mailtm

import (
	"context"
	"net/http"

	"github.com/mailtm/client-go/internal/api"
)

// Token is a bearer credential for one account. The service documents no
// expiry; the client treats it as opaque.
type Token struct {
	// ID is the ID of the account the token belongs to.
	ID    string `json:"id"`
	Token string `json:"token"`
}

// GetToken exchanges an address and password for a bearer token.
// Invalid credentials are reported as KindCannotGetToken, not KindUnauthorized.
func (c *Client) GetToken(ctx context.Context, address, password string) (*Token, error) {
	resp, err := c.call(ctx, opGetToken, &api.Request{
		Method: http.MethodPost,
		Path:   "/token",
		Body:   credentials{Address: address, Password: password},
	})
	if err != nil {
		return nil, err
	}
	return decode[Token]("token", resp.Body)
}
