package mailtm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/mailtm/client-go/internal/api"
)

// Source is the raw RFC 5322 content of a message.
type Source struct {
	Context     string `json:"@context,omitempty"`
	IRI         string `json:"@id,omitempty"`
	Type        string `json:"@type,omitempty"`
	ID          string `json:"id"`
	DownloadURL string `json:"downloadUrl"`
	Data        string `json:"data"`
}

// GetSource fetches the raw source of a message. The ID is the message ID.
func (c *Client) GetSource(ctx context.Context, id, token string) (*Source, error) {
	resp, err := c.call(ctx, opGetSource, &api.Request{
		Method: http.MethodGet,
		Path:   "/sources/" + url.PathEscape(id),
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	return decode[Source]("source", resp.Body)
}

// ParsedSource is the result of parsing a Source.
type ParsedSource struct {
	MessageID   string
	Subject     string
	From        []Address
	To          []Address
	Cc          []Address
	Date        time.Time
	Text        string
	HTML        string
	Attachments []ParsedAttachment
}

// ParsedAttachment describes one attachment part.
type ParsedAttachment struct {
	Filename    string
	ContentType string
	Size        int
}

// Parse parses Data as a MIME message.
func (s *Source) Parse() (*ParsedSource, error) {
	return ParseMessage(strings.NewReader(s.Data))
}

// ParseMessage parses a raw RFC 5322 message. Malformed address or date
// headers are left empty rather than failing the parse; a malformed
// message structure is an error.
func ParseMessage(r io.Reader) (*ParsedSource, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, fmt.Errorf("create mail reader: %w", err)
	}
	defer mr.Close()

	h := mr.Header
	out := &ParsedSource{
		From: addressList(h, "From"),
		To:   addressList(h, "To"),
		Cc:   addressList(h, "Cc"),
	}
	out.Subject, _ = h.Subject()
	out.MessageID, _ = h.MessageID()
	if date, err := h.Date(); err == nil {
		out.Date = date.UTC()
	}

	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read part: %w", err)
		}

		switch ph := p.Header.(type) {
		case *mail.InlineHeader:
			b, err := io.ReadAll(p.Body)
			if err != nil {
				return nil, fmt.Errorf("read inline part: %w", err)
			}
			t, _, _ := ph.ContentType()
			switch t {
			case "text/html":
				out.HTML += string(b)
			case "text/plain", "":
				out.Text += string(b)
			}
		case *mail.AttachmentHeader:
			b, err := io.ReadAll(p.Body)
			if err != nil {
				return nil, fmt.Errorf("read attachment: %w", err)
			}
			filename, _ := ph.Filename()
			t, _, _ := ph.ContentType()
			out.Attachments = append(out.Attachments, ParsedAttachment{
				Filename:    filename,
				ContentType: t,
				Size:        len(b),
			})
		}
	}

	return out, nil
}

func addressList(h mail.Header, key string) []Address {
	list, err := h.AddressList(key)
	if err != nil || len(list) == 0 {
		return nil
	}
	out := make([]Address, 0, len(list))
	for _, a := range list {
		out = append(out, Address{Name: a.Name, Address: a.Address})
	}
	return out
}
