package mailtmtest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
)

// ErrNoRecipient is returned by Deliver when no To or Cc address belongs
// to an account on the server.
var ErrNoRecipient = errors.New("mailtmtest: no recipient has an account")

const introLength = 140

// Deliver stores a raw RFC 5322 message in the mailbox of every To and Cc
// recipient that has an account, and returns the new message IDs in
// recipient order.
func (s *Server) Deliver(raw []byte) ([]string, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("mailtmtest: parse message: %w", err)
	}
	defer mr.Close()

	h := mr.Header
	subject, _ := h.Subject()
	msgID, _ := h.MessageID()
	if msgID != "" {
		msgID = "<" + msgID + ">"
	}

	var from addressJSON
	if list, err := h.AddressList("From"); err == nil && len(list) > 0 {
		from = addressJSON{Name: list[0].Name, Address: list[0].Address}
	}

	var to []addressJSON
	var recipients []string
	for _, key := range []string{"To", "Cc"} {
		list, err := h.AddressList(key)
		if err != nil {
			continue
		}
		for _, a := range list {
			if key == "To" {
				to = append(to, addressJSON{Name: a.Name, Address: a.Address})
			}
			recipients = append(recipients, strings.ToLower(a.Address))
		}
	}

	text, hasAttachments, err := readBody(mr)
	if err != nil {
		return nil, fmt.Errorf("mailtmtest: read body: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var ids []string
	seen := make(map[string]bool)
	for _, rcpt := range recipients {
		a, ok := s.byAddress[rcpt]
		if !ok || seen[a.id] {
			continue
		}
		seen[a.id] = true

		m := &messageRecord{
			id:             uuid.NewString(),
			accountID:      a.id,
			msgID:          msgID,
			from:           from,
			to:             to,
			subject:        subject,
			intro:          intro(text),
			hasAttachments: hasAttachments,
			raw:            append([]byte(nil), raw...),
			createdAt:      now,
			updatedAt:      now,
		}
		s.messages[m.id] = m
		a.messageIDs = append(a.messageIDs, m.id)
		ids = append(ids, m.id)
	}

	if len(ids) == 0 {
		return nil, ErrNoRecipient
	}
	return ids, nil
}

// readBody returns the concatenated text/plain content of mr and whether
// it carries attachments.
func readBody(mr *mail.Reader) (string, bool, error) {
	var text strings.Builder
	hasAttachments := false
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", false, err
		}
		switch ph := p.Header.(type) {
		case *mail.InlineHeader:
			t, _, _ := ph.ContentType()
			if t != "text/plain" && t != "" {
				continue
			}
			b, err := io.ReadAll(p.Body)
			if err != nil {
				return "", false, err
			}
			text.Write(b)
		case *mail.AttachmentHeader:
			hasAttachments = true
		}
	}
	return text.String(), hasAttachments, nil
}

// intro collapses whitespace and truncates text to introLength runes.
func intro(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	runes := []rune(collapsed)
	if len(runes) > introLength {
		return string(runes[:introLength])
	}
	return collapsed
}
