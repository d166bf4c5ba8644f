package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mailtm/client-go"
)

// MailboxOutput is printed by the create command.
type MailboxOutput struct {
	Address  string          `json:"address"`
	Password string          `json:"password"`
	Token    string          `json:"token"`
	Account  *mailtm.Account `json:"account"`
}

// ParsedOutput is printed by the parse command.
type ParsedOutput struct {
	ID          string             `json:"id"`
	MessageID   string             `json:"messageId,omitempty"`
	Subject     string             `json:"subject"`
	From        []string           `json:"from"`
	To          []string           `json:"to"`
	Cc          []string           `json:"cc,omitempty"`
	Date        string             `json:"date,omitempty"`
	Text        string             `json:"text"`
	HTML        string             `json:"html,omitempty"`
	Attachments []AttachmentOutput `json:"attachments,omitempty"`
}

// AttachmentOutput describes one attachment in ParsedOutput.
type AttachmentOutput struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

func runDomains(ctx context.Context, s *session, args []string) (any, error) {
	page, err := pageArg(args)
	if err != nil {
		return nil, err
	}
	return s.client.ListDomains(ctx, page)
}

func runDomain(ctx context.Context, s *session, args []string) (any, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.GetDomain(ctx, args[0], token)
}

func runCreate(ctx context.Context, s *session, args []string) (any, error) {
	var opts []mailtm.MailboxOption
	if len(args) > 0 {
		opts = append(opts, mailtm.WithAddress(args[0]))
	}
	if s.settings.Password != "" {
		opts = append(opts, mailtm.WithPassword(s.settings.Password))
	}

	mb, err := s.client.CreateMailbox(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return MailboxOutput{
		Address:  mb.Address(),
		Password: mb.Password(),
		Token:    mb.Token(),
		Account:  mb.Account(),
	}, nil
}

func runToken(ctx context.Context, s *session, _ []string) (any, error) {
	if !s.settings.HasCredentials() {
		return nil, errNoCredentials
	}
	return s.client.GetToken(ctx, s.settings.Address, s.settings.Password)
}

func runMe(ctx context.Context, s *session, _ []string) (any, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.GetCurrentAccount(ctx, token)
}

func runAccount(ctx context.Context, s *session, args []string) (any, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.GetAccount(ctx, args[0], token)
}

func runDeleteAccount(ctx context.Context, s *session, args []string) (any, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	deleted, err := s.client.DeleteAccount(ctx, args[0], token)
	if err != nil {
		return nil, err
	}
	return map[string]bool{"deleted": deleted}, nil
}

func runMessages(ctx context.Context, s *session, args []string) (any, error) {
	page, err := pageArg(args)
	if err != nil {
		return nil, err
	}
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.ListMessages(ctx, page, token)
}

func runMessage(ctx context.Context, s *session, args []string) (any, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.GetMessage(ctx, args[0], token)
}

func runRead(ctx context.Context, s *session, args []string) (any, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	seen, err := s.client.MarkMessageRead(ctx, args[0], token)
	if err != nil {
		return nil, err
	}
	return map[string]bool{"seen": seen}, nil
}

func runDeleteMessage(ctx context.Context, s *session, args []string) (any, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	deleted, err := s.client.DeleteMessage(ctx, args[0], token)
	if err != nil {
		return nil, err
	}
	return map[string]bool{"deleted": deleted}, nil
}

func runSource(ctx context.Context, s *session, args []string) (any, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.GetSource(ctx, args[0], token)
}

func runParse(ctx context.Context, s *session, args []string) (any, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	src, err := s.client.GetSource(ctx, args[0], token)
	if err != nil {
		return nil, err
	}
	parsed, err := src.Parse()
	if err != nil {
		return nil, err
	}
	return convertParsed(src.ID, parsed), nil
}

func convertParsed(id string, p *mailtm.ParsedSource) ParsedOutput {
	out := ParsedOutput{
		ID:        id,
		MessageID: p.MessageID,
		Subject:   p.Subject,
		From:      addressStrings(p.From),
		To:        addressStrings(p.To),
		Cc:        addressStrings(p.Cc),
		Text:      p.Text,
		HTML:      p.HTML,
	}
	if !p.Date.IsZero() {
		out.Date = p.Date.Format(time.RFC3339)
	}
	for _, a := range p.Attachments {
		out.Attachments = append(out.Attachments, AttachmentOutput{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Size:        a.Size,
		})
	}
	return out
}

func addressStrings(list []mailtm.Address) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.String())
	}
	return out
}

func runPassword(_ context.Context, _ *session, args []string) (any, error) {
	length := mailtm.DefaultPasswordLength
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid length %q", args[0])
		}
		length = n
	}
	return map[string]string{"password": mailtm.GeneratePassword(length)}, nil
}
