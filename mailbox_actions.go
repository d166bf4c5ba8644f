package mailtm

import (
	"context"
)

// Messages lists one page of the mailbox's messages.
func (m *Mailbox) Messages(ctx context.Context, page int) (*Messages, error) {
	return m.client.ListMessages(ctx, page, m.token)
}

// Message fetches a specific message by ID.
func (m *Mailbox) Message(ctx context.Context, id string) (*Message, error) {
	return m.client.GetMessage(ctx, id, m.token)
}

// Source fetches the raw source of a specific message.
func (m *Mailbox) Source(ctx context.Context, id string) (*Source, error) {
	return m.client.GetSource(ctx, id, m.token)
}

// MarkRead marks a specific message as read.
func (m *Mailbox) MarkRead(ctx context.Context, id string) (bool, error) {
	return m.client.MarkMessageRead(ctx, id, m.token)
}

// DeleteMessage deletes a specific message.
func (m *Mailbox) DeleteMessage(ctx context.Context, id string) (bool, error) {
	return m.client.DeleteMessage(ctx, id, m.token)
}

// Refresh re-fetches the account, updating quota usage.
func (m *Mailbox) Refresh(ctx context.Context) (*Account, error) {
	account, err := m.client.GetCurrentAccount(ctx, m.token)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.account = account
	m.mu.Unlock()
	return account, nil
}

// Delete deletes the account behind the mailbox.
func (m *Mailbox) Delete(ctx context.Context) (bool, error) {
	return m.client.DeleteAccount(ctx, m.Account().ID, m.token)
}
