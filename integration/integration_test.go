//go:build integration

package integration

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailtm/client-go"
)

var baseURL string

func TestMain(m *testing.M) {
	// Load .env file if it exists (won't error if missing)
	if err := godotenv.Load("../.env"); err != nil {
		os.Stderr.WriteString("Note: .env file not found at project root\n")
	}

	baseURL = os.Getenv("MAILTM_BASE_URL")
	if baseURL == "" {
		os.Stderr.WriteString("Skipping integration tests: MAILTM_BASE_URL not set\n")
		os.Exit(0)
	}

	os.Stderr.WriteString("Running integration tests...\n")
	os.Stderr.WriteString("API URL: " + baseURL + "\n")

	os.Exit(m.Run())
}

func newClient(t *testing.T) *mailtm.Client {
	t.Helper()

	client, err := mailtm.New(
		mailtm.WithBaseURL(baseURL),
		mailtm.WithTimeout(30*time.Second),
	)
	require.NoError(t, err)
	return client
}

func newMailbox(t *testing.T, client *mailtm.Client) *mailtm.Mailbox {
	t.Helper()
	ctx := context.Background()

	mb, err := client.CreateMailbox(ctx)
	require.NoError(t, err)
	t.Logf("Created mailbox: %s", mb.Address())

	t.Cleanup(func() {
		if _, err := mb.Delete(context.Background()); err != nil {
			t.Logf("Delete() error = %v", err)
		}
	})
	return mb
}

func TestIntegration_ListDomains(t *testing.T) {
	client := newClient(t)

	domains, err := client.ListDomains(context.Background(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, domains.Member)

	for _, d := range domains.Member {
		assert.NotEmpty(t, d.ID)
		assert.NotEmpty(t, d.Domain)
		assert.False(t, d.CreatedAt.IsZero())
	}
}

func TestIntegration_GetDomain(t *testing.T) {
	client := newClient(t)
	mb := newMailbox(t, client)
	ctx := context.Background()

	domains, err := client.ListDomains(ctx, 1)
	require.NoError(t, err)
	require.NotEmpty(t, domains.Member)

	d, err := client.GetDomain(ctx, domains.Member[0].ID, mb.Token())
	require.NoError(t, err)
	assert.Equal(t, domains.Member[0].Domain, d.Domain)
}

func TestIntegration_AccountLifecycle(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	mb, err := client.CreateMailbox(ctx)
	require.NoError(t, err)

	me, err := client.GetCurrentAccount(ctx, mb.Token())
	require.NoError(t, err)
	assert.Equal(t, mb.Address(), me.Address)
	assert.Positive(t, me.Quota)

	byID, err := client.GetAccount(ctx, me.ID, mb.Token())
	require.NoError(t, err)
	assert.Equal(t, me.ID, byID.ID)

	opened, err := client.OpenMailbox(ctx, mb.Address(), mb.Password())
	require.NoError(t, err)
	assert.Equal(t, me.ID, opened.Account().ID)

	deleted, err := mb.Delete(ctx)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestIntegration_EmptyInbox(t *testing.T) {
	client := newClient(t)
	mb := newMailbox(t, client)

	msgs, err := mb.Messages(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, msgs.TotalItems)
	assert.Empty(t, msgs.Member)
}

func TestIntegration_InvalidCredentials(t *testing.T) {
	client := newClient(t)
	mb := newMailbox(t, client)

	_, err := client.GetToken(context.Background(), mb.Address(), mb.Password()+"x")
	assert.True(t, errors.Is(err, mailtm.ErrCannotGetToken), "GetToken() error = %v", err)
}

func TestIntegration_InvalidToken(t *testing.T) {
	client := newClient(t)

	_, err := client.ListMessages(context.Background(), 1, "invalid")
	assert.ErrorIs(t, err, mailtm.ErrUnauthorized)

	_, err = client.GetCurrentAccount(context.Background(), "invalid")
	assert.ErrorIs(t, err, mailtm.ErrCannotGetAccountInfo)
}
