package mailtmtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMessage = "From: Alice <alice@example.com>\r\n" +
	"To: %s\r\n" +
	"Subject: Hello\r\n" +
	"Message-ID: <abc@example.com>\r\n" +
	"Date: Mon, 02 Jan 2006 15:04:05 +0000\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Hello   there,\r\nthis is a test.\r\n"

func request(t *testing.T, srv *Server, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL()+path, r)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func createAndLogin(t *testing.T, srv *Server, address string) string {
	t.Helper()
	creds := map[string]string{"address": address, "password": "secret-pass"}

	status, _ := request(t, srv, http.MethodPost, "/accounts", "", creds)
	require.Equal(t, http.StatusCreated, status)

	status, body := request(t, srv, http.MethodPost, "/token", "", creds)
	require.Equal(t, http.StatusOK, status)
	return body["token"].(string)
}

func TestServer_ListDomains(t *testing.T) {
	srv := NewServer(WithDomains("a.test", "b.test", "c.test"), WithPageSize(2))
	defer srv.Close()

	status, body := request(t, srv, http.MethodGet, "/domains", "", nil)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "hydra:Collection", body["@type"])
	assert.EqualValues(t, 3, body["hydra:totalItems"])
	members := body["hydra:member"].([]any)
	require.Len(t, members, 2)
	assert.Equal(t, "a.test", members[0].(map[string]any)["domain"])

	view := body["hydra:view"].(map[string]any)
	assert.Equal(t, "/domains?page=2", view["hydra:next"])
	assert.NotContains(t, view, "hydra:previous")

	status, body = request(t, srv, http.MethodGet, "/domains?page=2", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["hydra:member"].([]any), 1)

	status, body = request(t, srv, http.MethodGet, "/domains?page=5", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["hydra:member"])
}

func TestServer_ListDomains_BadPage(t *testing.T) {
	srv := NewServer()
	defer srv.Close()

	status, _ := request(t, srv, http.MethodGet, "/domains?page=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestServer_CreateAccount(t *testing.T) {
	fixed := time.Date(2022, 3, 4, 5, 6, 7, 0, time.UTC)
	srv := NewServer(WithClock(func() time.Time { return fixed }))
	defer srv.Close()

	creds := map[string]string{"address": "bob@" + DefaultDomain, "password": "secret-pass"}
	status, body := request(t, srv, http.MethodPost, "/accounts", "", creds)
	require.Equal(t, http.StatusCreated, status)

	assert.Equal(t, "bob@"+DefaultDomain, body["address"])
	assert.Equal(t, "2022-03-04T05:06:07+00:00", body["createdAt"])
	assert.EqualValues(t, DefaultQuota, body["quota"])

	id, ok := srv.AccountID("BOB@" + DefaultDomain)
	assert.True(t, ok)
	assert.Equal(t, body["id"], id)

	status, _ = request(t, srv, http.MethodPost, "/accounts", "", creds)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestServer_CreateAccount_Invalid(t *testing.T) {
	srv := NewServer()
	defer srv.Close()

	tests := []struct {
		name    string
		address string
		pass    string
	}{
		{"no at sign", "bob", "secret-pass"},
		{"unknown domain", "bob@nowhere.test", "secret-pass"},
		{"short password", "bob@" + DefaultDomain, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := request(t, srv, http.MethodPost, "/accounts", "",
				map[string]string{"address": tt.address, "password": tt.pass})
			assert.Equal(t, http.StatusUnprocessableEntity, status)
			assert.NotEmpty(t, body["violations"])
		})
	}
}

func TestServer_CreateAccount_InactiveDomain(t *testing.T) {
	srv := NewServer()
	defer srv.Close()
	srv.SetDomainActive(DefaultDomain, false)

	status, _ := request(t, srv, http.MethodPost, "/accounts", "",
		map[string]string{"address": "bob@" + DefaultDomain, "password": "secret-pass"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestServer_Token_InvalidCredentials(t *testing.T) {
	srv := NewServer()
	defer srv.Close()
	createAndLogin(t, srv, "bob@"+DefaultDomain)

	status, _ := request(t, srv, http.MethodPost, "/token", "",
		map[string]string{"address": "bob@" + DefaultDomain, "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = request(t, srv, http.MethodPost, "/token", "",
		map[string]string{"address": "nobody@" + DefaultDomain, "password": "secret-pass"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestServer_Authentication(t *testing.T) {
	srv := NewServer()
	defer srv.Close()

	status, _ := request(t, srv, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = request(t, srv, http.MethodGet, "/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	other := NewServer(WithSecret("other-secret"))
	defer other.Close()
	foreign := createAndLogin(t, other, "bob@"+DefaultDomain)

	status, _ = request(t, srv, http.MethodGet, "/me", foreign, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestServer_AccountAccess(t *testing.T) {
	srv := NewServer()
	defer srv.Close()

	bob := createAndLogin(t, srv, "bob@"+DefaultDomain)
	createAndLogin(t, srv, "eve@"+DefaultDomain)
	bobID, _ := srv.AccountID("bob@" + DefaultDomain)
	eveID, _ := srv.AccountID("eve@" + DefaultDomain)

	status, body := request(t, srv, http.MethodGet, "/me", bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, bobID, body["id"])

	status, _ = request(t, srv, http.MethodGet, "/accounts/"+bobID, bob, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = request(t, srv, http.MethodGet, "/accounts/"+eveID, bob, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = request(t, srv, http.MethodGet, "/accounts/missing", bob, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = request(t, srv, http.MethodDelete, "/accounts/"+eveID, bob, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = request(t, srv, http.MethodDelete, "/accounts/"+bobID, bob, nil)
	assert.Equal(t, http.StatusNoContent, status)

	// The token outlives the account but no longer authenticates.
	status, _ = request(t, srv, http.MethodGet, "/me", bob, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestServer_DisableAccount(t *testing.T) {
	srv := NewServer()
	defer srv.Close()

	token := createAndLogin(t, srv, "bob@"+DefaultDomain)
	assert.True(t, srv.DisableAccount("bob@"+DefaultDomain))
	assert.False(t, srv.DisableAccount("nobody@"+DefaultDomain))

	_, body := request(t, srv, http.MethodGet, "/me", token, nil)
	assert.Equal(t, true, body["isDisabled"])
}

func TestServer_GetDomain(t *testing.T) {
	srv := NewServer()
	defer srv.Close()

	id := srv.AddDomain("Extra.Test")
	token := createAndLogin(t, srv, "bob@"+DefaultDomain)

	status, _ := request(t, srv, http.MethodGet, "/domains/"+id, "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := request(t, srv, http.MethodGet, "/domains/"+id, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "extra.test", body["domain"])
	assert.Equal(t, "/contexts/Domain", body["@context"])

	status, _ = request(t, srv, http.MethodGet, "/domains/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_Deliver(t *testing.T) {
	srv := NewServer(WithPageSize(1))
	defer srv.Close()

	bob := createAndLogin(t, srv, "bob@"+DefaultDomain)
	eve := createAndLogin(t, srv, "eve@"+DefaultDomain)

	ids, err := srv.Deliver([]byte(fmt.Sprintf(testMessage, "Bob <bob@"+DefaultDomain+">")))
	require.NoError(t, err)
	require.Len(t, ids, 1)

	second, err := srv.Deliver([]byte(fmt.Sprintf(testMessage, "bob@"+DefaultDomain)))
	require.NoError(t, err)

	status, body := request(t, srv, http.MethodGet, "/messages", bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["hydra:totalItems"])
	members := body["hydra:member"].([]any)
	require.Len(t, members, 1)

	newest := members[0].(map[string]any)
	assert.Equal(t, second[0], newest["id"])
	assert.Equal(t, "Hello", newest["subject"])
	assert.Equal(t, "Hello there, this is a test.", newest["intro"])
	assert.Equal(t, "<abc@example.com>", newest["msgid"])
	assert.Equal(t, map[string]any{"name": "Alice", "address": "alice@example.com"}, newest["from"])
	assert.Equal(t, false, newest["seen"])

	status, body = request(t, srv, http.MethodGet, "/messages", eve, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["hydra:totalItems"])

	status, _ = request(t, srv, http.MethodGet, "/messages/"+ids[0], eve, nil)
	assert.Equal(t, http.StatusNotFound, status)

	_, body = request(t, srv, http.MethodGet, "/me", bob, nil)
	assert.Greater(t, body["used"].(float64), float64(0))
}

func TestServer_Deliver_NoRecipient(t *testing.T) {
	srv := NewServer()
	defer srv.Close()

	_, err := srv.Deliver([]byte(fmt.Sprintf(testMessage, "ghost@"+DefaultDomain)))
	assert.ErrorIs(t, err, ErrNoRecipient)
}

func TestServer_MessageLifecycle(t *testing.T) {
	srv := NewServer()
	defer srv.Close()

	token := createAndLogin(t, srv, "bob@"+DefaultDomain)
	ids, err := srv.Deliver([]byte(fmt.Sprintf(testMessage, "bob@"+DefaultDomain)))
	require.NoError(t, err)
	id := ids[0]

	status, body := request(t, srv, http.MethodPatch, "/messages/"+id, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["seen"])

	status, body = request(t, srv, http.MethodGet, "/sources/"+id, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body["data"], "Subject: Hello")

	status, _ = request(t, srv, http.MethodDelete, "/messages/"+id, token, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = request(t, srv, http.MethodGet, "/messages/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestIntro(t *testing.T) {
	long := bytes.Repeat([]byte("ab "), 100)
	got := intro(string(long))
	assert.Len(t, []rune(got), introLength)
	assert.Equal(t, "a b", intro("  a \n\t b  "))
}
