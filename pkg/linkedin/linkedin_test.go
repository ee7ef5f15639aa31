package linkedin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postflow-dev/postflow/pkg/api"
)

func TestAccountsUnwrapsList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/linkedin/accounts", r.URL.Path)
		_, _ = w.Write([]byte(`{"accounts":[{"id":"acct-1","account_email":"ana@example.com","is_active":true}]}`))
	}))
	defer server.Close()

	svc := NewService(api.NewClient(server.URL))
	res := svc.Accounts(context.Background())
	require.True(t, res.Success)

	var accounts []Account
	require.NoError(t, res.Decode(&accounts))
	require.Len(t, accounts, 1)
	assert.Equal(t, "acct-1", accounts[0].ID)
	assert.True(t, accounts[0].IsActive)
}

func TestAccountsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	svc := NewService(api.NewClient(server.URL))
	res := svc.Accounts(context.Background())
	require.False(t, res.Success)
	assert.Equal(t, "Failed to fetch LinkedIn accounts", res.Error)
}

func TestPostSendsRequest(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/linkedin/post", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"post_id":"lp-1","message":"queued"}`))
	}))
	defer server.Close()

	svc := NewService(api.NewClient(server.URL))
	res := svc.Post(context.Background(), PostRequest{
		AccountID:      "acct-1",
		Content:        "Hello LinkedIn",
		HumanLikeDelay: true,
	})
	require.True(t, res.Success)

	assert.Equal(t, "acct-1", got["account_id"])
	assert.Equal(t, "Hello LinkedIn", got["content"])
	assert.Equal(t, true, got["human_like_delay"])

	var receipt PostReceipt
	require.NoError(t, res.Decode(&receipt))
	assert.Equal(t, "lp-1", receipt.PostID)
}

func TestPostBackendErrorPassedThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"daily limit reached"}`))
	}))
	defer server.Close()

	svc := NewService(api.NewClient(server.URL))
	res := svc.Post(context.Background(), PostRequest{AccountID: "acct-1", Content: "x"})
	require.False(t, res.Success)
	assert.Equal(t, "daily limit reached", res.Error)
}

func TestTestConnection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/linkedin/test-connection/acct-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"connected":true,"message":"session valid"}`))
	}))
	defer server.Close()

	svc := NewService(api.NewClient(server.URL))
	conn, res := svc.TestConnection(context.Background(), "acct-1")
	require.True(t, res.Success)
	assert.True(t, conn.Connected)
	assert.Equal(t, "session valid", conn.Message)
}

func TestTestConnectionFailureIsDisconnected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	svc := NewService(api.NewClient(server.URL))
	conn, res := svc.TestConnection(context.Background(), "acct-1")
	require.False(t, res.Success)
	assert.False(t, conn.Connected)
}

func TestSchedulePostForcesScheduledStatus(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/content/posts", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"post":{"id":"post-1","status":"scheduled"}}`))
	}))
	defer server.Close()

	svc := NewService(api.NewClient(server.URL))
	res := svc.SchedulePost(context.Background(), map[string]any{
		"content": "later",
		"status":  "draft",
	})
	require.True(t, res.Success)

	// The status is forced regardless of what the caller passed.
	assert.Equal(t, "scheduled", got["status"])
	assert.Equal(t, "later", got["content"])
}

func TestAutomationLogsNotImplemented(t *testing.T) {
	svc := NewService(api.NewClient("http://127.0.0.1:0"))
	res := svc.AutomationLogs(context.Background(), 10)
	require.False(t, res.Success)
	assert.Equal(t, "Automation logs not implemented yet", res.Error)
}
