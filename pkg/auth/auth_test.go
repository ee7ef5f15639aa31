package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postflow-dev/postflow/pkg/api"
)

func newAuthBackend(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	logoutCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"id":"u1","email":"ana@example.com","full_name":"Ana","access_token":"tok-123"}}`))
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		logoutCalls++
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"session store down"}`))
	})
	mux.HandleFunc("GET /auth/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		_, _ = w.Write([]byte(`{"user":{"id":"u1","email":"ana@example.com","full_name":"Ana"}}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &logoutCalls
}

func TestSignInCachesAndPersistsSession(t *testing.T) {
	server, _ := newAuthBackend(t)

	client := api.NewClient(server.URL)
	store := NewMemoryStore()
	svc := NewService(client, store)
	client.SetTokenSource(svc)

	res := svc.SignIn(context.Background(), "ana@example.com", "pw")
	require.True(t, res.Success)

	assert.True(t, svc.IsAuthenticated())
	assert.Equal(t, "tok-123", svc.Token())
	require.NotNil(t, svc.CurrentUser())
	assert.Equal(t, "ana@example.com", svc.CurrentUser().Email)
	assert.Equal(t, map[string]string{"Authorization": "Bearer tok-123"}, svc.AuthHeaders())

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", persisted.AccessToken)
	require.NotNil(t, persisted.User)
	assert.Equal(t, "Ana", persisted.User.FullName)
}

func TestSignInTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	svc := NewService(api.NewClient(server.URL), NewMemoryStore())
	res := svc.SignIn(context.Background(), "ana@example.com", "pw")

	require.False(t, res.Success)
	assert.Equal(t, "Login failed. Please try again.", res.Error)
	assert.False(t, svc.IsAuthenticated())
}

func TestSignInMissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"id":"u1","email":"ana@example.com"}}`))
	}))
	defer server.Close()

	svc := NewService(api.NewClient(server.URL), NewMemoryStore())
	res := svc.SignIn(context.Background(), "ana@example.com", "pw")

	require.False(t, res.Success)
	assert.Equal(t, "Login failed", res.Error)
}

func TestSignOutClearsStateEvenWhenServerFails(t *testing.T) {
	server, logoutCalls := newAuthBackend(t)

	client := api.NewClient(server.URL)
	store := NewMemoryStore()
	svc := NewService(client, store)
	client.SetTokenSource(svc)

	require.True(t, svc.SignIn(context.Background(), "ana@example.com", "pw").Success)

	res := svc.SignOut(context.Background())
	assert.True(t, res.Success)
	assert.Equal(t, 1, *logoutCalls)

	assert.False(t, svc.IsAuthenticated())
	assert.Nil(t, svc.CurrentUser())
	assert.Empty(t, svc.AuthHeaders())

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestSignOutWhenSignedOut(t *testing.T) {
	svc := NewService(api.NewClient("http://127.0.0.1:0"), NewMemoryStore())
	// No token cached, no server round trip happens and the call still
	// succeeds.
	assert.True(t, svc.SignOut(context.Background()).Success)
}

func TestSessionRestoredFromStore(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(&Session{
		AccessToken: "persisted-tok",
		User:        &User{ID: "u1", Email: "ana@example.com"},
	}))

	svc := NewService(api.NewClient("http://127.0.0.1:0"), store)
	assert.True(t, svc.IsAuthenticated())
	assert.Equal(t, "persisted-tok", svc.Token())
}

func TestGetSession(t *testing.T) {
	svc := NewService(api.NewClient("http://127.0.0.1:0"), NewMemoryStore())

	res := svc.GetSession()
	require.False(t, res.Success)
	assert.Equal(t, "No active session", res.Error)

	store := NewMemoryStore()
	require.NoError(t, store.Save(&Session{AccessToken: "tok", User: &User{ID: "u1"}}))
	svc = NewService(api.NewClient("http://127.0.0.1:0"), store)

	res = svc.GetSession()
	require.True(t, res.Success)

	var body struct {
		Session *Session `json:"session"`
	}
	require.NoError(t, res.Decode(&body))
	require.NotNil(t, body.Session)
	assert.Equal(t, "tok", body.Session.AccessToken)
}

func TestGetUserProfileRequiresAuth(t *testing.T) {
	svc := NewService(api.NewClient("http://127.0.0.1:0"), NewMemoryStore())
	res := svc.GetUserProfile(context.Background())
	require.False(t, res.Success)
	assert.Equal(t, "Not authenticated", res.Error)
}

func TestGetUserProfileUnwrapsUser(t *testing.T) {
	server, _ := newAuthBackend(t)

	client := api.NewClient(server.URL)
	svc := NewService(client, NewMemoryStore())
	client.SetTokenSource(svc)
	require.True(t, svc.SignIn(context.Background(), "ana@example.com", "pw").Success)

	res := svc.GetUserProfile(context.Background())
	require.True(t, res.Success)

	var user User
	require.NoError(t, res.Decode(&user))
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "Ana", user.FullName)
}

func TestUpdateUserProfileRefreshesCachedUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"id":"u1","email":"ana@example.com","full_name":"Ana","access_token":"tok-123"}}`))
	})
	mux.HandleFunc("PUT /auth/profile", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"id":"u1","email":"ana@example.com","full_name":"Ana Nova"}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := api.NewClient(server.URL)
	svc := NewService(client, NewMemoryStore())
	client.SetTokenSource(svc)
	require.True(t, svc.SignIn(context.Background(), "ana@example.com", "pw").Success)

	res := svc.UpdateUserProfile(context.Background(), map[string]any{"full_name": "Ana Nova"})
	require.True(t, res.Success)

	user := svc.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "Ana Nova", user.FullName)
	// The session token survives the refresh.
	assert.Equal(t, "tok-123", svc.Token())
}

func TestResetPasswordNotImplemented(t *testing.T) {
	svc := NewService(api.NewClient("http://127.0.0.1:0"), NewMemoryStore())
	res := svc.ResetPassword(context.Background(), "ana@example.com")
	require.False(t, res.Success)
	assert.Equal(t, "Password reset not implemented yet", res.Error)
}

func TestOnAuthStateChange(t *testing.T) {
	server, _ := newAuthBackend(t)

	client := api.NewClient(server.URL)
	svc := NewService(client, NewMemoryStore())
	client.SetTokenSource(svc)

	var states []State
	unsubscribe := svc.OnAuthStateChange(func(s State) {
		states = append(states, s)
	})

	// Immediate callback with the current (signed out) state.
	require.Len(t, states, 1)
	assert.False(t, states[0].SignedIn())

	require.True(t, svc.SignIn(context.Background(), "ana@example.com", "pw").Success)
	require.Len(t, states, 2)
	assert.True(t, states[1].SignedIn())

	svc.SignOut(context.Background())
	require.Len(t, states, 3)
	assert.False(t, states[2].SignedIn())

	unsubscribe()
	svc.SignIn(context.Background(), "ana@example.com", "pw")
	assert.Len(t, states, 3)
}
