package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/postflow-dev/postflow/pkg/api"
)

// Service is the auth state machine: SignedOut until a successful SignIn,
// SignedIn until SignOut. The current session is cached in memory and
// mirrored through the CredentialStore.
type Service struct {
	client *api.Client
	store  CredentialStore
	events *broadcaster

	mu      sync.RWMutex
	session *Session
}

// NewService creates the auth service. Any previously persisted session is
// restored best-effort; a corrupt or missing store starts SignedOut.
func NewService(client *api.Client, store CredentialStore) *Service {
	s := &Service{
		client: client,
		store:  store,
		events: newBroadcaster(),
	}

	if store != nil {
		session, err := store.Load()
		if err == nil {
			s.session = session
		} else if err != ErrNoCredentials {
			log.Printf("Warning: failed to restore session: %v", err)
		}
	}

	return s
}

// Token implements api.TokenSource with the current session token.
func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.AccessToken
}

// IsAuthenticated reports whether a session token is cached.
func (s *Service) IsAuthenticated() bool {
	return s.Token() != ""
}

// CurrentUser returns the cached user, or nil when signed out.
func (s *Service) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	return s.session.User
}

// AuthHeaders returns the Authorization header for the current session,
// or an empty map when signed out.
func (s *Service) AuthHeaders() map[string]string {
	token := s.Token()
	if token == "" {
		return map[string]string{}
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// SignUp registers a new account. Registration does not establish a
// session; the caller signs in afterwards.
func (s *Service) SignUp(ctx context.Context, email, password, fullName string) api.Result {
	res := s.client.Request(ctx, http.MethodPost, "/auth/register", map[string]string{
		"email":     email,
		"password":  password,
		"full_name": fullName,
	}, nil)

	if !res.Success && res.StatusCode == 0 {
		return api.Fail("Signup failed. Please try again.")
	}
	return res
}

// SignIn authenticates and, on success, caches and persists the session.
func (s *Service) SignIn(ctx context.Context, email, password string) api.Result {
	res := s.client.Request(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)

	if !res.Success {
		if res.StatusCode == 0 {
			return api.Fail("Login failed. Please try again.")
		}
		return res
	}

	var body struct {
		User *User `json:"user"`
	}
	if err := res.Decode(&body); err != nil || body.User == nil || body.User.AccessToken == "" {
		return api.Fail("Login failed")
	}

	session := &Session{AccessToken: body.User.AccessToken, User: body.User}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Save(session); err != nil {
			log.Printf("Warning: failed to persist session: %v", err)
		}
	}

	s.events.publish(State{Session: session})
	return res
}

// SignOut notifies the server best-effort and always clears local state.
// The result is success regardless of the server's answer; a dead backend
// must never trap a user in a session.
func (s *Service) SignOut(ctx context.Context) api.Result {
	if s.Token() != "" {
		res := s.client.Request(ctx, http.MethodPost, "/auth/logout", nil, nil)
		if !res.Success {
			log.Printf("Warning: server logout failed: %s", res.Error)
		}
	}

	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Clear(); err != nil {
			log.Printf("Warning: failed to clear stored session: %v", err)
		}
	}

	s.events.publish(State{})
	return api.OK(nil)
}

// GetSession returns the cached session without a network round trip.
func (s *Service) GetSession() api.Result {
	s.mu.RLock()
	session := s.session
	s.mu.RUnlock()

	if session == nil || session.AccessToken == "" {
		return api.Fail("No active session")
	}

	data, err := json.Marshal(map[string]any{"session": session})
	if err != nil {
		return api.Fail("Failed to get session.")
	}
	return api.OK(data)
}

// GetUserProfile fetches the authoritative user record.
// Fails fast when signed out.
func (s *Service) GetUserProfile(ctx context.Context) api.Result {
	if !s.IsAuthenticated() {
		return api.Fail("Not authenticated")
	}

	res := s.client.Request(ctx, http.MethodGet, "/auth/profile", nil, nil)
	if !res.Success {
		if res.StatusCode == 0 {
			return api.Fail("Failed to fetch user profile.")
		}
		return res
	}
	return unwrapUser(res)
}

// UpdateUserProfile applies profile updates and refreshes the cached user.
func (s *Service) UpdateUserProfile(ctx context.Context, updates map[string]any) api.Result {
	if !s.IsAuthenticated() {
		return api.Fail("Not authenticated")
	}

	res := s.client.Request(ctx, http.MethodPut, "/auth/profile", updates, nil)
	if !res.Success {
		if res.StatusCode == 0 {
			return api.Fail("Failed to update profile.")
		}
		return res
	}

	userRes := unwrapUser(res)
	if userRes.Success {
		var updated User
		if err := userRes.Decode(&updated); err == nil {
			s.mu.Lock()
			if s.session != nil {
				token := s.session.AccessToken
				updated.AccessToken = token
				s.session.User = &updated
			}
			s.mu.Unlock()
		}
	}
	return userRes
}

// ResetPassword is not supported by the backend yet.
func (s *Service) ResetPassword(ctx context.Context, email string) api.Result {
	return api.Fail("Password reset not implemented yet")
}

// OnAuthStateChange subscribes to auth state transitions. The callback is
// invoked immediately with the current state and then on every sign-in and
// sign-out until the returned function is called.
func (s *Service) OnAuthStateChange(fn func(State)) func() {
	s.mu.RLock()
	current := State{Session: s.session}
	s.mu.RUnlock()

	unsubscribe := s.events.subscribe(fn)
	fn(current)
	return unsubscribe
}

// unwrapUser extracts the backend's {"user": ...} payload.
func unwrapUser(res api.Result) api.Result {
	var body struct {
		User json.RawMessage `json:"user"`
	}
	if err := res.Decode(&body); err != nil || len(body.User) == 0 {
		return api.Fail("Failed to fetch profile")
	}
	return api.OK(body.User)
}
