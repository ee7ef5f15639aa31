// Package auth manages the client's authentication session: sign-in and
// sign-up against the backend, local credential persistence, and
// state-change notification for UI layers.
package auth

import "time"

// User is the client-side cached copy of a backend user record.
// The backend owns the authoritative state.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	Role        string    `json:"role,omitempty"`
	AccessToken string    `json:"access_token,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Session pairs an access token with the cached user it belongs to.
type Session struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}

// State is a snapshot of the authentication state delivered to
// subscribers. Session is nil when signed out.
type State struct {
	Session *Session
}

// SignedIn reports whether the state holds an active session.
func (s State) SignedIn() bool {
	return s.Session != nil && s.Session.AccessToken != ""
}
