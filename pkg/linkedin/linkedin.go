// Package linkedin is a thin client for the LinkedIn automation engine
// behind the backend's /linkedin endpoints. Session renewal, rate limiting
// and retry policy all live server-side; this layer only shapes requests
// and unwraps responses.
package linkedin

import (
	"context"
	"encoding/json"
	"time"

	"github.com/postflow-dev/postflow/pkg/api"
)

// Account is a connected LinkedIn account as reported by the backend.
type Account struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	AccountEmail      string    `json:"account_email"`
	IsActive          bool      `json:"is_active"`
	AutomationEnabled bool      `json:"automation_enabled"`
	SessionExpiresAt  time.Time `json:"session_expires_at,omitempty"`
}

// Credentials authenticates a LinkedIn account with the automation engine.
type Credentials struct {
	AccountEmail string `json:"account_email"`
	Password     string `json:"password"`
}

// PostRequest publishes content through a connected account.
type PostRequest struct {
	AccountID        string `json:"account_id"`
	Content          string `json:"content"`
	HumanLikeDelay   bool   `json:"human_like_delay,omitempty"`
	UseProxyRotation bool   `json:"use_proxy_rotation,omitempty"`
}

// PostReceipt is the engine's acknowledgment of a published post.
type PostReceipt struct {
	PostID  string `json:"post_id"`
	Message string `json:"message,omitempty"`
}

// Connection reports the automation session state for an account.
type Connection struct {
	Connected bool   `json:"connected"`
	Message   string `json:"message,omitempty"`
}

// Service wraps the /linkedin API surface.
type Service struct {
	client *api.Client
}

// NewService creates the LinkedIn automation client.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Accounts lists connected accounts.
func (s *Service) Accounts(ctx context.Context) api.Result {
	res := s.client.GetLinkedInAccounts(ctx)
	if !res.Success {
		if res.StatusCode == 0 {
			return api.Fail("Failed to fetch LinkedIn accounts")
		}
		return res
	}
	return unwrap(res, "accounts", "Failed to fetch LinkedIn accounts")
}

// AddAccount connects a new account.
func (s *Service) AddAccount(ctx context.Context, account Account) api.Result {
	res := s.client.AddLinkedInAccount(ctx, account)
	if !res.Success {
		if res.StatusCode == 0 {
			return api.Fail("Failed to add LinkedIn account")
		}
		return res
	}
	return unwrap(res, "account", "Failed to add LinkedIn account")
}

// Login starts an automation session for the account.
func (s *Service) Login(ctx context.Context, credentials Credentials) api.Result {
	res := s.client.LinkedInLogin(ctx, credentials)
	if !res.Success {
		if res.StatusCode == 0 {
			return api.Fail("Failed to login to LinkedIn")
		}
		return res
	}
	return res
}

// Post publishes content through the automation engine.
func (s *Service) Post(ctx context.Context, req PostRequest) api.Result {
	res := s.client.PostToLinkedIn(ctx, req)
	if !res.Success {
		if res.StatusCode == 0 {
			return api.Fail("Failed to post to LinkedIn")
		}
		return res
	}
	return res
}

// TestConnection verifies an account's automation session. The decoded
// Connection always carries Connected=false on failure.
func (s *Service) TestConnection(ctx context.Context, accountID string) (Connection, api.Result) {
	res := s.client.TestLinkedInConnection(ctx, accountID)
	if !res.Success {
		if res.StatusCode == 0 {
			res = api.Fail("Failed to test connection")
		}
		return Connection{Connected: false}, res
	}

	var conn Connection
	if err := res.Decode(&conn); err != nil {
		return Connection{Connected: false}, api.Fail("Failed to test connection")
	}
	return conn, res
}

// SchedulePost creates a content post already in scheduled status.
func (s *Service) SchedulePost(ctx context.Context, post map[string]any) api.Result {
	body := make(map[string]any, len(post)+1)
	for k, v := range post {
		body[k] = v
	}
	body["status"] = "scheduled"

	res := s.client.CreatePost(ctx, body)
	if !res.Success {
		if res.StatusCode == 0 {
			return api.Fail("Failed to schedule post")
		}
		return res
	}
	return unwrap(res, "post", "Failed to schedule post")
}

// AutomationLogs is not exposed by the backend yet.
func (s *Service) AutomationLogs(ctx context.Context, limit int) api.Result {
	return api.Fail("Automation logs not implemented yet")
}

// unwrap extracts a named field from a success payload.
func unwrap(res api.Result, field, failMsg string) api.Result {
	var body map[string]json.RawMessage
	if err := res.Decode(&body); err != nil {
		return api.Fail(failMsg)
	}
	if data, ok := body[field]; ok && len(data) > 0 {
		return api.OK(data)
	}
	// Some backend deployments return the object bare rather than keyed.
	return res
}
