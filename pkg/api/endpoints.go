package api

import (
	"context"
	"fmt"
	"net/http"
)

// Content API

// GetPosts lists the user's content posts.
func (c *Client) GetPosts(ctx context.Context) Result {
	return c.Request(ctx, http.MethodGet, "/content/posts", nil, nil)
}

// GetPost fetches a single content post by ID.
func (c *Client) GetPost(ctx context.Context, postID string) Result {
	return c.Request(ctx, http.MethodGet, "/content/posts/"+postID, nil, nil)
}

// CreatePost creates a content post.
func (c *Client) CreatePost(ctx context.Context, post any) Result {
	return c.Request(ctx, http.MethodPost, "/content/posts", post, nil)
}

// UpdatePost updates fields on a content post.
func (c *Client) UpdatePost(ctx context.Context, postID string, updates any) Result {
	return c.Request(ctx, http.MethodPut, "/content/posts/"+postID, updates, nil)
}

// DeletePost removes a content post.
func (c *Client) DeletePost(ctx context.Context, postID string) Result {
	return c.Request(ctx, http.MethodDelete, "/content/posts/"+postID, nil, nil)
}

// GetCalendar returns the content calendar view.
func (c *Client) GetCalendar(ctx context.Context) Result {
	return c.Request(ctx, http.MethodGet, "/content/calendar", nil, nil)
}

// AI API

// GenerateContent asks the backend to run a completion for the prompt.
// Options are merged into the request body alongside the prompt.
func (c *Client) GenerateContent(ctx context.Context, prompt string, options map[string]any) Result {
	body := map[string]any{"prompt": prompt}
	for k, v := range options {
		body[k] = v
	}
	return c.Request(ctx, http.MethodPost, "/ai/generate-content", body, nil)
}

// GetAgents lists the user's AI agents.
func (c *Client) GetAgents(ctx context.Context) Result {
	return c.Request(ctx, http.MethodGet, "/ai/agents", nil, nil)
}

// GetAgent fetches a single AI agent by ID.
func (c *Client) GetAgent(ctx context.Context, agentID string) Result {
	return c.Request(ctx, http.MethodGet, "/ai/agents/"+agentID, nil, nil)
}

// CreateAgent creates an AI agent.
func (c *Client) CreateAgent(ctx context.Context, agent any) Result {
	return c.Request(ctx, http.MethodPost, "/ai/agents", agent, nil)
}

// UpdateAgent updates fields on an AI agent.
func (c *Client) UpdateAgent(ctx context.Context, agentID string, updates any) Result {
	return c.Request(ctx, http.MethodPut, "/ai/agents/"+agentID, updates, nil)
}

// DeleteAgent removes an AI agent.
func (c *Client) DeleteAgent(ctx context.Context, agentID string) Result {
	return c.Request(ctx, http.MethodDelete, "/ai/agents/"+agentID, nil, nil)
}

// GetAvailableModels lists models available for generation.
func (c *Client) GetAvailableModels(ctx context.Context) Result {
	return c.Request(ctx, http.MethodGet, "/ai/models", nil, nil)
}

// Automation log API

// CreateAutomationLog appends an automation log row.
func (c *Client) CreateAutomationLog(ctx context.Context, entry any) Result {
	return c.Request(ctx, http.MethodPost, "/automation/logs", entry, nil)
}

// GetAgentLogs lists automation log rows for an agent, newest first.
func (c *Client) GetAgentLogs(ctx context.Context, agentID string, limit int) Result {
	endpoint := fmt.Sprintf("/automation/logs?agent_id=%s&limit=%d", agentID, limit)
	return c.Request(ctx, http.MethodGet, endpoint, nil, nil)
}

// LinkedIn API

// GetLinkedInAccounts lists connected LinkedIn accounts.
func (c *Client) GetLinkedInAccounts(ctx context.Context) Result {
	return c.Request(ctx, http.MethodGet, "/linkedin/accounts", nil, nil)
}

// AddLinkedInAccount connects a LinkedIn account.
func (c *Client) AddLinkedInAccount(ctx context.Context, account any) Result {
	return c.Request(ctx, http.MethodPost, "/linkedin/accounts", account, nil)
}

// LinkedInLogin starts a LinkedIn login session on the automation engine.
func (c *Client) LinkedInLogin(ctx context.Context, credentials any) Result {
	return c.Request(ctx, http.MethodPost, "/linkedin/login", credentials, nil)
}

// PostToLinkedIn publishes a post through the automation engine.
// Subject to the client-side rate limit when one is configured.
func (c *Client) PostToLinkedIn(ctx context.Context, post any) Result {
	if c.postLimiter != nil {
		if err := c.postLimiter.Wait(ctx); err != nil {
			return Fail(fmt.Sprintf("posting rate limit: %v", err))
		}
	}
	return c.Request(ctx, http.MethodPost, "/linkedin/post", post, nil)
}

// TestLinkedInConnection verifies an account's automation session.
func (c *Client) TestLinkedInConnection(ctx context.Context, accountID string) Result {
	return c.Request(ctx, http.MethodGet, "/linkedin/test-connection/"+accountID, nil, nil)
}

// Analytics API

// GetDashboardData returns aggregate dashboard KPIs.
func (c *Client) GetDashboardData(ctx context.Context) Result {
	return c.Request(ctx, http.MethodGet, "/analytics/dashboard", nil, nil)
}

// GetEngagementAnalytics returns engagement time series.
func (c *Client) GetEngagementAnalytics(ctx context.Context) Result {
	return c.Request(ctx, http.MethodGet, "/analytics/engagement", nil, nil)
}

// GetPerformanceAnalytics returns per-post performance data.
func (c *Client) GetPerformanceAnalytics(ctx context.Context) Result {
	return c.Request(ctx, http.MethodGet, "/analytics/performance", nil, nil)
}
