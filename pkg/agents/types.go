// Package agents implements AI agent orchestration. Agent definitions are
// stored server-side and parameterize four automation actions: generate,
// schedule, post and analyze. Every action attempt leaves a row in the
// automation log.
package agents

import "time"

// Agent types. Each type parameterizes exactly one execute flow.
const (
	TypeContentGenerator = "content_generator"
	TypeScheduler        = "scheduler"
	TypePoster           = "poster"
	TypeAnalytics        = "analytics"
)

// Agent statuses.
const (
	StatusActive = "active"
	StatusPaused = "paused"
)

// Content post statuses. Transitions are draft→scheduled→published, with
// failed reachable from a posting error.
const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
)

// Action types recorded in the automation log.
const (
	ActionContentGeneration = "content_generation"
	ActionScheduling        = "scheduling"
	ActionPosting           = "posting"
	ActionAnalytics         = "analytics"
)

// ModelConfig holds an agent's stored generation defaults. Caller-supplied
// parameters win over these; these win over the hardcoded defaults.
type ModelConfig struct {
	Model  string `json:"model,omitempty"`
	Tone   string `json:"tone,omitempty"`
	Length string `json:"length,omitempty"`
}

// Agent is a stored automation configuration, owned by the backend.
type Agent struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	AgentName      string      `json:"agent_name"`
	AgentType      string      `json:"agent_type"`
	ModelConfig    ModelConfig `json:"model_config"`
	PromptTemplate string      `json:"prompt_template"`
	Status         string      `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at,omitempty"`
}

// ContentPost is the client-side view of a backend content post record.
type ContentPost struct {
	ID                string         `json:"id"`
	UserID            string         `json:"user_id"`
	AIAgentID         string         `json:"ai_agent_id,omitempty"`
	Title             string         `json:"title"`
	Content           string         `json:"content"`
	Hashtags          []string       `json:"hashtags"`
	Status            string         `json:"status"`
	ScheduledAt       *time.Time     `json:"scheduled_at,omitempty"`
	PublishedAt       *time.Time     `json:"published_at,omitempty"`
	LinkedInPostID    string         `json:"linkedin_post_id,omitempty"`
	EngagementMetrics map[string]any `json:"engagement_metrics,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

// CreateAgentParams shapes a new agent.
type CreateAgentParams struct {
	Name           string      `json:"name"`
	Type           string      `json:"type"`
	ModelConfig    ModelConfig `json:"model_config,omitempty"`
	PromptTemplate string      `json:"prompt_template,omitempty"`
}

// GenerateParams are caller overrides for a content generation run.
// Unset fields fall back to the agent's model config, then to the
// built-in defaults.
type GenerateParams struct {
	Topic           string `json:"topic"`
	Tone            string `json:"tone,omitempty"`
	Length          string `json:"length,omitempty"`
	IncludeHashtags *bool  `json:"include_hashtags,omitempty"`
	IncludeEmojis   *bool  `json:"include_emojis,omitempty"`
	Title           string `json:"title,omitempty"`
}
