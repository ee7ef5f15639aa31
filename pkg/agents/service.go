package agents

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/postflow-dev/postflow/pkg/api"
	"github.com/postflow-dev/postflow/pkg/audit"
	"github.com/postflow-dev/postflow/pkg/linkedin"
	"github.com/postflow-dev/postflow/pkg/openrouter"
)

// Service manages AI agents and runs their automation actions.
type Service struct {
	client    *api.Client
	generator *openrouter.Service
	publisher *linkedin.Service
	logger    audit.Logger
}

// NewService wires the agent orchestrator. A nil logger disables
// automation logging.
func NewService(client *api.Client, generator *openrouter.Service, publisher *linkedin.Service, logger audit.Logger) *Service {
	if logger == nil {
		logger = audit.NopLogger{}
	}
	return &Service{
		client:    client,
		generator: generator,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateAgent stores a new agent for the user. Agents start active.
func (s *Service) CreateAgent(ctx context.Context, userID string, params CreateAgentParams) api.Result {
	res := s.client.CreateAgent(ctx, map[string]any{
		"user_id":         userID,
		"agent_name":      params.Name,
		"agent_type":      params.Type,
		"model_config":    params.ModelConfig,
		"prompt_template": params.PromptTemplate,
		"status":          StatusActive,
	})
	if !res.Success {
		if res.StatusCode == 0 {
			return api.Fail("Failed to create agent")
		}
		return res
	}
	return unwrapField(res, "agent")
}

// GetUserAgents lists the user's agents, most recently created first.
func (s *Service) GetUserAgents(ctx context.Context) api.Result {
	res := s.client.GetAgents(ctx)
	if !res.Success {
		if res.StatusCode == 0 {
			return api.Fail("Failed to fetch agents")
		}
		return res
	}

	var agents []Agent
	if err := decodeList(res, "agents", &agents); err != nil {
		return api.Fail("Failed to fetch agents")
	}
	sort.SliceStable(agents, func(i, j int) bool {
		return agents[i].CreatedAt.After(agents[j].CreatedAt)
	})

	data, err := json.Marshal(agents)
	if err != nil {
		return api.Fail("Failed to fetch agents")
	}
	return api.OK(data)
}

// GetAgent fetches a single agent.
func (s *Service) GetAgent(ctx context.Context, agentID string) api.Result {
	res := s.client.GetAgent(ctx, agentID)
	if !res.Success {
		if res.StatusCode == 0 {
			return api.Fail("Failed to fetch agent")
		}
		return res
	}
	return unwrapField(res, "agent")
}

// UpdateAgent applies partial updates to an agent.
func (s *Service) UpdateAgent(ctx context.Context, agentID string, updates map[string]any) api.Result {
	res := s.client.UpdateAgent(ctx, agentID, updates)
	if !res.Success {
		if res.StatusCode == 0 {
			return api.Fail("Failed to update agent")
		}
		return res
	}
	return unwrapField(res, "agent")
}

// DeleteAgent removes an agent.
func (s *Service) DeleteAgent(ctx context.Context, agentID string) api.Result {
	res := s.client.DeleteAgent(ctx, agentID)
	if !res.Success {
		if res.StatusCode == 0 {
			return api.Fail("Failed to delete agent")
		}
		return res
	}
	return res
}

// GetAgentLogs lists automation log rows for the agent, newest first.
func (s *Service) GetAgentLogs(ctx context.Context, agentID string, limit int) api.Result {
	if limit <= 0 {
		limit = 50
	}
	res := s.client.GetAgentLogs(ctx, agentID, limit)
	if !res.Success {
		if res.StatusCode == 0 {
			return api.Fail("Failed to fetch agent logs")
		}
		return res
	}

	var entries []audit.Entry
	if err := decodeList(res, "logs", &entries); err != nil {
		return api.Fail("Failed to fetch agent logs")
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return api.Fail("Failed to fetch agent logs")
	}
	return api.OK(data)
}

// unwrapField extracts a keyed object from a success payload, tolerating
// backends that return the object bare.
func unwrapField(res api.Result, field string) api.Result {
	var body map[string]json.RawMessage
	if err := res.Decode(&body); err != nil {
		return res
	}
	if data, ok := body[field]; ok && len(data) > 0 {
		return api.OK(data)
	}
	return res
}

// decodeList decodes either {"<field>": [...]} or a bare JSON array.
func decodeList(res api.Result, field string, v any) error {
	var keyed map[string]json.RawMessage
	if err := res.Decode(&keyed); err == nil {
		if data, ok := keyed[field]; ok && len(data) > 0 {
			return json.Unmarshal(data, v)
		}
	}
	return res.Decode(v)
}
