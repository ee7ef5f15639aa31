package openrouter

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/postflow-dev/postflow/pkg/api"
	"github.com/postflow-dev/postflow/pkg/cache"
)

// OpenRouterBaseURL is the OpenAI-compatible endpoint for direct mode.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

const modelsCacheKind = "models"

// ChatCompleter is the slice of the OpenAI client the service needs,
// kept as an interface for testability.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Usage reports token consumption for a generation.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Generation is the payload of a successful content generation.
type Generation struct {
	Content          string  `json:"content"`
	CreditsUsed      float64 `json:"credits_used,omitempty"`
	CreditsRemaining float64 `json:"credits_remaining,omitempty"`
	Usage            *Usage  `json:"usage,omitempty"`
}

// Service routes generation requests. By default everything goes through
// the backend (which meters credits); with an OpenRouter API key
// configured, generation calls go straight to OpenRouter.
type Service struct {
	client *api.Client
	direct ChatCompleter
	models *cache.Cache
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithDirectKey enables direct mode with the given OpenRouter API key.
func WithDirectKey(apiKey string) ServiceOption {
	return func(s *Service) {
		if apiKey == "" {
			return
		}
		cfg := openai.DefaultConfig(apiKey)
		cfg.BaseURL = OpenRouterBaseURL
		s.direct = openai.NewClientWithConfig(cfg)
	}
}

// WithDirectClient enables direct mode with a custom client (useful for
// testing).
func WithDirectClient(c ChatCompleter) ServiceOption {
	return func(s *Service) { s.direct = c }
}

// WithModelCache caches the backend's model catalogue.
func WithModelCache(c *cache.Cache) ServiceOption {
	return func(s *Service) { s.models = c }
}

// NewService creates the content generation service.
func NewService(client *api.Client, opts ...ServiceOption) *Service {
	s := &Service{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DirectMode reports whether generation bypasses the backend.
func (s *Service) DirectMode() bool {
	return s.direct != nil
}

// GenerateContent runs a completion for the prompt. Options are forwarded
// to the backend; in direct mode only "model" is honored.
func (s *Service) GenerateContent(ctx context.Context, prompt string, options map[string]any) api.Result {
	if s.direct != nil {
		return s.generateDirect(ctx, prompt, options)
	}

	res := s.client.GenerateContent(ctx, prompt, options)
	if !res.Success {
		if res.StatusCode == 0 {
			return api.Fail("Failed to generate content")
		}
		return res
	}

	var gen Generation
	if err := res.Decode(&gen); err != nil {
		return api.Fail("Failed to generate content")
	}
	return marshalResult(gen)
}

func (s *Service) generateDirect(ctx context.Context, prompt string, options map[string]any) api.Result {
	model := DefaultModel
	if m, ok := options["model"].(string); ok && m != "" {
		model = m
	}

	resp, err := s.direct.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		// The catalogue uses "openrouter/<provider>/<model>" IDs; the
		// direct API wants them without the routing prefix.
		Model: strings.TrimPrefix(model, "openrouter/"),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return api.Fail(err.Error())
	}
	if len(resp.Choices) == 0 {
		return api.Fail("no choices in response")
	}

	return marshalResult(Generation{
		Content: resp.Choices[0].Message.Content,
		Usage: &Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	})
}

// GenerateLinkedInPost builds the post prompt and runs it.
func (s *Service) GenerateLinkedInPost(ctx context.Context, params PostParams) api.Result {
	p := params.withDefaults()
	prompt := BuildPostPrompt(p)

	return s.GenerateContent(ctx, prompt, map[string]any{
		"model": p.Model,
		"tone":  p.Tone,
		"topic": p.Topic,
	})
}

// AnalyzeContent runs a content analysis of the given type.
func (s *Service) AnalyzeContent(ctx context.Context, content, analysisType string) api.Result {
	return s.GenerateContent(ctx, AnalysisPrompt(content, analysisType), map[string]any{
		"model": DefaultModel,
	})
}

// AvailableModels lists models from the backend, with a short-lived cache
// in front since the catalogue rarely changes.
func (s *Service) AvailableModels(ctx context.Context) api.Result {
	var cached []Model
	if err := s.models.Get(ctx, modelsCacheKind, "", &cached); err == nil {
		data, merr := json.Marshal(cached)
		if merr == nil {
			return api.OK(data)
		}
	}

	res := s.client.GetAvailableModels(ctx)
	if !res.Success {
		if res.StatusCode == 0 {
			return api.Fail("Failed to fetch models")
		}
		return res
	}

	var body struct {
		Models []Model `json:"models"`
	}
	if err := res.Decode(&body); err != nil {
		return api.Fail("Failed to fetch models")
	}

	if err := s.models.Set(ctx, modelsCacheKind, "", body.Models); err != nil {
		log.Printf("Warning: failed to cache model catalogue: %v", err)
	}

	data, err := json.Marshal(body.Models)
	if err != nil {
		return api.Fail("Failed to fetch models")
	}
	return api.OK(data)
}

func marshalResult(gen Generation) api.Result {
	data, err := json.Marshal(gen)
	if err != nil {
		return api.Fail("Failed to generate content")
	}
	return api.OK(data)
}
