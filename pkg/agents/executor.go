package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/postflow-dev/postflow/pkg/api"
	"github.com/postflow-dev/postflow/pkg/audit"
	"github.com/postflow-dev/postflow/pkg/linkedin"
	"github.com/postflow-dev/postflow/pkg/observability"
	"github.com/postflow-dev/postflow/pkg/openrouter"
)

// ExecuteContentGenerator runs a content generation action: merge the
// caller's parameters over the agent's model config, generate a post, and
// save it as a draft with extracted hashtags. Generation failure leaves no
// post behind.
func (s *Service) ExecuteContentGenerator(ctx context.Context, agentID string, params GenerateParams) api.Result {
	start := time.Now()

	agent, loadErr := s.loadAgent(ctx, agentID)
	s.logAction(ctx, agent.UserID, agentID, ActionContentGeneration, audit.StatusStarted, map[string]any{
		"parameters": params,
	})
	if loadErr != nil {
		s.logAction(ctx, agent.UserID, agentID, ActionContentGeneration, audit.StatusError, map[string]any{
			"error": loadErr.Error(),
		})
		observability.RecordAgentExecution(ActionContentGeneration, "failure", time.Since(start))
		return api.Fail(loadErr.Error())
	}

	genRes := s.generator.GenerateLinkedInPost(ctx, openrouter.PostParams{
		Topic:           params.Topic,
		Tone:            firstNonEmpty(params.Tone, agent.ModelConfig.Tone),
		Length:          firstNonEmpty(params.Length, agent.ModelConfig.Length),
		IncludeHashtags: params.IncludeHashtags,
		IncludeEmojis:   params.IncludeEmojis,
		CustomPrompt:    agent.PromptTemplate,
		Model:           agent.ModelConfig.Model,
	})
	if !genRes.Success {
		s.logAction(ctx, agent.UserID, agentID, ActionContentGeneration, audit.StatusFailed, map[string]any{
			"error": genRes.Error,
		})
		observability.RecordAgentExecution(ActionContentGeneration, "failure", time.Since(start))
		return genRes
	}

	var gen openrouter.Generation
	if err := genRes.Decode(&gen); err != nil {
		s.logAction(ctx, agent.UserID, agentID, ActionContentGeneration, audit.StatusError, map[string]any{
			"error": err.Error(),
		})
		observability.RecordAgentExecution(ActionContentGeneration, "failure", time.Since(start))
		return api.Fail("Failed to generate content")
	}

	post, saveRes := s.saveGeneratedContent(ctx, agent.UserID, agentID, gen.Content, params.Title)
	if !saveRes.Success {
		s.logAction(ctx, agent.UserID, agentID, ActionContentGeneration, audit.StatusFailed, map[string]any{
			"error": saveRes.Error,
		})
		observability.RecordAgentExecution(ActionContentGeneration, "failure", time.Since(start))
		return saveRes
	}

	s.logAction(ctx, agent.UserID, agentID, ActionContentGeneration, audit.StatusCompleted, map[string]any{
		"content_id": post.ID,
		"usage":      gen.Usage,
	})
	observability.RecordAgentExecution(ActionContentGeneration, "success", time.Since(start))

	data, err := json.Marshal(map[string]any{
		"content":    gen.Content,
		"content_id": post.ID,
		"usage":      gen.Usage,
	})
	if err != nil {
		return api.Fail("Failed to generate content")
	}
	return api.OK(data)
}

// ExecuteScheduler moves a draft post to scheduled status at the given
// time. Past times are accepted; the backend owns validation.
func (s *Service) ExecuteScheduler(ctx context.Context, agentID, contentID string, scheduledAt time.Time) api.Result {
	start := time.Now()
	userID := s.agentOwner(ctx, agentID)

	s.logAction(ctx, userID, agentID, ActionScheduling, audit.StatusStarted, map[string]any{
		"content_id":     contentID,
		"scheduled_time": scheduledAt.UTC().Format(time.RFC3339),
	})

	res := s.client.UpdatePost(ctx, contentID, map[string]any{
		"status":       PostStatusScheduled,
		"scheduled_at": scheduledAt.UTC().Format(time.RFC3339),
	})
	if !res.Success {
		if res.StatusCode == 0 {
			res = api.Fail("Failed to schedule post")
		}
		s.logAction(ctx, userID, agentID, ActionScheduling, audit.StatusError, map[string]any{
			"error": res.Error,
		})
		observability.RecordAgentExecution(ActionScheduling, "failure", time.Since(start))
		return res
	}

	s.logAction(ctx, userID, agentID, ActionScheduling, audit.StatusCompleted, map[string]any{
		"content_id":     contentID,
		"scheduled_time": scheduledAt.UTC().Format(time.RFC3339),
	})
	observability.RecordAgentExecution(ActionScheduling, "success", time.Since(start))
	return res
}

// ExecutePoster publishes a content post through a LinkedIn account.
// On success the post becomes published with its LinkedIn post ID; on
// failure it is marked failed and keeps no published timestamp.
func (s *Service) ExecutePoster(ctx context.Context, agentID, contentID, accountID string) api.Result {
	start := time.Now()
	userID := s.agentOwner(ctx, agentID)

	s.logAction(ctx, userID, agentID, ActionPosting, audit.StatusStarted, map[string]any{
		"content_id": contentID,
		"account_id": accountID,
	})

	post, err := s.loadPost(ctx, contentID)
	if err != nil {
		s.logAction(ctx, userID, agentID, ActionPosting, audit.StatusError, map[string]any{
			"error": err.Error(),
		})
		observability.RecordAgentExecution(ActionPosting, "failure", time.Since(start))
		return api.Fail(err.Error())
	}

	postRes := s.publisher.Post(ctx, linkedin.PostRequest{
		AccountID:      accountID,
		Content:        post.Content,
		HumanLikeDelay: true,
	})
	if !postRes.Success {
		// Best effort: the status update shares the fate of the log write.
		s.client.UpdatePost(ctx, contentID, map[string]any{"status": PostStatusFailed})
		s.logAction(ctx, userID, agentID, ActionPosting, audit.StatusFailed, map[string]any{
			"content_id": contentID,
			"error":      postRes.Error,
		})
		observability.RecordAgentExecution(ActionPosting, "failure", time.Since(start))
		return postRes
	}

	var receipt linkedin.PostReceipt
	if err := postRes.Decode(&receipt); err != nil {
		s.logAction(ctx, userID, agentID, ActionPosting, audit.StatusError, map[string]any{
			"error": err.Error(),
		})
		observability.RecordAgentExecution(ActionPosting, "failure", time.Since(start))
		return api.Fail("Failed to post to LinkedIn")
	}

	updateRes := s.client.UpdatePost(ctx, contentID, map[string]any{
		"status":           PostStatusPublished,
		"published_at":     time.Now().UTC().Format(time.RFC3339),
		"linkedin_post_id": receipt.PostID,
	})
	if !updateRes.Success {
		s.logAction(ctx, userID, agentID, ActionPosting, audit.StatusError, map[string]any{
			"error": updateRes.Error,
		})
		observability.RecordAgentExecution(ActionPosting, "failure", time.Since(start))
		return updateRes
	}

	s.logAction(ctx, userID, agentID, ActionPosting, audit.StatusCompleted, map[string]any{
		"content_id":       contentID,
		"linkedin_post_id": receipt.PostID,
	})
	observability.RecordAgentExecution(ActionPosting, "success", time.Since(start))
	return postRes
}

// ExecuteAnalytics analyzes a post's engagement potential and merges the
// analysis into the post's engagement metrics without clobbering metrics
// already collected.
func (s *Service) ExecuteAnalytics(ctx context.Context, agentID, contentID string) api.Result {
	start := time.Now()
	userID := s.agentOwner(ctx, agentID)

	s.logAction(ctx, userID, agentID, ActionAnalytics, audit.StatusStarted, map[string]any{
		"content_id": contentID,
	})

	post, err := s.loadPost(ctx, contentID)
	if err != nil {
		s.logAction(ctx, userID, agentID, ActionAnalytics, audit.StatusError, map[string]any{
			"error": err.Error(),
		})
		observability.RecordAgentExecution(ActionAnalytics, "failure", time.Since(start))
		return api.Fail(err.Error())
	}

	analysisRes := s.generator.AnalyzeContent(ctx, post.Content, openrouter.AnalysisEngagement)
	if !analysisRes.Success {
		s.logAction(ctx, userID, agentID, ActionAnalytics, audit.StatusFailed, map[string]any{
			"content_id": contentID,
			"error":      analysisRes.Error,
		})
		observability.RecordAgentExecution(ActionAnalytics, "failure", time.Since(start))
		return analysisRes
	}

	var gen openrouter.Generation
	if err := analysisRes.Decode(&gen); err != nil {
		s.logAction(ctx, userID, agentID, ActionAnalytics, audit.StatusError, map[string]any{
			"error": err.Error(),
		})
		observability.RecordAgentExecution(ActionAnalytics, "failure", time.Since(start))
		return api.Fail("Failed to analyze content")
	}

	metrics := make(map[string]any, len(post.EngagementMetrics)+2)
	for k, v := range post.EngagementMetrics {
		metrics[k] = v
	}
	metrics["ai_analysis"] = gen.Content
	metrics["analyzed_at"] = time.Now().UTC().Format(time.RFC3339)

	updateRes := s.client.UpdatePost(ctx, contentID, map[string]any{
		"engagement_metrics": metrics,
	})
	if !updateRes.Success {
		s.logAction(ctx, userID, agentID, ActionAnalytics, audit.StatusError, map[string]any{
			"error": updateRes.Error,
		})
		observability.RecordAgentExecution(ActionAnalytics, "failure", time.Since(start))
		return updateRes
	}

	s.logAction(ctx, userID, agentID, ActionAnalytics, audit.StatusCompleted, map[string]any{
		"content_id": contentID,
	})
	observability.RecordAgentExecution(ActionAnalytics, "success", time.Since(start))

	data, merr := json.Marshal(map[string]any{
		"analysis": gen.Content,
		"metrics":  metrics,
	})
	if merr != nil {
		return api.Fail("Failed to analyze content")
	}
	return api.OK(data)
}

// BatchResult pairs a content ID with its analytics outcome.
type BatchResult struct {
	ContentID string     `json:"content_id"`
	Result    api.Result `json:"result"`
}

// ExecuteAnalyticsBatch runs the analytics action over several posts with
// bounded concurrency. Individual failures are reported per post, never
// aborting the batch.
func (s *Service) ExecuteAnalyticsBatch(ctx context.Context, agentID string, contentIDs []string, concurrency int) []BatchResult {
	if concurrency <= 0 {
		concurrency = 4
	}

	results := make([]BatchResult, len(contentIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, id := range contentIDs {
		g.Go(func() error {
			results[i] = BatchResult{ContentID: id, Result: s.ExecuteAnalytics(gctx, agentID, id)}
			return nil
		})
	}
	g.Wait()
	return results
}

// saveGeneratedContent stores generated text as a draft post with its
// hashtags extracted. The title defaults to a dated placeholder.
func (s *Service) saveGeneratedContent(ctx context.Context, userID, agentID, content, title string) (ContentPost, api.Result) {
	if title == "" {
		title = fmt.Sprintf("Generated content - %s", time.Now().Format("1/2/2006"))
	}

	res := s.client.CreatePost(ctx, map[string]any{
		"user_id":     userID,
		"ai_agent_id": agentID,
		"title":       title,
		"content":     content,
		"hashtags":    ExtractHashtags(content),
		"status":      PostStatusDraft,
	})
	if !res.Success {
		if res.StatusCode == 0 {
			res = api.Fail("Failed to save generated content")
		}
		return ContentPost{}, res
	}

	unwrapped := unwrapField(res, "post")
	var post ContentPost
	if err := unwrapped.Decode(&post); err != nil {
		return ContentPost{}, api.Fail("Failed to save generated content")
	}
	return post, unwrapped
}

// loadAgent fetches and decodes an agent.
func (s *Service) loadAgent(ctx context.Context, agentID string) (Agent, error) {
	res := s.GetAgent(ctx, agentID)
	if !res.Success {
		return Agent{}, fmt.Errorf("failed to load agent: %s", res.Error)
	}
	var agent Agent
	if err := res.Decode(&agent); err != nil {
		return Agent{}, fmt.Errorf("failed to load agent: %w", err)
	}
	return agent, nil
}

// loadPost fetches and decodes a content post.
func (s *Service) loadPost(ctx context.Context, contentID string) (ContentPost, error) {
	res := s.client.GetPost(ctx, contentID)
	if !res.Success {
		return ContentPost{}, fmt.Errorf("failed to load post: %s", res.Error)
	}
	unwrapped := unwrapField(res, "post")
	var post ContentPost
	if err := unwrapped.Decode(&post); err != nil {
		return ContentPost{}, fmt.Errorf("failed to load post: %w", err)
	}
	return post, nil
}

// agentOwner resolves the agent's owning user for log attribution.
// Lookup failures leave the entry unattributed rather than blocking the
// action.
func (s *Service) agentOwner(ctx context.Context, agentID string) string {
	agent, err := s.loadAgent(ctx, agentID)
	if err != nil {
		return ""
	}
	return agent.UserID
}

// logAction writes one automation log row, fire-and-forget.
func (s *Service) logAction(ctx context.Context, userID, agentID, actionType, status string, details map[string]any) {
	s.logger.Log(ctx, audit.NewEntry(userID, agentID, actionType, status, details))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
