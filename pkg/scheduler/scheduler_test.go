package scheduler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postflow-dev/postflow/pkg/agents"
	"github.com/postflow-dev/postflow/pkg/api"
	"github.com/postflow-dev/postflow/pkg/audit"
	"github.com/postflow-dev/postflow/pkg/linkedin"
	"github.com/postflow-dev/postflow/pkg/openrouter"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestDue(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	posts := []agents.ContentPost{
		{ID: "past", Status: agents.PostStatusScheduled, ScheduledAt: timePtr(now.Add(-time.Hour))},
		{ID: "exact", Status: agents.PostStatusScheduled, ScheduledAt: timePtr(now)},
		{ID: "future", Status: agents.PostStatusScheduled, ScheduledAt: timePtr(now.Add(time.Hour))},
		{ID: "draft", Status: agents.PostStatusDraft, ScheduledAt: timePtr(now.Add(-time.Hour))},
		{ID: "published", Status: agents.PostStatusPublished, ScheduledAt: timePtr(now.Add(-time.Hour))},
		{ID: "no-time", Status: agents.PostStatusScheduled},
	}

	due := Due(posts, now)
	require.Len(t, due, 2)
	assert.Equal(t, "past", due[0].ID)
	assert.Equal(t, "exact", due[1].ID)
}

func TestDueEmpty(t *testing.T) {
	assert.Empty(t, Due(nil, time.Now()))
}

// schedulerBackend fakes the calendar plus everything the posting flow
// touches.
type schedulerBackend struct {
	server *httptest.Server

	mu        sync.Mutex
	calendar  []agents.ContentPost
	published []map[string]any
	updates   []map[string]any
}

func newSchedulerBackend(t *testing.T) *schedulerBackend {
	t.Helper()
	b := &schedulerBackend{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /content/calendar", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"posts": b.calendar})
	})
	mux.HandleFunc("GET /content/posts/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, p := range b.calendar {
			if r.URL.Path == "/content/posts/"+p.ID {
				_ = json.NewEncoder(w).Encode(map[string]any{"post": p})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"post not found"}`))
	})
	mux.HandleFunc("PUT /content/posts/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.updates = append(b.updates, body)
		b.mu.Unlock()
		_, _ = w.Write([]byte(`{"post":{}}`))
	})
	mux.HandleFunc("GET /ai/agents/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"agent": agents.Agent{ID: "agent-1", UserID: "user-1"}})
	})
	mux.HandleFunc("POST /linkedin/post", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.published = append(b.published, body)
		b.mu.Unlock()
		_, _ = w.Write([]byte(`{"post_id":"lp-1"}`))
	})

	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func (b *schedulerBackend) publishedContents() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, p := range b.published {
		out = append(out, p["content"].(string))
	}
	return out
}

func TestTickDispatchesDuePosts(t *testing.T) {
	backend := newSchedulerBackend(t)
	now := time.Now()
	backend.calendar = []agents.ContentPost{
		{ID: "due-1", Status: agents.PostStatusScheduled, Content: "first", ScheduledAt: timePtr(now.Add(-time.Minute)), AIAgentID: "agent-1"},
		{ID: "due-2", Status: agents.PostStatusScheduled, Content: "second", ScheduledAt: timePtr(now.Add(-time.Second))},
		{ID: "later", Status: agents.PostStatusScheduled, Content: "later", ScheduledAt: timePtr(now.Add(time.Hour))},
	}

	client := api.NewClient(backend.server.URL)
	orchestrator := agents.NewService(client, openrouter.NewService(client), linkedin.NewService(client), audit.NewInMemoryLogger())

	runner := New(client, orchestrator,
		WithAccountID("acct-1"),
		WithFallbackAgentID("agent-1"),
		WithConcurrency(2),
	)
	runner.Tick(context.Background())

	contents := backend.publishedContents()
	assert.ElementsMatch(t, []string{"first", "second"}, contents)

	// Each dispatched post got its status updated to published.
	backend.mu.Lock()
	defer backend.mu.Unlock()
	require.Len(t, backend.updates, 2)
	for _, update := range backend.updates {
		assert.Equal(t, agents.PostStatusPublished, update["status"])
		assert.Equal(t, "lp-1", update["linkedin_post_id"])
	}
}

func TestTickNoDuePosts(t *testing.T) {
	backend := newSchedulerBackend(t)
	backend.calendar = []agents.ContentPost{
		{ID: "later", Status: agents.PostStatusScheduled, ScheduledAt: timePtr(time.Now().Add(time.Hour))},
	}

	client := api.NewClient(backend.server.URL)
	orchestrator := agents.NewService(client, openrouter.NewService(client), linkedin.NewService(client), audit.NopLogger{})

	runner := New(client, orchestrator, WithAccountID("acct-1"))
	runner.Tick(context.Background())

	assert.Empty(t, backend.publishedContents())
}

func TestTickSurvivesCalendarFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"calendar unavailable"}`))
	}))
	defer server.Close()

	client := api.NewClient(server.URL)
	orchestrator := agents.NewService(client, openrouter.NewService(client), linkedin.NewService(client), audit.NopLogger{})

	runner := New(client, orchestrator, WithAccountID("acct-1"))
	// Must not panic.
	runner.Tick(context.Background())
}

func TestStartStop(t *testing.T) {
	backend := newSchedulerBackend(t)

	client := api.NewClient(backend.server.URL)
	orchestrator := agents.NewService(client, openrouter.NewService(client), linkedin.NewService(client), audit.NopLogger{})

	runner := New(client, orchestrator, WithAccountID("acct-1"))
	require.NoError(t, runner.Start(context.Background()))
	// Starting twice is a no-op.
	require.NoError(t, runner.Start(context.Background()))
	runner.Stop()
	// Stopping twice is fine.
	runner.Stop()
}
