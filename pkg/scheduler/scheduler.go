// Package scheduler runs the publishing loop: every minute it pulls the
// content calendar and pushes due scheduled posts through the posting
// flow, so drafts scheduled from the dashboard actually go out.
package scheduler

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/postflow-dev/postflow/pkg/agents"
	"github.com/postflow-dev/postflow/pkg/api"
	"github.com/postflow-dev/postflow/pkg/observability"
)

const defaultSchedule = "* * * * *"

// Runner polls for due posts on a cron schedule and publishes them.
type Runner struct {
	client       *api.Client
	orchestrator *agents.Service

	accountID   string
	agentID     string
	schedule    string
	concurrency int

	cron    *cron.Cron
	mu      sync.Mutex
	started bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithAccountID sets the LinkedIn account posts are published through.
func WithAccountID(id string) Option {
	return func(r *Runner) { r.accountID = id }
}

// WithFallbackAgentID attributes dispatches of posts that were scheduled
// without an agent.
func WithFallbackAgentID(id string) Option {
	return func(r *Runner) { r.agentID = id }
}

// WithSchedule overrides the default once-a-minute cron spec.
func WithSchedule(spec string) Option {
	return func(r *Runner) { r.schedule = spec }
}

// WithConcurrency bounds how many posts publish in parallel per tick.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// New creates a publishing runner.
func New(client *api.Client, orchestrator *agents.Service, opts ...Option) *Runner {
	r := &Runner{
		client:       client,
		orchestrator: orchestrator,
		schedule:     defaultSchedule,
		concurrency:  2,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start begins the cron loop. Safe to call once; subsequent calls are
// no-ops until Stop.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(r.schedule, func() { r.Tick(ctx) }); err != nil {
		return err
	}
	c.Start()
	r.cron = c
	r.started = true
	log.Printf("Scheduler started (schedule %q)", r.schedule)
	return nil
}

// Stop halts the cron loop, waiting for a running tick to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return
	}
	<-r.cron.Stop().Done()
	r.started = false
	log.Printf("Scheduler stopped")
}

// Tick runs one poll-and-dispatch pass. Exposed so a single pass can be
// triggered outside the cron loop.
func (r *Runner) Tick(ctx context.Context) {
	res := r.client.GetCalendar(ctx)
	if !res.Success {
		log.Printf("Scheduler: failed to fetch calendar: %s", res.Error)
		return
	}

	var posts []agents.ContentPost
	if err := decodePosts(res, &posts); err != nil {
		log.Printf("Scheduler: failed to decode calendar: %v", err)
		return
	}

	due := Due(posts, time.Now())
	if len(due) == 0 {
		return
	}
	log.Printf("Scheduler: dispatching %d due post(s)", len(due))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, post := range due {
		g.Go(func() error {
			r.dispatch(gctx, post)
			return nil
		})
	}
	g.Wait()
}

func (r *Runner) dispatch(ctx context.Context, post agents.ContentPost) {
	agentID := post.AIAgentID
	if agentID == "" {
		agentID = r.agentID
	}

	res := r.orchestrator.ExecutePoster(ctx, agentID, post.ID, r.accountID)
	if !res.Success {
		observability.RecordSchedulerDispatch("failure")
		log.Printf("Scheduler: failed to publish post %s: %s", post.ID, res.Error)
		return
	}
	observability.RecordSchedulerDispatch("success")
}

// Due filters for posts whose scheduled time has arrived.
func Due(posts []agents.ContentPost, now time.Time) []agents.ContentPost {
	var due []agents.ContentPost
	for _, p := range posts {
		if p.Status != agents.PostStatusScheduled || p.ScheduledAt == nil {
			continue
		}
		if !p.ScheduledAt.After(now) {
			due = append(due, p)
		}
	}
	return due
}

// decodePosts accepts {"posts": [...]}, {"calendar": [...]} or a bare
// array, since calendar payload shape varies across backend versions.
func decodePosts(res api.Result, posts *[]agents.ContentPost) error {
	var keyed map[string]json.RawMessage
	if err := res.Decode(&keyed); err == nil {
		for _, field := range []string{"posts", "calendar"} {
			if data, ok := keyed[field]; ok && len(data) > 0 {
				return json.Unmarshal(data, posts)
			}
		}
	}
	return res.Decode(posts)
}
