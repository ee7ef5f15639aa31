// Package postflow wires the LinkedIn automation client: backend API
// access, authentication, content generation, LinkedIn publishing, agent
// orchestration and the scheduled publishing loop.
package postflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/postflow-dev/postflow/pkg/agents"
	"github.com/postflow-dev/postflow/pkg/analytics"
	"github.com/postflow-dev/postflow/pkg/api"
	"github.com/postflow-dev/postflow/pkg/audit"
	"github.com/postflow-dev/postflow/pkg/auth"
	"github.com/postflow-dev/postflow/pkg/cache"
	"github.com/postflow-dev/postflow/pkg/config"
	"github.com/postflow-dev/postflow/pkg/linkedin"
	"github.com/postflow-dev/postflow/pkg/observability"
	"github.com/postflow-dev/postflow/pkg/openrouter"
	"github.com/postflow-dev/postflow/pkg/scheduler"
)

// App is the assembled application: every service shares one API client
// and one session.
type App struct {
	Config *config.Config

	API       *api.Client
	Auth      *auth.Service
	Generator *openrouter.Service
	LinkedIn  *linkedin.Service
	Agents    *agents.Service
	Analytics *analytics.Service
	Scheduler *scheduler.Runner

	cache *cache.Cache
	audit audit.Logger
	local *audit.SQLiteLogger
}

// New assembles the application from configuration.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	observability.InitMetrics()

	clientOpts := []api.Option{
		api.WithTimeout(time.Duration(cfg.APITimeout) * time.Second),
	}
	if cfg.PostRateLimit > 0 {
		clientOpts = append(clientOpts, api.WithPostRateLimit(float64(cfg.PostRateLimit), cfg.PostRateBurst))
	}
	client := api.NewClient(cfg.APIBaseURL, clientOpts...)

	store, err := auth.NewFileStore(cfg.CredentialDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	authSvc := auth.NewService(client, store)
	client.SetTokenSource(authSvc)

	var responseCache *cache.Cache
	if cfg.Cache.Addr != "" {
		responseCache, err = cache.New(cache.Config{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			TTL:      cfg.Cache.TTL(),
		})
		if err != nil {
			// Degrade to uncached operation rather than refusing to start.
			log.Printf("Warning: cache disabled: %v", err)
			responseCache = nil
		}
	}

	generatorOpts := []openrouter.ServiceOption{
		openrouter.WithModelCache(responseCache),
	}
	if cfg.OpenRouterKey != "" {
		generatorOpts = append(generatorOpts, openrouter.WithDirectKey(cfg.OpenRouterKey))
	}
	generator := openrouter.NewService(client, generatorOpts...)

	publisher := linkedin.NewService(client)

	auditLogger := audit.MultiLogger{audit.NewAPILogger(client)}
	var localLog *audit.SQLiteLogger
	if cfg.AuditDBPath != "" {
		localLog, err = audit.NewSQLiteLogger(cfg.AuditDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open local automation log: %w", err)
		}
		auditLogger = append(auditLogger, localLog)
	}

	orchestrator := agents.NewService(client, generator, publisher, auditLogger)
	reporting := analytics.NewService(client, responseCache)

	var runner *scheduler.Runner
	if cfg.Scheduler.Enabled {
		runner = scheduler.New(client, orchestrator,
			scheduler.WithAccountID(cfg.Scheduler.AccountID),
			scheduler.WithFallbackAgentID(cfg.Scheduler.AgentID),
			scheduler.WithSchedule(cfg.Scheduler.Schedule),
			scheduler.WithConcurrency(cfg.Scheduler.Concurrency),
		)
	}

	return &App{
		Config:    cfg,
		API:       client,
		Auth:      authSvc,
		Generator: generator,
		LinkedIn:  publisher,
		Agents:    orchestrator,
		Analytics: reporting,
		Scheduler: runner,
		cache:     responseCache,
		audit:     auditLogger,
		local:     localLog,
	}, nil
}

// LocalLogs returns the newest locally mirrored automation log entries for
// an agent, or nil when no local mirror is configured.
func (a *App) LocalLogs(ctx context.Context, agentID string, limit int) ([]audit.Entry, error) {
	if a.local == nil {
		return nil, nil
	}
	return a.local.Recent(ctx, agentID, limit)
}

// CachePing checks the response cache connection. Always healthy when no
// cache is configured.
func (a *App) CachePing(ctx context.Context) error {
	return a.cache.Ping(ctx)
}

// Close releases resources: the scheduler loop, audit sinks and cache.
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}

	var first error
	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			first = err
		}
	}
	if err := a.cache.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
