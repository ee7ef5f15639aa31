// Package analytics reads aggregate dashboard data from the backend, with
// a short-lived per-user cache in front since the numbers only move when
// posts go out.
package analytics

import (
	"context"
	"encoding/json"
	"log"

	"github.com/postflow-dev/postflow/pkg/api"
	"github.com/postflow-dev/postflow/pkg/cache"
)

const (
	dashboardKind   = "dashboard"
	engagementKind  = "engagement"
	performanceKind = "performance"
)

// Service wraps the /analytics API surface.
type Service struct {
	client    *api.Client
	snapshots *cache.Cache
}

// NewService creates the analytics client. A nil cache disables caching.
func NewService(client *api.Client, snapshots *cache.Cache) *Service {
	return &Service{client: client, snapshots: snapshots}
}

// Dashboard returns aggregate KPIs for the user.
func (s *Service) Dashboard(ctx context.Context, userID string) api.Result {
	return s.cached(ctx, dashboardKind, userID, s.client.GetDashboardData, "Failed to fetch dashboard data")
}

// Engagement returns the user's engagement time series.
func (s *Service) Engagement(ctx context.Context, userID string) api.Result {
	return s.cached(ctx, engagementKind, userID, s.client.GetEngagementAnalytics, "Failed to fetch engagement analytics")
}

// Performance returns per-post performance data.
func (s *Service) Performance(ctx context.Context, userID string) api.Result {
	return s.cached(ctx, performanceKind, userID, s.client.GetPerformanceAnalytics, "Failed to fetch performance analytics")
}

// Invalidate drops the user's cached snapshots, typically after a publish.
func (s *Service) Invalidate(ctx context.Context, userID string) {
	for _, kind := range []string{dashboardKind, engagementKind, performanceKind} {
		if err := s.snapshots.Invalidate(ctx, kind, userID); err != nil {
			log.Printf("Warning: failed to invalidate %s snapshot: %v", kind, err)
		}
	}
}

func (s *Service) cached(ctx context.Context, kind, userID string, fetch func(context.Context) api.Result, failMsg string) api.Result {
	var snapshot json.RawMessage
	if err := s.snapshots.Get(ctx, kind, userID, &snapshot); err == nil {
		return api.OK(snapshot)
	}

	res := fetch(ctx)
	if !res.Success {
		if res.StatusCode == 0 {
			return api.Fail(failMsg)
		}
		return res
	}

	if err := s.snapshots.Set(ctx, kind, userID, res.Data); err != nil {
		log.Printf("Warning: failed to cache %s snapshot: %v", kind, err)
	}
	return res
}
