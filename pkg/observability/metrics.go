package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Backend API metrics
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postflow_api_requests_total",
			Help: "Total number of backend API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "postflow_api_request_duration_seconds",
			Help:    "Backend API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Agent execution metrics
	agentExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postflow_agent_executions_total",
			Help: "Total number of agent action executions",
		},
		[]string{"action", "status"},
	)

	agentExecutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "postflow_agent_execution_duration_seconds",
			Help:    "Agent action execution duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)

	// Audit log metrics. Log writes are fire-and-forget; failures are
	// surfaced here instead of failing the parent operation.
	auditLogFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postflow_audit_log_failures_total",
			Help: "Total number of swallowed automation log write failures",
		},
		[]string{"sink"},
	)

	// Scheduler metrics
	schedulerDispatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postflow_scheduler_dispatches_total",
			Help: "Total number of scheduled posts dispatched by the local runner",
		},
		[]string{"status"},
	)

	// Cache metrics
	cacheOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postflow_cache_operations_total",
			Help: "Total number of cache lookups",
		},
		[]string{"key_kind", "result"},
	)

	initOnce sync.Once
)

// InitMetrics registers all Prometheus metrics
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			apiRequestsTotal,
			apiRequestDuration,
			agentExecutionsTotal,
			agentExecutionDuration,
			auditLogFailuresTotal,
			schedulerDispatchesTotal,
			cacheOperationsTotal,
		)
	})
}

// MetricsHandler returns an HTTP handler for Prometheus metrics
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest records backend API request metrics
func RecordAPIRequest(method, endpoint, status string, duration time.Duration) {
	apiRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	apiRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordAgentExecution records agent action metrics
func RecordAgentExecution(action, status string, duration time.Duration) {
	agentExecutionsTotal.WithLabelValues(action, status).Inc()
	agentExecutionDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordAuditLogFailure records a swallowed automation log write failure
func RecordAuditLogFailure(sink string) {
	auditLogFailuresTotal.WithLabelValues(sink).Inc()
}

// RecordSchedulerDispatch records a scheduled post dispatch outcome
func RecordSchedulerDispatch(status string) {
	schedulerDispatchesTotal.WithLabelValues(status).Inc()
}

// RecordCacheLookup records a cache hit or miss
func RecordCacheLookup(keyKind, result string) {
	cacheOperationsTotal.WithLabelValues(keyKind, result).Inc()
}
