// Package audit writes the automation log: one append-only row per agent
// action attempt. Log writes are fire-and-forget; a failed write never
// fails the operation that produced it, it only increments a metric.
package audit

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/postflow-dev/postflow/pkg/api"
	"github.com/postflow-dev/postflow/pkg/observability"
)

// Action statuses recorded in the automation log.
const (
	StatusStarted   = "started"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusError     = "error"
)

// Entry is a single automation log row.
type Entry struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	AgentID      string         `json:"ai_agent_id"`
	ActionType   string         `json:"action_type"`
	Status       string         `json:"status"`
	Details      map[string]any `json:"details,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// NewEntry builds a log entry with a fresh ID and timestamp.
// The error message is lifted out of details["error"] when present,
// matching the shape the dashboard expects.
func NewEntry(userID, agentID, actionType, status string, details map[string]any) *Entry {
	entry := &Entry{
		ID:         uuid.NewString(),
		UserID:     userID,
		AgentID:    agentID,
		ActionType: actionType,
		Status:     status,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}
	if msg, ok := details["error"].(string); ok {
		entry.ErrorMessage = msg
	}
	return entry
}

// Logger records automation log entries.
type Logger interface {
	// Log records an entry. Implementations swallow their own errors.
	Log(ctx context.Context, entry *Entry)
	// Close releases any resources held by the logger.
	Close() error
}

// APILogger forwards entries to the backend's automation log.
type APILogger struct {
	client *api.Client
}

// NewAPILogger creates a backend-forwarding audit logger.
func NewAPILogger(client *api.Client) *APILogger {
	return &APILogger{client: client}
}

// Log sends the entry to the backend. Failures are counted and dropped.
func (l *APILogger) Log(ctx context.Context, entry *Entry) {
	res := l.client.CreateAutomationLog(ctx, entry)
	if !res.Success {
		observability.RecordAuditLogFailure("api")
		log.Printf("Failed to log agent action: %s", res.Error)
	}
}

// Close is a no-op for the API logger.
func (l *APILogger) Close() error {
	return nil
}

// InMemoryLogger stores entries in memory (for testing).
type InMemoryLogger struct {
	entries []Entry
	mu      sync.RWMutex
}

// NewInMemoryLogger creates a new in-memory audit logger.
func NewInMemoryLogger() *InMemoryLogger {
	return &InMemoryLogger{}
}

// Log records the entry.
func (l *InMemoryLogger) Log(ctx context.Context, entry *Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, *entry)
}

// Entries returns a copy of all recorded entries.
func (l *InMemoryLogger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entries := make([]Entry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// Close is a no-op.
func (l *InMemoryLogger) Close() error {
	return nil
}

// NopLogger discards all entries.
type NopLogger struct{}

// Log does nothing.
func (NopLogger) Log(ctx context.Context, entry *Entry) {}

// Close does nothing.
func (NopLogger) Close() error { return nil }

// MultiLogger fans entries out to several loggers.
type MultiLogger []Logger

// Log delivers the entry to every logger.
func (m MultiLogger) Log(ctx context.Context, entry *Entry) {
	for _, l := range m {
		l.Log(ctx, entry)
	}
}

// Close closes every logger, returning the first error.
func (m MultiLogger) Close() error {
	var first error
	for _, l := range m {
		if err := l.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
