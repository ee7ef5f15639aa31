package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/postflow-dev/postflow/pkg/observability"
)

// SQLiteLogger mirrors the automation log into a local database so the CLI
// can show history without a backend round trip.
type SQLiteLogger struct {
	db *sql.DB
}

// NewSQLiteLogger opens (and migrates) the local log database under dir.
func NewSQLiteLogger(dir string) (*SQLiteLogger, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log dir: %w", err)
	}

	dbPath := filepath.Join(dir, "automation_logs.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("failed to open log db: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS automation_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		ai_agent_id TEXT NOT NULL,
		action_type TEXT NOT NULL,
		status TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '{}',
		error_message TEXT,
		created_at DATETIME NOT NULL
	)`
	if _, err := db.Exec(ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate log db: %w", err)
	}

	return &SQLiteLogger{db: db}, nil
}

// Log inserts the entry. Failures are counted and dropped.
func (l *SQLiteLogger) Log(ctx context.Context, entry *Entry) {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		details = []byte("{}")
	}

	_, err = l.db.ExecContext(ctx,
		`INSERT INTO automation_logs (id, user_id, ai_agent_id, action_type, status, details, error_message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.AgentID, entry.ActionType, entry.Status,
		string(details), entry.ErrorMessage, entry.CreatedAt,
	)
	if err != nil {
		observability.RecordAuditLogFailure("sqlite")
		log.Printf("Failed to mirror agent action locally: %v", err)
	}
}

// Recent returns the newest entries for an agent, most recent first.
func (l *SQLiteLogger) Recent(ctx context.Context, agentID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT id, user_id, ai_agent_id, action_type, status, details, error_message, created_at
		 FROM automation_logs WHERE ai_agent_id = ?
		 ORDER BY created_at DESC LIMIT ?`,
		agentID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var details string
		var errMsg sql.NullString
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.AgentID, &entry.ActionType,
			&entry.Status, &details, &errMsg, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan log row: %w", err)
		}
		if err := json.Unmarshal([]byte(details), &entry.Details); err != nil {
			entry.Details = nil
		}
		entry.ErrorMessage = errMsg.String
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (l *SQLiteLogger) Close() error {
	return l.db.Close()
}
