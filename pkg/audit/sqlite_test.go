package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteLoggerRoundTrip(t *testing.T) {
	logger, err := NewSQLiteLogger(t.TempDir())
	require.NoError(t, err)
	defer func() {
		_ = logger.Close()
	}()

	ctx := context.Background()

	first := NewEntry("user-1", "agent-1", "posting", StatusStarted, map[string]any{
		"content_id": "post-1",
	})
	first.CreatedAt = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	logger.Log(ctx, first)

	second := NewEntry("user-1", "agent-1", "posting", StatusFailed, map[string]any{
		"error": "engine down",
	})
	second.CreatedAt = time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC)
	logger.Log(ctx, second)

	other := NewEntry("user-1", "agent-2", "scheduling", StatusCompleted, nil)
	logger.Log(ctx, other)

	entries, err := logger.Recent(ctx, "agent-1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, StatusFailed, entries[0].Status)
	assert.Equal(t, "engine down", entries[0].ErrorMessage)
	assert.Equal(t, StatusStarted, entries[1].Status)
	assert.Equal(t, "post-1", entries[1].Details["content_id"])
}

func TestSQLiteLoggerLimit(t *testing.T) {
	logger, err := NewSQLiteLogger(t.TempDir())
	require.NoError(t, err)
	defer func() {
		_ = logger.Close()
	}()

	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		entry := NewEntry("u", "agent-1", "posting", StatusCompleted, nil)
		entry.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		logger.Log(ctx, entry)
	}

	entries, err := logger.Recent(ctx, "agent-1", 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestSQLiteLoggerEmpty(t *testing.T) {
	logger, err := NewSQLiteLogger(t.TempDir())
	require.NoError(t, err)
	defer func() {
		_ = logger.Close()
	}()

	entries, err := logger.Recent(context.Background(), "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSQLiteLoggerReopens(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewSQLiteLogger(dir)
	require.NoError(t, err)
	logger.Log(context.Background(), NewEntry("u", "agent-1", "posting", StatusCompleted, nil))
	require.NoError(t, logger.Close())

	reopened, err := NewSQLiteLogger(dir)
	require.NoError(t, err)
	defer func() {
		_ = reopened.Close()
	}()

	entries, err := reopened.Recent(context.Background(), "agent-1", 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
