package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renato0307/sqldesk/internal/domain"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func entry(i int) domain.QueryHistoryEntry {
	return domain.QueryHistoryEntry{
		Database:        "megadb",
		ExecutedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		ExecutionTimeMs: int64(i),
		ID:              fmt.Sprintf("h%d", i),
		RowCount:        int64(i * 10),
		SQL:             fmt.Sprintf("SELECT %d", i),
		Success:         i%2 == 0,
		TabID:           "t1",
	}
}

func TestSQLiteRepository_AppendAndList(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.Append(ctx, entry(i)))
	}

	entries, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "h1", entries[0].ID)
	assert.Equal(t, "h3", entries[2].ID)
	assert.Equal(t, "SELECT 2", entries[1].SQL)
	assert.Equal(t, int64(20), entries[1].RowCount)
	assert.True(t, entries[1].Success)
	assert.False(t, entries[0].Success)
	assert.Equal(t, "megadb", entries[0].Database)
	assert.True(t, entries[0].ExecutedAt.Equal(entry(1).ExecutedAt))
}

func TestSQLiteRepository_ListLimitKeepsNewest(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Append(ctx, entry(i)))
	}

	entries, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "h4", entries[0].ID)
	assert.Equal(t, "h5", entries[1].ID)
}

func TestSQLiteRepository_ErrorIsStored(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	e := entry(1)
	e.Error = "relation does not exist"
	require.NoError(t, repo.Append(ctx, e))

	entries, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "relation does not exist", entries[0].Error)
}

func TestSQLiteRepository_DuplicateIDFails(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, entry(1)))
	assert.Error(t, repo.Append(ctx, entry(1)))
}

func TestSQLiteRepository_Clear(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, entry(1)))
	require.NoError(t, repo.Clear(ctx))

	entries, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Sequence restarts cleanly after a clear
	require.NoError(t, repo.Append(ctx, entry(2)))
	entries, err = repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "h2", entries[0].ID)
}

func TestSQLiteRepository_ReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	ctx := context.Background()

	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, entry(1)))
	require.NoError(t, repo.Close())

	repo, err = NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()

	entries, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
