package ports

import (
	"context"

	"github.com/renato0307/sqldesk/internal/domain"
)

// HistoryWriter persists resolved executions
type HistoryWriter interface {
	Append(ctx context.Context, entry domain.QueryHistoryEntry) error
	Clear(ctx context.Context) error
}

// HistoryReader reads persisted executions
type HistoryReader interface {
	// List returns up to limit most recent entries, oldest first. limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]domain.QueryHistoryEntry, error)
}

// HistoryRepository is the composite interface
type HistoryRepository interface {
	HistoryReader
	HistoryWriter
	Close() error
}
