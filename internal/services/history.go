package services

import (
	"context"
	"fmt"

	"github.com/renato0307/sqldesk/internal/domain"
	"github.com/renato0307/sqldesk/internal/logging"
	"github.com/renato0307/sqldesk/internal/ports"
	"github.com/renato0307/sqldesk/internal/state"
)

// HistoryService keeps the in-memory history log and its persisted copy in step
type HistoryService struct {
	repo  ports.HistoryRepository
	store *state.Store
}

// NewHistoryService creates a new HistoryService. repo may be nil when
// persistence is disabled.
func NewHistoryService(store *state.Store, repo ports.HistoryRepository) *HistoryService {
	return &HistoryService{
		repo:  repo,
		store: store,
	}
}

// Load seeds the store with the most recent persisted entries
func (s *HistoryService) Load(ctx context.Context) (int, error) {
	if s.repo == nil {
		return 0, nil
	}

	entries, err := s.repo.List(ctx, s.store.HistoryLimit())
	if err != nil {
		return 0, fmt.Errorf("failed to load query history: %w", err)
	}

	s.store.LoadHistory(entries)
	logging.Logger.Info("Query history loaded", "entries", len(entries))
	return len(entries), nil
}

// List returns the persisted history when available, otherwise the session log
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.QueryHistoryEntry, error) {
	if s.repo != nil {
		entries, err := s.repo.List(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list query history: %w", err)
		}
		return entries, nil
	}

	entries := s.store.History()
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

// Clear resets the session log and the persisted history
func (s *HistoryService) Clear(ctx context.Context) error {
	s.store.ClearHistory()

	if s.repo == nil {
		return nil
	}
	if err := s.repo.Clear(ctx); err != nil {
		logging.Logger.Error("Failed to clear persisted history", "error", err)
		return fmt.Errorf("failed to clear query history: %w", err)
	}

	logging.Logger.Info("Query history cleared")
	return nil
}
