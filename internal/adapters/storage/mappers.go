package storage

import (
	"github.com/renato0307/sqldesk/internal/domain"
)

// historyModelToDomain converts a HistoryEntryModel (GORM) to domain.QueryHistoryEntry
func historyModelToDomain(m HistoryEntryModel) domain.QueryHistoryEntry {
	return domain.QueryHistoryEntry{
		Database:        m.Database,
		Error:           m.Error,
		ExecutedAt:      m.ExecutedAt,
		ExecutionTimeMs: m.ExecutionTimeMs,
		ID:              m.ID,
		RowCount:        m.RowCount,
		SQL:             m.SQL,
		Success:         m.Success,
		TabID:           m.TabID,
	}
}

// domainToHistoryModel converts a domain.QueryHistoryEntry to HistoryEntryModel (GORM).
// seq preserves append order for entries resolved within the same clock tick.
func domainToHistoryModel(e domain.QueryHistoryEntry, seq uint64) HistoryEntryModel {
	return HistoryEntryModel{
		Database:        e.Database,
		Error:           e.Error,
		ExecutedAt:      e.ExecutedAt.UTC(),
		ExecutionTimeMs: e.ExecutionTimeMs,
		ID:              e.ID,
		RowCount:        e.RowCount,
		Seq:             seq,
		SQL:             e.SQL,
		Success:         e.Success,
		TabID:           e.TabID,
	}
}
