package state

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renato0307/sqldesk/internal/domain"
)

func entryIDs(entries []domain.QueryHistoryEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

func TestHistory_Append(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		appends  int
		expected []string
		evicted  int
	}{
		{"unbounded keeps everything", 0, 4, []string{"e1", "e2", "e3", "e4"}, 0},
		{"negative limit is unbounded", -1, 3, []string{"e1", "e2", "e3"}, 0},
		{"under the limit", 5, 3, []string{"e1", "e2", "e3"}, 0},
		{"exactly at the limit", 3, 3, []string{"e1", "e2", "e3"}, 0},
		{"wraps around", 3, 7, []string{"e5", "e6", "e7"}, 4},
		{"limit of one", 1, 3, []string{"e3"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory(tt.limit)
			evicted := 0
			for i := 1; i <= tt.appends; i++ {
				if h.Append(domain.QueryHistoryEntry{ID: fmt.Sprintf("e%d", i)}) {
					evicted++
				}
			}

			assert.Equal(t, tt.expected, entryIDs(h.Entries()))
			assert.Equal(t, len(tt.expected), h.Len())
			assert.Equal(t, tt.evicted, evicted)
		})
	}
}

func TestHistory_EntriesAreCopies(t *testing.T) {
	h := NewHistory(2)
	h.Append(domain.QueryHistoryEntry{ID: "e1", SQL: "SELECT 1"})

	entries := h.Entries()
	entries[0].SQL = "changed"

	assert.Equal(t, "SELECT 1", h.Entries()[0].SQL, "entries are immutable once recorded")
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(2)
	h.Append(domain.QueryHistoryEntry{ID: "e1"})
	h.Append(domain.QueryHistoryEntry{ID: "e2"})
	h.Append(domain.QueryHistoryEntry{ID: "e3"})

	h.Clear()
	require.Equal(t, 0, h.Len())

	h.Append(domain.QueryHistoryEntry{ID: "e4"})
	assert.Equal(t, []string{"e4"}, entryIDs(h.Entries()))
	assert.Equal(t, 2, h.Limit())
}
