package state

import "github.com/renato0307/sqldesk/internal/domain"

// DefaultHistoryLimit is the number of history entries kept when no limit is configured
const DefaultHistoryLimit = 500

// History is an append-only log of resolved executions, oldest first.
// With a positive limit it behaves as a ring buffer that evicts the oldest entry.
type History struct {
	buf   []domain.QueryHistoryEntry
	limit int
	size  int
	start int
}

// NewHistory creates a history log. A limit <= 0 means unbounded.
func NewHistory(limit int) *History {
	h := &History{limit: limit}
	if limit > 0 {
		h.buf = make([]domain.QueryHistoryEntry, limit)
	}
	return h
}

// Append adds an entry at the newest end and reports whether an old entry was evicted
func (h *History) Append(entry domain.QueryHistoryEntry) bool {
	if h.limit <= 0 {
		h.buf = append(h.buf, entry)
		h.size++
		return false
	}

	if h.size < h.limit {
		h.buf[(h.start+h.size)%h.limit] = entry
		h.size++
		return false
	}

	// Full: overwrite the oldest slot and advance the start
	h.buf[h.start] = entry
	h.start = (h.start + 1) % h.limit
	return true
}

// Entries returns a copy of all entries, oldest first
func (h *History) Entries() []domain.QueryHistoryEntry {
	out := make([]domain.QueryHistoryEntry, h.size)
	if h.limit <= 0 {
		copy(out, h.buf)
		return out
	}
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.start+i)%h.limit]
	}
	return out
}

// Len returns the number of entries held
func (h *History) Len() int {
	return h.size
}

// Limit returns the configured capacity (0 for unbounded)
func (h *History) Limit() int {
	if h.limit < 0 {
		return 0
	}
	return h.limit
}

// Clear drops every entry
func (h *History) Clear() {
	h.start = 0
	h.size = 0
	if h.limit <= 0 {
		h.buf = nil
		return
	}
	h.buf = make([]domain.QueryHistoryEntry, h.limit)
}
