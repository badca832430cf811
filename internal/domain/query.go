package domain

import (
	"fmt"
	"strings"
	"time"
)

// EmptyQueryMessage is the error reported for blank SQL without reaching the backend
const EmptyQueryMessage = "Empty query"

// QueryColumn describes one column of a result set
type QueryColumn struct {
	DataType string `json:"data_type"`
	Name     string `json:"name"`
	Nullable bool   `json:"nullable"`
}

// QueryResult is the outcome of one execution.
// When Error is set the result is a failure and carries no columns or rows.
type QueryResult struct {
	Columns         []QueryColumn `json:"columns"`
	Error           string        `json:"error,omitempty"`
	ExecutionTimeMs int64         `json:"execution_time_ms"`
	RowCount        int64         `json:"row_count"`
	Rows            [][]any       `json:"rows"`
}

// NewErrorResult builds the display result for a failed execution
func NewErrorResult(message string) QueryResult {
	if message == "" {
		message = "unknown error"
	}
	return QueryResult{
		Columns: []QueryColumn{},
		Error:   message,
		Rows:    [][]any{},
	}
}

// Failed reports whether the result represents a failure
func (r QueryResult) Failed() bool {
	return r.Error != ""
}

// Clone returns a copy that shares no slices with r
func (r QueryResult) Clone() QueryResult {
	out := r
	out.Columns = append([]QueryColumn(nil), r.Columns...)
	out.Rows = make([][]any, len(r.Rows))
	for i, row := range r.Rows {
		out.Rows[i] = append([]any(nil), row...)
	}
	return out
}

// FormatValue renders a scalar cell value for display
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}

// IsBlankSQL reports whether the text contains nothing but whitespace
func IsBlankSQL(sql string) bool {
	return strings.TrimSpace(sql) == ""
}

// QueryTab is one SQL editing and execution context
type QueryTab struct {
	ID        string
	IsRunning bool
	Result    *QueryResult
	SQL       string
	Title     string
}

// Clone returns a deep copy of the tab
func (t QueryTab) Clone() QueryTab {
	out := t
	if t.Result != nil {
		res := t.Result.Clone()
		out.Result = &res
	}
	return out
}

// DefaultTabTitle returns the sequence label for the n-th tab of a session
func DefaultTabTitle(n int) string {
	return fmt.Sprintf("Query %d", n)
}

// QueryHistoryEntry is an immutable record of one resolved execution
type QueryHistoryEntry struct {
	Database        string    `json:"database"`
	Error           string    `json:"error,omitempty"`
	ExecutedAt      time.Time `json:"executed_at"`
	ExecutionTimeMs int64     `json:"execution_time_ms"`
	ID              string    `json:"id"`
	RowCount        int64     `json:"row_count"`
	SQL             string    `json:"sql"`
	Success         bool      `json:"success"`
	TabID           string    `json:"tab_id"`
}

// SQLPreview returns the SQL collapsed to a single line and cut to maxLen runes
func (e QueryHistoryEntry) SQLPreview(maxLen int) string {
	q := strings.Join(strings.Fields(e.SQL), " ")
	runes := []rune(q)
	if maxLen > 3 && len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return q
}

// TabView is the tab bar projection of a QueryTab
type TabView struct {
	Active    bool
	Closeable bool
	ID        string
	Running   bool
	Title     string
}

// SessionSnapshot is a consistent, detached copy of the session state
type SessionSnapshot struct {
	ActiveTabIndex int
	History        []QueryHistoryEntry
	Revision       uint64
	Tabs           []QueryTab
}

// ActiveTab returns the tab at ActiveTabIndex
func (s SessionSnapshot) ActiveTab() QueryTab {
	return s.Tabs[s.ActiveTabIndex]
}
