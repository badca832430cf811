package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/renato0307/sqldesk/internal/domain"
	"github.com/renato0307/sqldesk/internal/theme"
)

const historyPreviewLen = 80

// historyItem adapts a history entry to list.DefaultItem
type historyItem struct {
	entry domain.QueryHistoryEntry
}

func (i historyItem) Title() string {
	mark := theme.OutcomeStyle(i.entry.Success).Render(outcomeMark(i.entry.Success))
	return mark + " " + i.entry.SQLPreview(historyPreviewLen)
}

func (i historyItem) Description() string {
	when := i.entry.ExecutedAt.Local().Format(time.DateTime)
	if !i.entry.Success {
		return fmt.Sprintf("%s · %s · %s", when, i.entry.Database, i.entry.Error)
	}
	return fmt.Sprintf("%s · %s · %d rows · %d ms", when, i.entry.Database, i.entry.RowCount, i.entry.ExecutionTimeMs)
}

func (i historyItem) FilterValue() string {
	return i.entry.SQL
}

func outcomeMark(success bool) string {
	if success {
		return "✓"
	}
	return "✗"
}

// HistoryPanel lists past executions, newest at the top
type HistoryPanel struct {
	list list.Model
	size int
}

// NewHistoryPanel creates an empty history panel
func NewHistoryPanel() *HistoryPanel {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Query History"
	l.SetShowHelp(false)
	l.Styles.Title = theme.TitleStyle
	return &HistoryPanel{list: l}
}

// SetEntries replaces the listed entries; entries come oldest first
func (p *HistoryPanel) SetEntries(entries []domain.QueryHistoryEntry) tea.Cmd {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[len(entries)-1-i] = historyItem{entry: e}
	}
	p.size = len(items)
	return p.list.SetItems(items)
}

// SetSize sets the panel dimensions
func (p *HistoryPanel) SetSize(width, height int) {
	p.list.SetSize(width, height)
}

// Len returns the number of listed entries
func (p *HistoryPanel) Len() int {
	return p.size
}

// Selected returns the highlighted entry
func (p *HistoryPanel) Selected() (domain.QueryHistoryEntry, bool) {
	item, ok := p.list.SelectedItem().(historyItem)
	if !ok {
		return domain.QueryHistoryEntry{}, false
	}
	return item.entry, true
}

// Filtering reports whether the filter input is capturing keys
func (p *HistoryPanel) Filtering() bool {
	return p.list.FilterState() == list.Filtering
}

// Update forwards navigation and filtering keys to the list
func (p *HistoryPanel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return cmd
}

// View renders the panel
func (p *HistoryPanel) View() string {
	if p.size == 0 {
		return theme.TitleStyle.Render("Query History") + "\n\n" + theme.MutedStyle.Render("No queries executed yet")
	}
	return p.list.View()
}
