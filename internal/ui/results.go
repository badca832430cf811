package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/renato0307/sqldesk/internal/domain"
	"github.com/renato0307/sqldesk/internal/theme"
)

// DefaultPreviewRows is the number of rows rendered per result
const DefaultPreviewRows = 1000

const maxColumnWidth = 40

// ResultView renders the latest result of the active tab
type ResultView struct {
	previewRows int
	result      *domain.QueryResult
	running     bool
	tabID       string
	table       table.Model
	width       int
}

// NewResultView creates a result view that renders at most previewRows rows
func NewResultView(previewRows int) *ResultView {
	if previewRows <= 0 {
		previewRows = DefaultPreviewRows
	}

	t := table.New(table.WithFocused(false))
	styles := table.DefaultStyles()
	styles.Header = theme.TableHeaderStyle
	styles.Cell = theme.TableCellStyle
	styles.Selected = theme.TableSelectedStyle
	t.SetStyles(styles)

	return &ResultView{
		previewRows: previewRows,
		table:       t,
	}
}

// SetTab shows the tab's running state. The table is rebuilt when the tab
// changed or refresh is set, so scrolling survives unrelated store updates.
func (r *ResultView) SetTab(tab domain.QueryTab, refresh bool) {
	r.running = tab.IsRunning
	if !refresh && tab.ID == r.tabID {
		return
	}
	r.tabID = tab.ID
	r.result = tab.Result

	// Rows must never be wider than the column set, so clear them first
	r.table.SetRows(nil)
	if tab.Result == nil || tab.Result.Failed() {
		r.table.SetColumns(nil)
		return
	}

	columns, rows := buildTable(*tab.Result, r.previewRows)
	r.table.SetColumns(columns)
	r.table.SetRows(rows)
	r.table.GotoTop()
}

// SetSize sets the available area for the result table
func (r *ResultView) SetSize(width, height int) {
	r.width = width
	r.table.SetWidth(width)
	// One line for the summary header
	r.table.SetHeight(max(height-1, 3))
}

// Focus gives the table keyboard focus for scrolling
func (r *ResultView) Focus() { r.table.Focus() }

// Blur removes keyboard focus from the table
func (r *ResultView) Blur() { r.table.Blur() }

// Focused reports whether the table has focus
func (r *ResultView) Focused() bool { return r.table.Focused() }

// Update forwards navigation keys to the table
func (r *ResultView) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	r.table, cmd = r.table.Update(msg)
	return cmd
}

// View renders the summary line and the table, or the error, or a placeholder
func (r *ResultView) View(spinner string) string {
	switch {
	case r.running:
		return theme.ResultHeaderStyle.Render(spinner + " Running query...")
	case r.result == nil:
		return theme.MutedStyle.Render("Run a query to see results")
	case r.result.Failed():
		return formatResultError(r.result.Error, r.width)
	}
	return summaryLine(*r.result, r.previewRows) + "\n" + r.table.View()
}

// summaryLine reports row count and execution time
func summaryLine(result domain.QueryResult, previewRows int) string {
	if len(result.Columns) == 0 {
		return theme.ResultHeaderStyle.Render(fmt.Sprintf("%d rows affected · %d ms", result.RowCount, result.ExecutionTimeMs))
	}
	line := fmt.Sprintf("%d rows · %d ms", result.RowCount, result.ExecutionTimeMs)
	if int64(len(result.Rows)) > int64(previewRows) {
		line += fmt.Sprintf(" · showing first %d", previewRows)
	} else if result.RowCount > int64(len(result.Rows)) {
		line += fmt.Sprintf(" · showing first %d", len(result.Rows))
	}
	return theme.ResultHeaderStyle.Render(line)
}

func formatResultError(message string, width int) string {
	return theme.ErrorStyle.Render(wrapMessage(errorPrefix, message, max(width, 20), 6))
}

// buildTable converts a result to table columns and at most limit rows
func buildTable(result domain.QueryResult, limit int) ([]table.Column, []table.Row) {
	n := min(len(result.Rows), limit)

	columns := make([]table.Column, len(result.Columns))
	for i, c := range result.Columns {
		columns[i] = table.Column{Title: c.Name, Width: lipgloss.Width(c.Name)}
	}

	rows := make([]table.Row, n)
	for r := 0; r < n; r++ {
		src := result.Rows[r]
		row := make(table.Row, len(columns))
		for c := range columns {
			cell := ""
			if c < len(src) {
				cell = domain.FormatValue(src[c])
			}
			row[c] = cell
			columns[c].Width = max(columns[c].Width, lipgloss.Width(cell))
		}
		rows[r] = row
	}

	for i := range columns {
		columns[i].Width = min(max(columns[i].Width, 4), maxColumnWidth)
	}
	return columns, rows
}
