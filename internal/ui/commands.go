package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/renato0307/sqldesk/internal/domain"
	"github.com/renato0307/sqldesk/internal/services"
	"github.com/renato0307/sqldesk/internal/state"
)

// ExecuteCmd runs an already dispatched query off the UI goroutine.
// Bubble Tea runs each command in its own goroutine, so several queries can be
// in flight while the user keeps editing and switching tabs.
func ExecuteCmd(svc *services.QueryService, d *services.Dispatch) tea.Cmd {
	return func() tea.Msg {
		return QueryResolvedMsg{Resolution: svc.Await(d)}
	}
}

// waitForStoreEvent blocks until the store publishes a change.
// It returns nil once the subscription is closed.
func waitForStoreEvent(events <-chan state.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return StoreChangedMsg{Event: ev}
	}
}

func exportCmd(exporter *services.ExportService, tab domain.QueryTab, format services.ExportFormat) tea.Cmd {
	return func() tea.Msg {
		path, err := exporter.ExportTab(tab, format)
		return ExportedMsg{Err: err, Path: path}
	}
}

func clearHistoryCmd(history *services.HistoryService) tea.Cmd {
	return func() tea.Msg {
		return HistoryClearedMsg{Err: history.Clear(context.Background())}
	}
}
