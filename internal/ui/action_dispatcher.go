package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/renato0307/sqldesk/internal/domain"
)

// ActionDispatcher maps key definitions to action messages.
// It knows which actions apply to the current workspace so the palette
// never offers something that would only produce an error.
type ActionDispatcher struct {
	hasHistory bool
	hasResult  bool
	tabCount   int
}

// NewActionDispatcher creates a dispatcher for the active tab and history state
func NewActionDispatcher(active domain.QueryTab, tabCount, historyLen int) *ActionDispatcher {
	return &ActionDispatcher{
		hasHistory: historyLen > 0,
		hasResult:  active.Result != nil && !active.Result.Failed(),
		tabCount:   tabCount,
	}
}

// Available reports whether def can be dispatched now
func (d *ActionDispatcher) Available(def KeyDefinition) bool {
	if def.Msg == nil {
		return false
	}
	switch def.Msg.(type) {
	case ExportResultMsg:
		return d.hasResult
	case ClearHistoryMsg:
		return d.hasHistory
	case CloseTabMsg, CycleTabMsg:
		return d.tabCount > 1
	}
	return true
}

// Actions returns the palette actions available now
func (d *ActionDispatcher) Actions() []KeyDefinition {
	var actions []KeyDefinition
	for _, def := range GetPaletteActions() {
		if d.Available(def) {
			actions = append(actions, def)
		}
	}
	return actions
}

// Dispatch returns the message for def, or nil if the action does not apply
func (d *ActionDispatcher) Dispatch(def KeyDefinition) tea.Msg {
	if !d.Available(def) {
		return nil
	}
	return def.Msg
}
