package ui

import (
	"github.com/renato0307/sqldesk/internal/services"
	"github.com/renato0307/sqldesk/internal/state"
)

// QueryResolvedMsg is sent when a dispatched query has resolved.
// The store already reflects the resolution when this arrives.
type QueryResolvedMsg struct {
	Resolution services.Resolution
}

// StoreChangedMsg is sent when the session store publishes a change
type StoreChangedMsg struct {
	Event state.Event
}

// ExportedMsg is sent after a result export finished
type ExportedMsg struct {
	Err  error
	Path string
}

// HistoryClearedMsg is sent after the history was cleared
type HistoryClearedMsg struct {
	Err error
}

// clearErrorMsg is sent after the error clear delay to trigger error clearing
type clearErrorMsg struct{}

// clearNoticeMsg is sent after the notice clear delay
type clearNoticeMsg struct{}

// Action messages, sent by the command palette and handled like the
// corresponding key press

type RunQueryMsg struct{}

type FocusResultsMsg struct{}

type NewTabMsg struct{}

type CloseTabMsg struct{}

// CycleTabMsg moves the active tab by Delta positions, wrapping around
type CycleTabMsg struct {
	Delta int
}

type RenameTabMsg struct{}

// ExportResultMsg exports the active tab's result
type ExportResultMsg struct {
	Format services.ExportFormat
}

type ShowHistoryMsg struct{}

type ClearHistoryMsg struct{}

type ShowHelpMsg struct{}

type QuitMsg struct{}
