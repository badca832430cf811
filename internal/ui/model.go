package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/renato0307/sqldesk/internal/config"
	"github.com/renato0307/sqldesk/internal/logging"
	"github.com/renato0307/sqldesk/internal/services"
	"github.com/renato0307/sqldesk/internal/state"
	"github.com/renato0307/sqldesk/internal/theme"
)

type uiState int

const (
	stateEditor uiState = iota
	stateConfirmingClear
	stateHelp
	stateHistory
	statePalette
	stateRenamingTab
)

// showPaletteMsg opens the command palette; it is not itself a palette entry
type showPaletteMsg struct{}

// errLastTab is shown when closing the only remaining tab
var errLastTab = errors.New("the last tab cannot be closed")

// ModelOptions configures a Model
type ModelOptions struct {
	Connection      string
	Context         context.Context // parent of every dispatched query
	DevMode         bool
	ErrorClearDelay time.Duration
	Keys            config.KeyBindingsConfig
	PreviewRows     int
}

// Model is the sqldesk TUI. It renders store snapshots and turns key presses
// into store intents and query dispatches.
type Model struct {
	clearConfirm   *Dialog                  // Clear history confirmation
	clearConfirmed *bool                    // Confirmation value (pointer survives form updates)
	clearReturn    uiState                  // State restored when the confirmation closes
	connection     string                   // Connection profile name shown in the header
	ctx            context.Context          // Parent context for dispatches
	devMode        bool                     // Shows build info in dialog headers
	dispatcher     *ActionDispatcher        // Availability snapshot for the open palette
	editor         textarea.Model           // SQL editor bound to the active tab
	errorManager   *ErrorManager            // Error display and auto-clearing
	events         <-chan state.Event       // Store change notifications
	exporter       *services.ExportService  // CSV/JSON export
	height         int
	help           help.Model               // Bottom key hints
	helpScreen     *Dialog                  // Full shortcut list
	history        *services.HistoryService // History clear/load
	historyPanel   *HistoryPanel            // History browser
	keys           KeyMap
	notice         string                   // Transient informational message
	palette        *CommandPalette
	queries        *services.QueryService   // Execution coordinator
	renameForm     *Dialog                  // Tab rename dialog
	results        *ResultView              // Active tab result
	spinner        spinner.Model
	state          uiState
	store          *state.Store
	unsubscribe    func()
	width          int
}

// NewModel creates the TUI model for one session
func NewModel(
	queries *services.QueryService,
	history *services.HistoryService,
	exporter *services.ExportService,
	opts ModelOptions,
) *Model {
	store := queries.Store()
	events, unsubscribe := store.Subscribe()

	editor := textarea.New()
	editor.Placeholder = "SELECT * FROM cur LIMIT 10"
	editor.ShowLineNumbers = true
	editor.CharLimit = 0
	editor.Focus()

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	m := &Model{
		connection:   opts.Connection,
		ctx:          ctx,
		devMode:      opts.DevMode,
		editor:       editor,
		errorManager: NewErrorManager(opts.ErrorClearDelay),
		events:       events,
		exporter:     exporter,
		help:         help.New(),
		history:      history,
		historyPanel: NewHistoryPanel(),
		keys:         NewKeyMap(opts.Keys),
		queries:      queries,
		results:      NewResultView(opts.PreviewRows),
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.SpinnerStyle)),
		state:        stateEditor,
		store:        store,
		unsubscribe:  unsubscribe,
	}
	m.loadActiveTab()
	return m
}

// Close releases the store subscription
func (m *Model) Close() {
	m.unsubscribe()
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, waitForStoreEvent(m.events))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd, handled := m.handleBackground(msg); handled {
		return m, cmd
	}

	switch m.state {
	case stateEditor:
		return m.updateEditor(msg)
	case stateConfirmingClear:
		return m.updateConfirmingClear(msg)
	case stateHelp:
		return m.updateHelp(msg)
	case stateHistory:
		return m.updateHistory(msg)
	case statePalette:
		return m.updatePalette(msg)
	case stateRenamingTab:
		return m.updateRenamingTab(msg)
	}
	return m, nil
}

// handleBackground processes messages that arrive regardless of the focused view
func (m *Model) handleBackground(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m.forwardToDialog(msg), true

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd, true

	case StoreChangedMsg:
		m.results.SetTab(m.store.ActiveTab(), false)
		var cmd tea.Cmd
		if msg.Event.Kind == state.EventHistoryChanged {
			cmd = m.historyPanel.SetEntries(m.store.History())
		}
		return tea.Batch(cmd, waitForStoreEvent(m.events)), true

	case QueryResolvedMsg:
		return m.handleResolved(msg.Resolution), true

	case ExportedMsg:
		if msg.Err != nil {
			logging.Logger.Warn("Export failed", "error", msg.Err)
			return m.errorManager.SetError(fmt.Errorf("export failed: %w", msg.Err)), true
		}
		return m.setNotice("Exported to " + msg.Path), true

	case HistoryClearedMsg:
		if msg.Err != nil {
			return m.errorManager.SetError(msg.Err), true
		}
		return m.setNotice("History cleared"), true

	case clearErrorMsg:
		m.errorManager.ClearError()
		return nil, true

	case clearNoticeMsg:
		m.notice = ""
		return nil, true
	}
	return nil, false
}

func (m *Model) handleResolved(res services.Resolution) tea.Cmd {
	active := m.store.ActiveTab()
	if res.TabID == active.ID {
		m.results.SetTab(active, res.Applied)
	}

	if !res.TabFound && res.Entry != nil {
		return m.setNotice("Query from a closed tab finished; see history")
	}
	return nil
}

func (m *Model) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if cmd, handled := m.handleAction(msg); handled {
			return m, cmd
		}
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}

	if action := m.actionForKey(keyMsg); action != nil {
		cmd, _ := m.handleAction(action)
		return m, cmd
	}

	if m.results.Focused() {
		if key.Matches(keyMsg, m.keys.Application.ClosePanel.Binding) {
			m.results.Blur()
			return m, m.editor.Focus()
		}
		return m, m.results.Update(msg)
	}

	before := m.editor.Value()
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if after := m.editor.Value(); after != before {
		m.store.SetTabSQL(m.store.ActiveTab().ID, after)
	}
	return m, cmd
}

// actionForKey translates a workspace shortcut into its action message
func (m *Model) actionForKey(msg tea.KeyMsg) tea.Msg {
	switch {
	case key.Matches(msg, m.keys.Application.Quit.Binding, m.keys.Application.ForceQuit.Binding):
		return QuitMsg{}
	case key.Matches(msg, m.keys.Editor.Run.Binding):
		return RunQueryMsg{}
	case key.Matches(msg, m.keys.Tabs.New.Binding):
		return NewTabMsg{}
	case key.Matches(msg, m.keys.Tabs.Close.Binding):
		return CloseTabMsg{}
	case key.Matches(msg, m.keys.Tabs.Next.Binding):
		return CycleTabMsg{Delta: 1}
	case key.Matches(msg, m.keys.Tabs.Prev.Binding):
		return CycleTabMsg{Delta: -1}
	case key.Matches(msg, m.keys.Tabs.Rename.Binding):
		return RenameTabMsg{}
	case key.Matches(msg, m.keys.History.Toggle.Binding):
		return ShowHistoryMsg{}
	case key.Matches(msg, m.keys.Results.ExportCSV.Binding):
		return ExportResultMsg{Format: services.ExportCSV}
	case key.Matches(msg, m.keys.Results.ExportJSON.Binding):
		return ExportResultMsg{Format: services.ExportJSON}
	case key.Matches(msg, m.keys.Application.Help.Binding):
		return ShowHelpMsg{}
	case key.Matches(msg, m.keys.Editor.FocusResults.Binding):
		return FocusResultsMsg{}
	case key.Matches(msg, m.keys.Application.CommandPalette.Binding):
		return showPaletteMsg{}
	}
	return nil
}

// handleAction runs a workspace action, whether it came from a shortcut or
// from the command palette
func (m *Model) handleAction(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case QuitMsg:
		return tea.Quit, true
	case RunQueryMsg:
		return m.runActive(), true
	case NewTabMsg:
		m.store.AddTab()
		m.loadActiveTab()
		return nil, true
	case CloseTabMsg:
		return m.closeActive(), true
	case CycleTabMsg:
		return m.cycleTab(msg.Delta), true
	case RenameTabMsg:
		return m.openRename(), true
	case ShowHistoryMsg:
		return m.openHistory(), true
	case ClearHistoryMsg:
		if len(m.store.History()) == 0 {
			return nil, true
		}
		m.editor.Blur()
		return m.openClearConfirm(stateEditor), true
	case ExportResultMsg:
		return exportCmd(m.exporter, m.store.ActiveTab(), msg.Format), true
	case ShowHelpMsg:
		return m.openHelp(), true
	case FocusResultsMsg:
		if m.results.Focused() {
			m.results.Blur()
			return m.editor.Focus(), true
		}
		m.editor.Blur()
		m.results.Focus()
		return nil, true
	case showPaletteMsg:
		return m.openPalette(), true
	}
	return nil, false
}

// runActive dispatches the editor content for the active tab.
// The tab is marked running before this returns; the backend runs in a command.
func (m *Model) runActive() tea.Cmd {
	tab := m.store.ActiveTab()
	d := m.queries.Dispatch(m.ctx, tab.ID, m.editor.Value())
	m.results.SetTab(m.store.ActiveTab(), false)
	return ExecuteCmd(m.queries, d)
}

func (m *Model) closeActive() tea.Cmd {
	closed, ok, err := m.queries.CloseTab(m.store.ActiveTabIndex())
	if err != nil {
		logging.Logger.Error("Close tab failed", "error", err)
		return m.errorManager.SetError(err)
	}
	if !ok {
		return m.errorManager.SetError(errLastTab)
	}

	m.loadActiveTab()
	if closed.IsRunning {
		return m.setNotice(fmt.Sprintf("Closed %s while its query was running", closed.Title))
	}
	return nil
}

func (m *Model) cycleTab(delta int) tea.Cmd {
	n := m.store.Len()
	next := (m.store.ActiveTabIndex() + delta + n) % n
	if err := m.store.SelectTab(next); err != nil {
		return m.errorManager.SetError(err)
	}
	m.loadActiveTab()
	return nil
}

// loadActiveTab binds the editor and result view to the active tab
func (m *Model) loadActiveTab() {
	tab := m.store.ActiveTab()
	m.editor.SetValue(tab.SQL)
	m.results.SetTab(tab, true)
}

func (m *Model) setNotice(text string) tea.Cmd {
	m.notice = text
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return clearNoticeMsg{}
	})
}

func (m *Model) openRename() tea.Cmd {
	tab := m.store.ActiveTab()
	m.renameForm = NewDialog("Rename Tab", NewTabRenameForm(m.store, tab.ID, tab.Title), m.devMode)
	m.state = stateRenamingTab
	m.editor.Blur()
	return m.renameForm.Init()
}

func (m *Model) updateRenamingTab(msg tea.Msg) (tea.Model, tea.Cmd) {
	updated, cmd := m.renameForm.Update(msg)
	m.renameForm = updated.(*Dialog)

	if content, ok := m.renameForm.Content().(*TabRenameForm); ok && content.Completed {
		result := content.Result()
		m.state = stateEditor
		m.renameForm = nil
		focusCmd := m.editor.Focus()
		if result.Error != nil {
			return m, tea.Batch(focusCmd, m.errorManager.SetError(result.Error))
		}
		return m, focusCmd
	}

	return m, cmd
}

func (m *Model) openHistory() tea.Cmd {
	m.state = stateHistory
	m.editor.Blur()
	return m.historyPanel.SetEntries(m.store.History())
}

func (m *Model) closeHistory() tea.Cmd {
	m.state = stateEditor
	return m.editor.Focus()
}

func (m *Model) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.historyPanel.Filtering() {
		return m, m.historyPanel.Update(msg)
	}

	switch {
	case key.Matches(keyMsg, m.keys.Application.ForceQuit.Binding):
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Application.ClosePanel.Binding, m.keys.History.Toggle.Binding):
		return m, m.closeHistory()

	case key.Matches(keyMsg, m.keys.History.Restore.Binding):
		entry, ok := m.historyPanel.Selected()
		if !ok {
			return m, nil
		}
		m.queries.Restore(entry.SQL)
		m.loadActiveTab()
		return m, m.closeHistory()

	case key.Matches(keyMsg, m.keys.History.Clear.Binding):
		if m.historyPanel.Len() == 0 {
			return m, nil
		}
		return m, m.openClearConfirm(stateHistory)
	}

	return m, m.historyPanel.Update(msg)
}

// openClearConfirm asks before clearing history; returnTo is restored afterwards
func (m *Model) openClearConfirm(returnTo uiState) tea.Cmd {
	confirmed := false
	count := len(m.store.History())
	m.clearConfirmed = &confirmed

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Clear query history?").
				Description(fmt.Sprintf("%d entries will be removed from this session and from disk.", count)).
				Affirmative("Clear").
				Negative("Cancel").
				Value(m.clearConfirmed),
		),
	)
	m.clearConfirm = NewDialog("Clear History", form, m.devMode)
	m.clearReturn = returnTo
	m.state = stateConfirmingClear
	return m.clearConfirm.Init()
}

func (m *Model) updateConfirmingClear(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(keyMsg, m.keys.Application.ClosePanel.Binding, m.keys.Application.ForceQuit.Binding) {
			m.clearConfirm = nil
			m.clearConfirmed = nil
			return m, m.leaveClearConfirm()
		}
	}

	updated, cmd := m.clearConfirm.Update(msg)
	m.clearConfirm = updated.(*Dialog)

	if form, ok := m.clearConfirm.Content().(*huh.Form); ok && form.State == huh.StateCompleted {
		confirmed := *m.clearConfirmed
		m.clearConfirm = nil
		m.clearConfirmed = nil

		logging.Logger.Info("Clear history decision", "confirmed", confirmed)
		focusCmd := m.leaveClearConfirm()
		if confirmed {
			return m, tea.Batch(focusCmd, clearHistoryCmd(m.history))
		}
		return m, focusCmd
	}

	return m, cmd
}

func (m *Model) leaveClearConfirm() tea.Cmd {
	m.state = m.clearReturn
	if m.state == stateEditor {
		return m.editor.Focus()
	}
	return nil
}

func (m *Model) openPalette() tea.Cmd {
	dispatcher := NewActionDispatcher(m.store.ActiveTab(), m.store.Len(), len(m.store.History()))
	m.palette = NewCommandPalette(dispatcher.Actions(), m.store.ActiveTab().Title, m.keys, m.width)
	m.dispatcher = dispatcher
	m.state = statePalette
	m.editor.Blur()
	return m.palette.Init()
}

func (m *Model) updatePalette(msg tea.Msg) (tea.Model, tea.Cmd) {
	updated, cmd := m.palette.Update(msg)
	m.palette = updated.(*CommandPalette)
	if !m.palette.Completed {
		return m, cmd
	}

	result := m.palette.Result
	dispatcher := m.dispatcher
	m.palette = nil
	m.dispatcher = nil
	m.state = stateEditor
	focusCmd := m.editor.Focus()

	if result.Cancelled || result.Action == nil {
		return m, focusCmd
	}

	action := dispatcher.Dispatch(*result.Action)
	if action == nil {
		return m, focusCmd
	}
	logging.Logger.Debug("Palette action selected", "action", result.Action.Name)
	actionCmd, _ := m.handleAction(action)
	return m, tea.Batch(focusCmd, actionCmd)
}

func (m *Model) openHelp() tea.Cmd {
	m.helpScreen = NewDialog("Keyboard Shortcuts", NewHelpScreen(&m.keys), m.devMode)
	m.state = stateHelp
	m.editor.Blur()
	cmd := m.helpScreen.Init()
	m.helpScreen.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
	return cmd
}

func (m *Model) updateHelp(msg tea.Msg) (tea.Model, tea.Cmd) {
	updated, cmd := m.helpScreen.Update(msg)
	m.helpScreen = updated.(*Dialog)

	if content, ok := m.helpScreen.Content().(*HelpScreen); ok && content.Completed {
		m.state = stateEditor
		m.helpScreen = nil
		return m, m.editor.Focus()
	}

	return m, cmd
}

// forwardToDialog passes size changes to the open dialog, if any
func (m *Model) forwardToDialog(msg tea.Msg) tea.Cmd {
	var dialog *Dialog
	switch m.state {
	case stateConfirmingClear:
		dialog = m.clearConfirm
	case stateHelp:
		dialog = m.helpScreen
	case stateRenamingTab:
		dialog = m.renameForm
	case statePalette:
		_, cmd := m.palette.Update(msg)
		return cmd
	}
	if dialog == nil {
		return nil
	}
	_, cmd := dialog.Update(msg)
	return cmd
}

// Layout: header, tab bar, editor (bordered), results, status line, key hints
const chromeLines = 1 + 1 + 2 + 2 + 1

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width

	editorHeight := max(height/3, 3)
	m.editor.SetWidth(max(width-2, 10))
	m.editor.SetHeight(editorHeight)

	m.results.SetSize(width, max(height-editorHeight-chromeLines, 3))
	m.historyPanel.SetSize(width, max(height-4, 5))
}

func (m *Model) View() string {
	switch m.state {
	case stateEditor:
		return m.viewWorkspace()
	case stateHistory:
		return m.renderHeader() + "\n" + m.historyPanel.View() + "\n" + m.help.View(m.keys)
	case stateConfirmingClear:
		if m.clearConfirm != nil {
			return m.clearConfirm.View()
		}
	case stateHelp:
		if m.helpScreen != nil {
			return m.helpScreen.View()
		}
	case statePalette:
		if m.palette != nil {
			return compositeOverlay(m.viewWorkspace(), m.palette.View(), m.width, m.height, anchorTop)
		}
	case stateRenamingTab:
		if m.renameForm != nil {
			return m.renameForm.View()
		}
	}
	return ""
}

func (m *Model) viewWorkspace() string {
	border := theme.EditorBorderStyle
	if m.editor.Focused() {
		border = theme.EditorFocusedBorderStyle
	}

	view := m.renderHeader() + "\n"
	view += renderTabBar(m.store.TabBar(), m.width) + "\n"
	view += border.Render(m.editor.View()) + "\n"
	view += m.results.View(m.spinner.View()) + "\n"
	view += m.renderStatus() + "\n"
	view += m.help.View(m.keys)
	return view
}

func (m *Model) renderHeader() string {
	header := theme.AppNameStyle.Render("sqldesk")
	if m.connection != "" {
		header += theme.MutedStyle.Render(" · " + m.connection)
	}
	if db := m.queries.Database(); db != "" {
		header += theme.MutedStyle.Render(" · " + db)
	}
	return header
}

// renderStatus shows the current error, else a notice, else a rotating tip
func (m *Model) renderStatus() string {
	if m.errorManager.HasError() {
		return theme.ErrorStyle.Render(formatErrorForDisplay(m.errorManager.GetError(), m.width))
	}
	if m.notice != "" {
		return theme.NormalStyle.Render(m.notice)
	}
	tips := GetTips()
	if len(tips) == 0 {
		return ""
	}
	return RenderTip(tips[int(time.Now().Unix()/15)%len(tips)])
}
