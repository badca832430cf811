package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/renato0307/sqldesk/internal/theme"
)

// HelpScreen displays keyboard shortcuts organized by group
type HelpScreen struct {
	Completed   bool
	content     string
	initialized bool
	keys        *KeyMap
	viewport    viewport.Model
}

// renderShortcut renders a single shortcut line with key and description
func renderShortcut(key, description string) string {
	return theme.HelpKeyStyle.Render(key) + theme.HelpDescStyle.Render(description) + "\n"
}

// renderBinding renders a single shortcut line from a key binding
func renderBinding(binding key.Binding) string {
	help := binding.Help()
	return renderShortcut(help.Key, help.Desc)
}

// buildHelpContent renders every key group in definition order
func buildHelpContent(keys *KeyMap) string {
	groups := []struct {
		name     string
		bindings []key.Binding
	}{
		{groupEditor, []key.Binding{keys.Editor.Run.Binding, keys.Editor.FocusResults.Binding}},
		{groupTabs, []key.Binding{keys.Tabs.New.Binding, keys.Tabs.Close.Binding, keys.Tabs.Next.Binding, keys.Tabs.Prev.Binding, keys.Tabs.Rename.Binding}},
		{groupResults, []key.Binding{keys.Results.ExportCSV.Binding, keys.Results.ExportJSON.Binding}},
		{groupHistory, []key.Binding{keys.History.Toggle.Binding, keys.History.Restore.Binding, keys.History.Clear.Binding}},
		{groupApp, []key.Binding{keys.Application.CommandPalette.Binding, keys.Application.Help.Binding, keys.Application.ClosePanel.Binding, keys.Application.Quit.Binding, keys.Application.ForceQuit.Binding}},
	}

	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(theme.HelpGroupStyle.Render(g.name) + "\n")
		for _, binding := range g.bindings {
			b.WriteString(renderBinding(binding))
		}
	}

	b.WriteString("\n" + theme.HelpGroupStyle.Render("Indicators") + "\n")
	b.WriteString(renderShortcut("●", "query running in tab"))
	b.WriteString(renderShortcut("✓ / ✗", "history entry succeeded / failed"))
	b.WriteString(renderShortcut("NULL", "database NULL value"))

	return b.String()
}

// NewHelpScreen creates a new help screen component
func NewHelpScreen(keys *KeyMap) *HelpScreen {
	return &HelpScreen{
		content:  buildHelpContent(keys),
		keys:     keys,
		viewport: viewport.New(0, 0),
	}
}

// Init implements tea.Model
func (h *HelpScreen) Init() tea.Cmd {
	h.viewport.KeyMap.Up.SetKeys("up", "k")
	h.viewport.KeyMap.Down.SetKeys("down", "j")
	return nil
}

// Update implements tea.Model
func (h *HelpScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Dialog header: 4 lines, footer: 2 lines
		h.viewport.Width = msg.Width
		h.viewport.Height = max(msg.Height-6, 5)
		h.viewport.SetContent(h.content)
		h.initialized = true
		return h, nil

	case tea.KeyMsg:
		if key.Matches(msg, h.keys.Application.ClosePanel.Binding, h.keys.Application.Help.Binding, h.keys.Application.Quit.Binding) {
			h.Completed = true
			return h, nil
		}
	}

	var cmd tea.Cmd
	h.viewport, cmd = h.viewport.Update(msg)
	return h, cmd
}

// View implements tea.Model
func (h *HelpScreen) View() string {
	if !h.initialized {
		return "Loading help..."
	}

	footer := theme.HelpStyle.Render("Press " + h.keys.Application.ClosePanel.Binding.Help().Key + " to close • ↑↓/jk/PgUp/PgDn to scroll")
	return h.viewport.View() + "\n\n" + footer
}
