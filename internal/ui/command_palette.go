package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/renato0307/sqldesk/internal/theme"
)

// maxVisibleItems is the number of actions shown at once
const maxVisibleItems = 8

// CommandPalette is a searchable action list shown over the workspace
type CommandPalette struct {
	actions       []KeyDefinition // Filtered actions
	allActions    []KeyDefinition
	Completed     bool
	filterInput   textinput.Model
	keys          KeyMap
	lastQuery     string
	Result        CommandPaletteResult
	selectedIndex int
	tabTitle      string // Active tab, shown in the header
	width         int
}

// CommandPaletteResult contains the result of the command palette interaction
type CommandPaletteResult struct {
	Action    *KeyDefinition
	Cancelled bool
}

// NewCommandPalette creates a palette listing actions
func NewCommandPalette(actions []KeyDefinition, tabTitle string, keys KeyMap, width int) *CommandPalette {
	ti := textinput.New()
	ti.Prompt = "Filter: "
	ti.PromptStyle = theme.FilterPromptStyle
	ti.Placeholder = "type to filter"
	ti.PlaceholderStyle = theme.MutedStyle
	ti.CharLimit = 50
	ti.Width = 40
	ti.Focus()

	return &CommandPalette{
		actions:     actions,
		allActions:  actions,
		filterInput: ti,
		keys:        keys,
		tabTitle:    tabTitle,
		width:       width,
	}
}

func (cp *CommandPalette) Init() tea.Cmd {
	return textinput.Blink
}

func (cp *CommandPalette) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		cp.width = msg.Width
		return cp, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, cp.keys.Application.ClosePanel.Binding, cp.keys.Application.ForceQuit.Binding):
			cp.Completed = true
			cp.Result.Cancelled = true
			return cp, nil

		case msg.Type == tea.KeyEnter:
			if cp.selectedIndex < len(cp.actions) {
				cp.Completed = true
				cp.Result.Action = &cp.actions[cp.selectedIndex]
			}
			return cp, nil

		case msg.Type == tea.KeyUp:
			if cp.selectedIndex > 0 {
				cp.selectedIndex--
			}
			return cp, nil

		case msg.Type == tea.KeyDown:
			if cp.selectedIndex < len(cp.actions)-1 {
				cp.selectedIndex++
			}
			return cp, nil
		}
	}

	var cmd tea.Cmd
	cp.filterInput, cmd = cp.filterInput.Update(msg)
	cp.filterActions()
	return cp, cmd
}

func (cp *CommandPalette) View() string {
	header := theme.PaletteTitleStyle.Render("Command Palette")
	if cp.tabTitle != "" {
		header += " " + theme.MutedStyle.Render("(tab: "+cp.tabTitle+")")
	}

	var items []string
	helpWidth := cp.maxHelpLen()
	start, end := cp.visibleRange()

	for i := start; i < end; i++ {
		def := cp.actions[i]

		prefix := "  "
		switch {
		case i == cp.selectedIndex:
			prefix = "> "
		case i == start && start > 0:
			prefix = theme.MutedStyle.Render("↑ ")
		case i == end-1 && end < len(cp.actions):
			prefix = theme.MutedStyle.Render("↓ ")
		}

		line := prefix + theme.PaletteItemStyle.Render(padRight(capitalizeFirst(def.Help), helpWidth))
		if binding := cp.shortcut(def); binding != "" {
			line += theme.PaletteShortcutStyle.Render("  " + binding)
		}
		items = append(items, line)
	}

	if len(items) == 0 {
		items = append(items, theme.MutedStyle.Render("  No matching actions"))
	}
	for len(items) < maxVisibleItems {
		items = append(items, "")
	}

	inner := header + "\n\n" + cp.filterInput.View() + "\n\n" + strings.Join(items, "\n")
	return theme.PaletteBorderStyle.Width(cp.paletteWidth()).Render(inner)
}

// shortcut returns the first key bound to def, honouring custom bindings
func (cp *CommandPalette) shortcut(def KeyDefinition) string {
	if binding, ok := cp.keys.byName[def.Name]; ok {
		if keys := binding.Keys(); len(keys) > 0 {
			return keys[0]
		}
	}
	if len(def.Defaults) > 0 {
		return def.Defaults[0]
	}
	return ""
}

// filterActions narrows the list to actions whose help text fuzzy-matches the input
func (cp *CommandPalette) filterActions() {
	query := strings.ToLower(cp.filterInput.Value())
	if query == cp.lastQuery {
		return
	}
	cp.lastQuery = query

	if query == "" {
		cp.actions = cp.allActions
		cp.selectedIndex = 0
		return
	}

	var filtered []KeyDefinition
	for _, def := range cp.allActions {
		if fuzzyMatch(query, def.Help) {
			filtered = append(filtered, def)
		}
	}
	cp.actions = filtered

	if cp.selectedIndex >= len(cp.actions) {
		cp.selectedIndex = 0
	}
}

// fuzzyMatch checks if all characters in query appear in order in target
func fuzzyMatch(query, target string) bool {
	target = strings.ToLower(target)
	queryRunes := []rune(query)
	qi := 0
	for _, c := range target {
		if qi < len(queryRunes) && c == queryRunes[qi] {
			qi++
		}
	}
	return qi == len(queryRunes)
}

// maxHelpLen uses allActions so alignment stays stable while filtering
func (cp *CommandPalette) maxHelpLen() int {
	maxLen := 0
	for _, def := range cp.allActions {
		maxLen = max(maxLen, len(def.Help))
	}
	return maxLen
}

func (cp *CommandPalette) paletteWidth() int {
	if cp.width <= 0 {
		return 60
	}
	return min(cp.width-4, 72)
}

// visibleRange keeps the selected item visible with some context
func (cp *CommandPalette) visibleRange() (int, int) {
	total := len(cp.actions)
	if total <= maxVisibleItems {
		return 0, total
	}

	start := max(cp.selectedIndex-maxVisibleItems/2, 0)
	end := start + maxVisibleItems
	if end > total {
		end = total
		start = end - maxVisibleItems
	}
	return start, end
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
