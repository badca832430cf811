package ui

import (
	"sort"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/renato0307/sqldesk/internal/services"
)

// KeyDefinition defines the metadata for a configurable key binding.
// All key bindings are defined here as the single source of truth.
type KeyDefinition struct {
	Defaults        []string
	Group           string
	Help            string
	IsPaletteAction bool    // Listed in the command palette
	Msg             tea.Msg // Prototype message sent when picked from the palette
	Name            string
	TipFormat       string
}

// Key groups, in help screen order
const (
	groupEditor  = "Editor"
	groupTabs    = "Tabs"
	groupResults = "Results"
	groupHistory = "History"
	groupApp     = "Application"
)

// AllKeyDefinitions contains all configurable key bindings
var AllKeyDefinitions = []KeyDefinition{
	// Editor keys
	{Name: "run_query", Group: groupEditor, IsPaletteAction: true, Msg: RunQueryMsg{}, Defaults: []string{"ctrl+r", "f5"}, Help: "run query in current tab", TipFormat: "press %s to run the query"},
	{Name: "focus_results", Group: groupEditor, IsPaletteAction: true, Msg: FocusResultsMsg{}, Defaults: []string{"f3"}, Help: "switch focus editor/results", TipFormat: "press %s to scroll through result rows"},

	// Tab keys
	{Name: "close_tab", Group: groupTabs, IsPaletteAction: true, Msg: CloseTabMsg{}, Defaults: []string{"ctrl+w"}, Help: "close tab", TipFormat: "press %s to close a tab; queries still running keep writing history"},
	{Name: "new_tab", Group: groupTabs, IsPaletteAction: true, Msg: NewTabMsg{}, Defaults: []string{"ctrl+t"}, Help: "new tab", TipFormat: "press %s to open another query tab"},
	{Name: "next_tab", Group: groupTabs, IsPaletteAction: true, Msg: CycleTabMsg{Delta: 1}, Defaults: []string{"alt+right", "ctrl+pgdown"}, Help: "next tab"},
	{Name: "prev_tab", Group: groupTabs, IsPaletteAction: true, Msg: CycleTabMsg{Delta: -1}, Defaults: []string{"alt+left", "ctrl+pgup"}, Help: "previous tab"},
	{Name: "rename_tab", Group: groupTabs, IsPaletteAction: true, Msg: RenameTabMsg{}, Defaults: []string{"f2"}, Help: "rename tab", TipFormat: "press %s to rename the current tab"},

	// Result keys
	{Name: "export_csv", Group: groupResults, IsPaletteAction: true, Msg: ExportResultMsg{Format: services.ExportCSV}, Defaults: []string{"f6"}, Help: "export result as CSV", TipFormat: "press %s to export the result as CSV"},
	{Name: "export_json", Group: groupResults, IsPaletteAction: true, Msg: ExportResultMsg{Format: services.ExportJSON}, Defaults: []string{"f7"}, Help: "export result as JSON"},

	// History keys
	{Name: "clear_history", Group: groupHistory, IsPaletteAction: true, Msg: ClearHistoryMsg{}, Defaults: []string{"D"}, Help: "clear history (in history panel)"},
	{Name: "history", Group: groupHistory, IsPaletteAction: true, Msg: ShowHistoryMsg{}, Defaults: []string{"ctrl+o", "f4"}, Help: "toggle history panel", TipFormat: "press %s to browse and restore past queries"},
	{Name: "restore", Group: groupHistory, Defaults: []string{"enter"}, Help: "restore SQL into current tab"},

	// Application keys
	{Name: "command_palette", Group: groupApp, Defaults: []string{"ctrl+p"}, Help: "open command palette", TipFormat: "press %s to search every action"},
	{Name: "close_panel", Group: groupApp, Defaults: []string{"esc"}, Help: "close panel or dialog"},
	{Name: "force_quit", Group: groupApp, Defaults: []string{"ctrl+c"}, Help: "force quit"},
	{Name: "help", Group: groupApp, IsPaletteAction: true, Msg: ShowHelpMsg{}, Defaults: []string{"f1"}, Help: "show keyboard shortcuts", TipFormat: "press %s to see all shortcuts"},
	{Name: "quit", Group: groupApp, IsPaletteAction: true, Msg: QuitMsg{}, Defaults: []string{"ctrl+q"}, Help: "exit application"},
}

var (
	defaultBindingsCache map[string][]string
	defaultBindingsOnce  sync.Once

	keyDefinitionsMap     map[string]KeyDefinition
	keyDefinitionsMapOnce sync.Once

	validKeyNames     []string
	validKeyNamesOnce sync.Once
)

// GetDefaultKeyBindings returns the default key bindings as a map.
// The result is cached after the first call.
func GetDefaultKeyBindings() map[string][]string {
	defaultBindingsOnce.Do(func() {
		defaultBindingsCache = make(map[string][]string, len(AllKeyDefinitions))
		for _, def := range AllKeyDefinitions {
			defaultBindingsCache[def.Name] = def.Defaults
		}
	})
	return defaultBindingsCache
}

// GetKeyDefinition returns the definition for a key by name.
// Returns nil if not found.
func GetKeyDefinition(name string) *KeyDefinition {
	keyDefinitionsMapOnce.Do(func() {
		keyDefinitionsMap = make(map[string]KeyDefinition, len(AllKeyDefinitions))
		for _, def := range AllKeyDefinitions {
			keyDefinitionsMap[def.Name] = def
		}
	})
	if def, ok := keyDefinitionsMap[name]; ok {
		return &def
	}
	return nil
}

// GetPaletteActions returns the definitions listed in the command palette
func GetPaletteActions() []KeyDefinition {
	var actions []KeyDefinition
	for _, def := range AllKeyDefinitions {
		if def.IsPaletteAction {
			actions = append(actions, def)
		}
	}
	return actions
}

// GetValidKeyNames returns all valid key binding names in sorted order
func GetValidKeyNames() []string {
	validKeyNamesOnce.Do(func() {
		validKeyNames = make([]string, len(AllKeyDefinitions))
		for i, def := range AllKeyDefinitions {
			validKeyNames[i] = def.Name
		}
		sort.Strings(validKeyNames)
	})
	return validKeyNames
}

// IsValidKeyName checks if a name is a valid key binding name
func IsValidKeyName(name string) bool {
	return GetKeyDefinition(name) != nil
}
