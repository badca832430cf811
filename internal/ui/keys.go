package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/renato0307/sqldesk/internal/config"
)

// KeyMap contains all keyboard shortcuts organized by context
type KeyMap struct {
	Application ApplicationKeys
	Editor      EditorKeys
	History     HistoryKeys
	Results     ResultKeys
	Tabs        TabKeys

	byName map[string]key.Binding
}

// ApplicationKeys defines key bindings for application-level actions
type ApplicationKeys struct {
	ClosePanel     KeyWithTip
	CommandPalette KeyWithTip
	ForceQuit      KeyWithTip
	Help           KeyWithTip
	Quit           KeyWithTip
}

// EditorKeys defines key bindings active while editing SQL
type EditorKeys struct {
	FocusResults KeyWithTip
	Run          KeyWithTip
}

// HistoryKeys defines key bindings for the history panel
type HistoryKeys struct {
	Clear   KeyWithTip
	Restore KeyWithTip
	Toggle  KeyWithTip
}

// ResultKeys defines key bindings for result actions
type ResultKeys struct {
	ExportCSV  KeyWithTip
	ExportJSON KeyWithTip
}

// TabKeys defines key bindings for tab management
type TabKeys struct {
	Close  KeyWithTip
	New    KeyWithTip
	Next   KeyWithTip
	Prev   KeyWithTip
	Rename KeyWithTip
}

// NewKeyMap creates a new KeyMap with all key bindings initialized.
// Pass nil for customKeys to use default bindings.
func NewKeyMap(customKeys config.KeyBindingsConfig) KeyMap {
	defaults := GetDefaultKeyBindings()
	byName := make(map[string]key.Binding, len(AllKeyDefinitions))
	b := func(name string) KeyWithTip {
		k := buildBinding(name, defaults, customKeys)
		byName[name] = k.Binding
		return k
	}

	return KeyMap{
		byName: byName,
		Application: ApplicationKeys{
			ClosePanel:     b("close_panel"),
			CommandPalette: b("command_palette"),
			ForceQuit:      b("force_quit"),
			Help:           b("help"),
			Quit:           b("quit"),
		},
		Editor: EditorKeys{
			FocusResults: b("focus_results"),
			Run:          b("run_query"),
		},
		History: HistoryKeys{
			Clear:   b("clear_history"),
			Restore: b("restore"),
			Toggle:  b("history"),
		},
		Results: ResultKeys{
			ExportCSV:  b("export_csv"),
			ExportJSON: b("export_json"),
		},
		Tabs: TabKeys{
			Close:  b("close_tab"),
			New:    b("new_tab"),
			Next:   b("next_tab"),
			Prev:   b("prev_tab"),
			Rename: b("rename_tab"),
		},
	}
}

// ShortHelp returns the bindings shown in the bottom bar (help.KeyMap)
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Editor.Run.Binding,
		k.Tabs.New.Binding,
		k.Tabs.Close.Binding,
		k.Tabs.Next.Binding,
		k.History.Toggle.Binding,
		k.Application.CommandPalette.Binding,
		k.Application.Help.Binding,
		k.Application.Quit.Binding,
	}
}

// FullHelp returns all bindings grouped by column (help.KeyMap)
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Editor.Run.Binding, k.Editor.FocusResults.Binding},
		{k.Tabs.New.Binding, k.Tabs.Close.Binding, k.Tabs.Next.Binding, k.Tabs.Prev.Binding, k.Tabs.Rename.Binding},
		{k.Results.ExportCSV.Binding, k.Results.ExportJSON.Binding},
		{k.History.Toggle.Binding, k.History.Restore.Binding, k.History.Clear.Binding},
		{k.Application.CommandPalette.Binding, k.Application.Help.Binding, k.Application.ClosePanel.Binding, k.Application.Quit.Binding, k.Application.ForceQuit.Binding},
	}
}

// buildBinding creates a KeyWithTip from the key definition, using custom keys if provided
func buildBinding(name string, defaults map[string][]string, customKeys config.KeyBindingsConfig) KeyWithTip {
	def := GetKeyDefinition(name)
	if def == nil {
		panic("unknown key definition: " + name)
	}

	keys := defaults[name]
	if custom, ok := customKeys[name]; ok && len(custom) > 0 {
		keys = custom
	}

	result := KeyWithTip{
		Binding: key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(strings.Join(keys, "/"), def.Help),
		),
	}

	if def.TipFormat != "" && len(keys) > 0 {
		result.Tip = newTip(def.TipFormat, keys[0])
	}

	return result
}
