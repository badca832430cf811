package ui

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renato0307/sqldesk/internal/config"
)

func TestKeyDefinitions_AreUniqueAndValid(t *testing.T) {
	seen := make(map[string]bool)
	for _, def := range AllKeyDefinitions {
		assert.False(t, seen[def.Name], "duplicate key definition %s", def.Name)
		seen[def.Name] = true
		assert.NotEmpty(t, def.Defaults, def.Name)
		assert.NotEmpty(t, def.Help, def.Name)
		assert.True(t, IsValidKeyName(def.Name))
	}
	assert.Len(t, GetValidKeyNames(), len(AllKeyDefinitions))
	assert.False(t, IsValidKeyName("launch_rockets"))
}

func TestNewKeyMap_Defaults(t *testing.T) {
	keys := NewKeyMap(nil)

	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlR}, keys.Editor.Run.Binding))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyF5}, keys.Editor.Run.Binding))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlT}, keys.Tabs.New.Binding))
	assert.Equal(t, "ctrl+r/f5", keys.Editor.Run.Binding.Help().Key)
}

func TestNewKeyMap_CustomBindingOverridesDefault(t *testing.T) {
	keys := NewKeyMap(config.KeyBindingsConfig{
		"run_query": config.KeyBindingValue{"ctrl+e"},
	})

	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlE}, keys.Editor.Run.Binding))
	assert.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlR}, keys.Editor.Run.Binding))
	// Others keep their defaults
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlW}, keys.Tabs.Close.Binding))
}

func TestKeyMap_HelpGroupsCoverAllDefinitions(t *testing.T) {
	keys := NewKeyMap(nil)

	count := 0
	for _, group := range keys.FullHelp() {
		count += len(group)
	}
	require.Equal(t, len(AllKeyDefinitions), count)
	assert.NotEmpty(t, keys.ShortHelp())
}
