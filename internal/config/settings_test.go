package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renato0307/sqldesk/internal/domain"
)

func TestKeyBindingValue_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected KeyBindingValue
	}{
		{"single string", `"ctrl+r"`, KeyBindingValue{"ctrl+r"}},
		{"array", `["f5", "ctrl+r"]`, KeyBindingValue{"f5", "ctrl+r"}},
		{"empty string", `""`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var kv KeyBindingValue
			require.NoError(t, json.Unmarshal([]byte(tt.input), &kv))
			assert.Equal(t, tt.expected, kv)
		})
	}
}

func TestKeyBindingsConfig_Validate(t *testing.T) {
	valid := []string{"help", "run_query", "new_tab"}

	tests := []struct {
		name      string
		config    KeyBindingsConfig
		wantError string
	}{
		{"nil config", nil, ""},
		{"valid overrides", KeyBindingsConfig{"help": {"f1"}, "run_query": {"ctrl+r"}}, ""},
		{"unknown name", KeyBindingsConfig{"explode": {"x"}}, "unknown key binding 'explode'"},
		{"empty value", KeyBindingsConfig{"help": {""}}, "contains empty value"},
		{"duplicate key", KeyBindingsConfig{"help": {"f1"}, "new_tab": {"f1"}}, "is assigned to both"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate(valid)
			if tt.wantError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}

func TestStringArray_UnmarshalJSON(t *testing.T) {
	var sa StringArray
	require.NoError(t, json.Unmarshal([]byte(`"a, b ,,c"`), &sa))
	assert.Equal(t, StringArray{"a", "b", "c"}, sa)

	require.NoError(t, json.Unmarshal([]byte(`["x","y"]`), &sa))
	assert.Equal(t, StringArray{"x", "y"}, sa)
}

func TestLoadSettings_MissingFileIsEmpty(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())

	settings, err := LoadSettings()

	require.NoError(t, err)
	assert.Equal(t, &Settings{}, settings)
}

func TestSaveAndLoadSettings(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHome, home)
	limit := 50

	err := SaveSettings(&Settings{
		Connection:   "scratch",
		Connections:  []domain.Connection{{Name: "scratch", Driver: domain.DriverSQLite, DSN: "/tmp/x.db", Database: "main"}},
		HistoryLimit: &limit,
	})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(home, "settings.json"))

	loaded, err := LoadSettings()
	require.NoError(t, err)
	require.NotNil(t, loaded.HistoryLimit)
	assert.Equal(t, 50, *loaded.HistoryLimit)
	assert.Equal(t, "scratch", loaded.Connection)
	require.Len(t, loaded.Connections, 1)
	assert.Equal(t, "/tmp/x.db", loaded.Connections[0].DSN)
}

func TestLoadSettings_InvalidJSON(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHome, home)
	require.NoError(t, os.WriteFile(filepath.Join(home, "settings.json"), []byte("{"), 0644))

	_, err := LoadSettings()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings.json")
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name      string
		settings  Settings
		wantError string
	}{
		{"empty", Settings{}, ""},
		{"valid policies", Settings{OverlapPolicy: "latest_dispatch", ClosePolicy: "cancel"}, ""},
		{"bad overlap", Settings{OverlapPolicy: "random"}, "invalid overlap policy"},
		{"bad close", Settings{ClosePolicy: "explode"}, "invalid close policy"},
		{"unknown driver", Settings{Connections: []domain.Connection{{Name: "a", Driver: "oracle"}}}, "unknown database driver"},
		{"missing dsn", Settings{Connections: []domain.Connection{{Name: "a", Driver: "mysql"}}}, "requires a dsn"},
		{"duplicate", Settings{Connections: []domain.Connection{{Name: "a", Driver: "mock"}, {Name: "a", Driver: "mock"}}}, "duplicate connection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.wantError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}

func TestSettings_ResolveConnection(t *testing.T) {
	empty := &Settings{}
	conn, err := empty.ResolveConnection("")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConnection, conn)

	_, err = empty.ResolveConnection("prod")
	assert.ErrorIs(t, err, domain.ErrConnectionNotFound)

	configured := &Settings{
		Connection: "b",
		Connections: []domain.Connection{
			{Name: "a", Driver: "mock", Database: "one"},
			{Name: "b", Driver: "mock", Database: "two"},
		},
	}
	conn, err = configured.ResolveConnection("")
	require.NoError(t, err)
	assert.Equal(t, "two", conn.Database)

	conn, err = configured.ResolveConnection("a")
	require.NoError(t, err)
	assert.Equal(t, "one", conn.Database)
}

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, homeDir, ExpandPath("~"))
	assert.Equal(t, filepath.Join(homeDir, "x", "y"), ExpandPath("~/x/y"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
}

func TestGetSettingsExample_CoversEverySetting(t *testing.T) {
	example := GetSettingsExample()

	for _, key := range []string{"close_policy", "connections", "history_limit", "keys", "overlap_policy", "persist_history"} {
		assert.Contains(t, example, key)
		assert.NotNil(t, example[key], key)
	}
}
