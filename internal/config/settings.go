package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/renato0307/sqldesk/internal/domain"
)

// KeyBindingValue supports "a" or ["up", "k"] in JSON
type KeyBindingValue []string

// UnmarshalJSON implements custom unmarshaling for KeyBindingValue
func (kv *KeyBindingValue) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*kv = arr
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str != "" {
		*kv = []string{str}
	}
	return nil
}

// MarshalJSON implements custom marshaling for KeyBindingValue
func (kv KeyBindingValue) MarshalJSON() ([]byte, error) {
	if len(kv) == 1 {
		return json.Marshal(kv[0])
	}
	return json.Marshal([]string(kv))
}

// KeyBindingsConfig holds custom key binding overrides as a map.
// Keys are binding names (e.g., "run_query", "help"), values are the key sequences.
type KeyBindingsConfig map[string]KeyBindingValue

// Validate checks for configuration errors in key bindings.
// The validNames parameter should come from ui.GetValidKeyNames().
func (k KeyBindingsConfig) Validate(validNames []string) error {
	if k == nil {
		return nil
	}

	validSet := make(map[string]bool, len(validNames))
	for _, name := range validNames {
		validSet[name] = true
	}

	keyToAction := make(map[string]string)

	for name, keys := range k {
		if !validSet[name] {
			return fmt.Errorf("unknown key binding '%s'", name)
		}
		if len(keys) == 0 {
			continue // Not configured, will use default
		}
		for _, key := range keys {
			if key == "" {
				return fmt.Errorf("key binding for '%s' contains empty value", name)
			}
			if existing, found := keyToAction[key]; found {
				return fmt.Errorf("key '%s' is assigned to both '%s' and '%s'", key, existing, name)
			}
			keyToAction[key] = name
		}
	}

	return nil
}

// Defaults applied when neither flags, env nor settings.json provide a value
const (
	DefaultClosePolicy     = string(domain.KeepRunningOnClose)
	DefaultErrorClearDelay = 10
	DefaultHistoryLimit    = 500
	DefaultOverlapPolicy   = string(domain.LastResolutionWins)
)

// Settings represents the structure of $SQLDESK_HOME/settings.json
type Settings struct {
	ClosePolicy       string              `json:"close_policy,omitempty"`
	Connection        string              `json:"connection,omitempty"`
	Connections       []domain.Connection `json:"connections,omitempty"`
	Debug             *bool               `json:"debug,omitempty"`
	ErrorClearDelay   *int                `json:"error_clear_delay,omitempty"`
	HistoryLimit      *int                `json:"history_limit,omitempty"`
	Keys              KeyBindingsConfig   `json:"keys,omitempty"`
	MaxLogFiles       *int                `json:"max_log_files,omitempty"`
	OverlapPolicy     string              `json:"overlap_policy,omitempty"`
	PersistHistory    *bool               `json:"persist_history,omitempty"`
	ResultPreviewRows *int                `json:"result_preview_rows,omitempty"`
}

// ResolveConnection returns the named profile, falling back to the default profile
// when name is empty and no profiles are configured
func (s *Settings) ResolveConnection(name string) (domain.Connection, error) {
	if name == "" {
		name = s.Connection
	}
	if len(s.Connections) == 0 {
		if name == "" || name == domain.DefaultConnection.Name {
			return domain.DefaultConnection, nil
		}
		return domain.Connection{}, fmt.Errorf("%w: %s", domain.ErrConnectionNotFound, name)
	}
	if name == "" {
		return s.Connections[0], nil
	}
	conn, err := domain.FindConnection(s.Connections, name)
	if err != nil {
		return domain.Connection{}, fmt.Errorf("%w: %s", err, name)
	}
	return conn, nil
}

// Validate checks policy names and connection profiles
func (s *Settings) Validate() error {
	if _, err := domain.ParseOverlapPolicy(s.OverlapPolicy); err != nil {
		return err
	}
	if _, err := domain.ParseClosePolicy(s.ClosePolicy); err != nil {
		return err
	}

	seen := make(map[string]bool, len(s.Connections))
	for _, c := range s.Connections {
		if c.Name == "" {
			return fmt.Errorf("connection with empty name")
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate connection '%s'", c.Name)
		}
		seen[c.Name] = true

		switch c.Driver {
		case domain.DriverMock:
		case domain.DriverMySQL, domain.DriverPostgres, domain.DriverSQLite:
			if c.DSN == "" {
				return fmt.Errorf("connection '%s' requires a dsn", c.Name)
			}
		default:
			return fmt.Errorf("connection '%s': %w: %s", c.Name, domain.ErrUnknownDriver, c.Driver)
		}
	}
	return nil
}

// StringArray supports both JSON arrays and comma-separated strings
type StringArray []string

// UnmarshalJSON implements custom unmarshaling for StringArray
func (sa *StringArray) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*sa = arr
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*sa = parseCommaSeparated(str)
	return nil
}

// parseCommaSeparated splits comma-separated string and trims whitespace
func parseCommaSeparated(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// LoadSettings loads settings from $SQLDESK_HOME/settings.json.
// Returns empty Settings if file doesn't exist (not an error)
func LoadSettings() (*Settings, error) {
	path := GetSettingsPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("invalid settings.json: %w", err)
	}

	// sqlite DSNs are file paths
	for i, c := range settings.Connections {
		if c.Driver == domain.DriverSQLite {
			settings.Connections[i].DSN = ExpandPath(c.DSN)
		}
	}

	return &settings, nil
}

// SaveSettings saves settings to $SQLDESK_HOME/settings.json
func SaveSettings(settings *Settings) error {
	path := GetSettingsPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}
