package harness

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestEnvironment provides an isolated test environment with its own SQLDESK_HOME.
type TestEnvironment struct {
	Home     string
	extraEnv map[string]string
	tb       testing.TB
}

// NewTestEnvironment creates an isolated test environment with a temp SQLDESK_HOME.
// The temp directory is automatically cleaned up when the test completes.
func NewTestEnvironment(tb testing.TB) *TestEnvironment {
	tb.Helper()
	return &TestEnvironment{
		Home:     tb.TempDir(),
		extraEnv: make(map[string]string),
		tb:       tb,
	}
}

// Environ returns the process environment without any SQLDESK_* variable,
// plus the isolated SQLDESK_HOME and any extra variables set via SetEnv
func (e *TestEnvironment) Environ() []string {
	env := make([]string, 0, len(os.Environ())+1+len(e.extraEnv))

	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "SQLDESK_") {
			continue
		}
		if _, overridden := e.extraEnv[key]; overridden {
			continue
		}
		env = append(env, kv)
	}

	env = append(env, "SQLDESK_HOME="+e.Home)
	for k, v := range e.extraEnv {
		env = append(env, k+"="+v)
	}
	return env
}

// DBPath returns the path to the history database.
func (e *TestEnvironment) DBPath() string {
	return filepath.Join(e.Home, "history.db")
}

// ExportsPath returns the directory exports are written to.
func (e *TestEnvironment) ExportsPath() string {
	return filepath.Join(e.Home, "exports")
}

// SetEnv sets an additional environment variable for this test environment.
func (e *TestEnvironment) SetEnv(key, value string) {
	e.extraEnv[key] = value
}

// WriteSettings writes settings as settings.json in the isolated home.
func (e *TestEnvironment) WriteSettings(settings map[string]any) {
	e.tb.Helper()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		e.tb.Fatalf("Failed to marshal settings: %v", err)
	}
	if err := os.WriteFile(filepath.Join(e.Home, "settings.json"), data, 0644); err != nil {
		e.tb.Fatalf("Failed to write settings: %v", err)
	}
}
