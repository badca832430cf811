package config

import (
	"os"
	"path/filepath"
)

// EnvHome overrides the sqldesk home directory
const EnvHome = "SQLDESK_HOME"

// GetHome returns $SQLDESK_HOME or ~/.sqldesk
func GetHome() string {
	home := os.Getenv(EnvHome)
	if home == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".sqldesk"
		}
		return filepath.Join(homeDir, ".sqldesk")
	}
	return ExpandPath(home)
}

// GetDBPath returns $SQLDESK_HOME/history.db
func GetDBPath() string {
	return filepath.Join(GetHome(), "history.db")
}

// GetSettingsPath returns $SQLDESK_HOME/settings.json
func GetSettingsPath() string {
	return filepath.Join(GetHome(), "settings.json")
}

// GetSSHDir returns $SQLDESK_HOME/ssh, where the server host key lives
func GetSSHDir() string {
	return filepath.Join(GetHome(), "ssh")
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			if len(path) == 1 {
				return homeDir
			}
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}
