package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/renato0307/sqldesk/internal/config"
	"github.com/renato0307/sqldesk/internal/logging"
)

// CLI represents the command-line interface structure
type CLI struct {
	Version     kong.VersionFlag `help:"Show version information"`
	Connection  string           `help:"Connection profile from settings.json" short:"c" env:"SQLDESK_CONNECTION"`
	Debug       bool             `help:"Enable debug logging to file" short:"d" env:"SQLDESK_DEBUG"`
	DebugFile   string           `help:"Custom path for debug log file (disables automatic cleanup)" env:"SQLDESK_DEBUG_FILE"`
	MaxLogFiles int              `help:"Maximum number of log files to keep (0 = unlimited)" default:"1000" env:"SQLDESK_MAX_LOG_FILES"`

	Run         RunCmd         `cmd:"" help:"Start the sqldesk TUI (default)" default:"1"`
	Exec        ExecCmd        `cmd:"exec" help:"Run queries as concurrent tabs and print the results"`
	History     HistoryCmd     `cmd:"history" help:"Inspect or clear the query history"`
	Serve       ServeCmd       `cmd:"serve" help:"Serve the TUI over SSH"`
	Connections ConnectionsCmd `cmd:"connections" help:"Manage connection profiles"`
	Settings    SettingsCmd    `cmd:"settings" help:"Manage settings (meta, keys)"`

	// Internal fields (not flags)
	Container *Container       `kong:"-"`
	settings  *config.Settings `kong:"-"`
}

// SetSettings sets the settings on the CLI struct
func (c *CLI) SetSettings(settings *config.Settings) {
	c.settings = settings
}

// AfterApply initializes logging after CLI parsing and applies settings
func (c *CLI) AfterApply() error {
	if c.settings == nil {
		c.settings = &config.Settings{}
	}

	// Precedence: CLI flags > env vars > settings.json > defaults.
	// Kong already resolved flags and env, so only untouched defaults are replaced.
	if c.MaxLogFiles == logging.DefaultMaxLogFiles {
		if _, hasEnv := os.LookupEnv(logging.EnvMaxLogFiles); !hasEnv && c.settings.MaxLogFiles != nil {
			c.MaxLogFiles = *c.settings.MaxLogFiles
		}
	}
	if !c.Debug {
		if _, hasEnv := os.LookupEnv(logging.EnvDebug); !hasEnv && c.settings.Debug != nil {
			c.Debug = *c.settings.Debug
		}
	}

	logFilePath, err := logging.Initialize(c.Debug, c.DebugFile, c.MaxLogFiles)
	if err != nil {
		return err
	}
	if c.Debug && logFilePath != "" {
		os.Setenv(logging.EnvDebug, "1")
	}

	if err := c.settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings.json: %w", err)
	}

	// The container opens the history database, whose GORM logger needs logging ready
	container, err := NewContainer(c.settings, c.Connection)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	c.Container = container

	return nil
}

// Close closes all resources held by the CLI
func (c *CLI) Close() error {
	if c.Container != nil {
		return c.Container.Close()
	}
	return nil
}

// RunCmd starts the TUI application
type RunCmd struct {
	Dev             bool `help:"Enable development mode (shows version info in dialogs)"`
	ErrorClearDelay int  `help:"Seconds before error messages auto-clear" default:"10"`
}

// Run executes the TUI
func (r *RunCmd) Run(cli *CLI) error {
	if r.ErrorClearDelay == config.DefaultErrorClearDelay && cli.settings.ErrorClearDelay != nil {
		r.ErrorClearDelay = *cli.settings.ErrorClearDelay
	}

	logging.Logger.Info("Starting sqldesk TUI",
		"connection", cli.Container.Connection.Name,
		"driver", cli.Container.Connection.Driver)

	if err := cli.Container.CheckConnection(context.Background()); err != nil {
		return err
	}

	model, err := cli.Container.NewModel(context.Background(), SessionOptions{
		DevMode:         r.Dev,
		ErrorClearDelay: time.Duration(r.ErrorClearDelay) * time.Second,
	})
	if err != nil {
		return err
	}
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())

	logging.Logger.Info("Starting TUI program")
	if _, err := p.Run(); err != nil {
		logging.Logger.Error("TUI program error", "error", err)
		return fmt.Errorf("error running program: %w", err)
	}

	logging.Logger.Info("TUI program exited normally")
	return nil
}
