package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/renato0307/sqldesk/internal/config"
	"github.com/renato0307/sqldesk/internal/logging"
	"github.com/renato0307/sqldesk/internal/ui"
)

// SettingsKeysCmd manages keyboard shortcuts
type SettingsKeysCmd struct {
	List  SettingsKeysListCmd  `cmd:"list" help:"List all key bindings (defaults and custom)" default:"1"`
	Reset SettingsKeysResetCmd `cmd:"reset" help:"Restore the default binding of a key"`
	Set   SettingsKeysSetCmd   `cmd:"set" help:"Set a key binding"`
}

// SettingsKeysListCmd lists all key bindings
type SettingsKeysListCmd struct {
	Format string `help:"Output format: table or json" enum:"table,json" default:"table"`
}

// keyBindingView is one row of the key listing
type keyBindingView struct {
	Custom   []string `json:"custom,omitempty"`
	Defaults []string `json:"default"`
	Group    string   `json:"group"`
	Help     string   `json:"help"`
	Name     string   `json:"name"`
}

func listKeyBindings(custom config.KeyBindingsConfig) []keyBindingView {
	views := make([]keyBindingView, 0, len(ui.AllKeyDefinitions))
	for _, def := range ui.AllKeyDefinitions {
		view := keyBindingView{
			Defaults: def.Defaults,
			Group:    def.Group,
			Help:     def.Help,
			Name:     def.Name,
		}
		if keys, ok := custom[def.Name]; ok && len(keys) > 0 {
			view.Custom = keys
		}
		views = append(views, view)
	}
	return views
}

// Run executes the list command
func (s *SettingsKeysListCmd) Run(cli *CLI) error {
	views := listKeyBindings(cli.settings.Keys)

	if s.Format == "json" {
		data, err := json.MarshalIndent(views, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Key Bindings (settings file: %s)\n\n", config.GetSettingsPath())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "Group\tName\tDefault\tCustom\tAction")
	for _, v := range views {
		custom := "-"
		if len(v.Custom) > 0 {
			custom = strings.Join(v.Custom, ", ")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", v.Group, v.Name, strings.Join(v.Defaults, ", "), custom, v.Help)
	}
	w.Flush()

	fmt.Println()
	fmt.Println("Use 'sqldesk settings keys set <name> <value>' to customize.")
	return nil
}

// SettingsKeysSetCmd sets a key binding
type SettingsKeysSetCmd struct {
	Key   string `arg:"" help:"Key name (e.g., run_query, new_tab, help)"`
	Value string `arg:"" help:"Key binding (e.g., f5, ctrl+e, or comma-separated for multiple: ctrl+r,f5)"`
}

// Run executes the set command
func (s *SettingsKeysSetCmd) Run(cli *CLI) error {
	if !ui.IsValidKeyName(s.Key) {
		return fmt.Errorf("unknown key '%s'. Valid keys: %s",
			s.Key, strings.Join(ui.GetValidKeyNames(), ", "))
	}

	values := config.KeyBindingValue(parseKeyValues(s.Value))
	if len(values) == 0 {
		return fmt.Errorf("value cannot be empty")
	}

	logging.Logger.Debug("Setting key binding", "key", s.Key, "values", values)

	return updateKeyBindings(func(keys config.KeyBindingsConfig) {
		keys[s.Key] = values
	}, fmt.Sprintf("Set '%s' to: %s", s.Key, strings.Join(values, ", ")))
}

// SettingsKeysResetCmd removes a custom binding
type SettingsKeysResetCmd struct {
	Key string `arg:"" help:"Key name to reset"`
}

// Run executes the reset command
func (s *SettingsKeysResetCmd) Run(cli *CLI) error {
	def := ui.GetKeyDefinition(s.Key)
	if def == nil {
		return fmt.Errorf("unknown key '%s'", s.Key)
	}

	return updateKeyBindings(func(keys config.KeyBindingsConfig) {
		delete(keys, s.Key)
	}, fmt.Sprintf("Reset '%s' to: %s", s.Key, strings.Join(def.Defaults, ", ")))
}

// updateKeyBindings loads settings.json fresh, applies change, checks for
// conflicts and saves
func updateKeyBindings(change func(config.KeyBindingsConfig), done string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if settings.Keys == nil {
		settings.Keys = make(config.KeyBindingsConfig)
	}
	change(settings.Keys)

	if err := settings.Keys.Validate(ui.GetValidKeyNames()); err != nil {
		return fmt.Errorf("conflict: %w", err)
	}
	if err := config.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	fmt.Println(done)
	return nil
}

// parseKeyValues parses comma-separated key values
func parseKeyValues(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
