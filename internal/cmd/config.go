package cmd

import (
	"fmt"
	"strconv"

	"github.com/d-kuro/tici/internal/config"
	"github.com/spf13/cobra"
)

// configCmd represents the config command.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Manage tici configuration settings.

Settings live in ~/.config/tici/config.toml and can be overridden with
TICI_-prefixed environment variables (e.g. TICI_TMUX_COMMAND).`,
}

// configListCmd represents the config list command.
var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show configuration",
	Long:  `Display all current configuration settings.`,
	Example: `  # Show all configuration
  tici config list`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

// configSetCmd represents the config set command.
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set configuration value",
	Long: `Set a configuration value.

Configuration keys follow a dot notation format (e.g., tmux.command).`,
	Example: `  # Use a tmux binary outside PATH
  tici config set tmux.command /opt/homebrew/bin/tmux

  # Keep save files in ~/.tmux-sessions
  tici config set storage.dirname .tmux-sessions

  # Enable/disable colored output
  tici config set ui.color false`,
	Args:              cobra.ExactArgs(2),
	RunE:              runConfigSet,
	ValidArgsFunction: getConfigKeyCompletions,
}

// configGetCmd represents the config get command.
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get configuration value",
	Long:  `Get a specific configuration value.`,
	Example: `  # Get the tmux binary
  tici config get tmux.command`,
	Args:              cobra.ExactArgs(1),
	RunE:              runConfigGet,
	ValidArgsFunction: getConfigKeyCompletions,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
}

func runConfigList(cmd *cobra.Command, args []string) error {
	printer := newPlainPrinter(cmd)
	printer.PrintConfig(config.AllSettings())
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := parseConfigValue(args[1])

	if err := config.Set(key, value); err != nil {
		return fmt.Errorf("failed to set config: %w", err)
	}

	newPlainPrinter(cmd).PrintInfo(fmt.Sprintf("Set %s = %v", key, value))
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := config.GetValue(key)

	if value == nil {
		return fmt.Errorf("configuration key not found: %s", key)
	}

	newPlainPrinter(cmd).PrintInfo(fmt.Sprint(value))
	return nil
}

// parseConfigValue converts command line strings to booleans and integers
// where they look like one.
func parseConfigValue(value string) any {
	switch value {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return value
}
