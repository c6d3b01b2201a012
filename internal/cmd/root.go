// Package cmd provides CLI commands for the tici application.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/d-kuro/tici/internal/config"
	"github.com/d-kuro/tici/internal/identity"
	"github.com/d-kuro/tici/internal/ui"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	workDir string
	dryRun  bool
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tici",
	Short: "Per-directory tmux sessions",
	Long: `tici ties a tmux session to a directory.

Run without a subcommand to open the directory's session: an existing
session is attached (or switched to inside tmux), otherwise a new one is
created, rebuilt from the directory's save file when there is one, and
saved again when you detach.`,
	Example: `  # Open the session for the current directory
  tici

  # Open the session for another directory
  tici -d ~/src/project

  # Show what would happen without touching tmux
  tici -n`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          ExecuteWithContext(runOpen),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		ui.New(&config.Get().UI).PrintError(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&workDir, "dir", "d", "", "Use this directory instead of the current one")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Print what would be done without changing anything")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every tmux invocation to stderr")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}

func runOpen(ctx *CommandContext, cmd *cobra.Command, args []string) error {
	return ctx.WithIdentity(func(id *identity.Identity) error {
		if err := ctx.RequireTmux(); err != nil {
			return err
		}
		return ctx.Manager.Open(cmd.Context(), id, ctx.DryRun)
	})
}
