package cmd

import (
	"github.com/d-kuro/tici/internal/identity"
	"github.com/spf13/cobra"
)

var restoreNoSwitch bool

// restoreCmd represents the restore command.
var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Rebuild the directory's tmux session from its save file",
	Long: `Rebuild the directory's tmux session from its save file and switch to it.

Windows that are not in the save file are closed, except the session's
first window, which tmux needs to keep the session alive. The session is
created when it does not exist yet.`,
	Example: `  # Restore and attach
  tici restore

  # Show the saved structure without touching tmux
  tici -n restore

  # Restore in the background
  tici restore --no-switch`,
	Args: cobra.NoArgs,
	RunE: ExecuteWithContext(runRestore),
}

func init() {
	rootCmd.AddCommand(restoreCmd)

	restoreCmd.Flags().BoolVar(&restoreNoSwitch, "no-switch", false, "Do not attach or switch to the restored session")
}

func runRestore(ctx *CommandContext, cmd *cobra.Command, args []string) error {
	return ctx.WithIdentity(func(id *identity.Identity) error {
		if !ctx.DryRun {
			if err := ctx.RequireTmux(); err != nil {
				return err
			}
		}
		if restoreNoSwitch {
			return ctx.Manager.Restore(cmd.Context(), id, ctx.DryRun)
		}
		return ctx.Manager.RestoreAndSwitch(cmd.Context(), id, ctx.DryRun)
	})
}
