package cmd

import (
	"github.com/d-kuro/tici/internal/identity"
	"github.com/spf13/cobra"
)

// saveCmd represents the save command.
var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the directory's tmux session",
	Long: `Capture the windows and panes of the directory's tmux session and write
them to the directory's save file under $HOME.

The file is replaced atomically, so a concurrent restore never reads a
partial save.`,
	Example: `  # Save the session for the current directory
  tici save

  # Save another directory's session
  tici -d ../other save

  # Print the save file instead of writing it
  tici -n save`,
	Args: cobra.NoArgs,
	RunE: ExecuteWithContext(runSave),
}

func init() {
	rootCmd.AddCommand(saveCmd)
}

func runSave(ctx *CommandContext, cmd *cobra.Command, args []string) error {
	return ctx.WithIdentity(func(id *identity.Identity) error {
		if err := ctx.RequireTmux(); err != nil {
			return err
		}
		_, err := ctx.Manager.Snapshot(cmd.Context(), id, ctx.DryRun)
		return err
	})
}
