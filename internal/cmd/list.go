package cmd

import (
	"github.com/spf13/cobra"
)

var listJSON bool

// listCmd represents the list command.
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List save files",
	Long: `List every save file in the save directory with its session name,
directory hash, window and pane counts and modification time.

Save files that cannot be parsed are listed with "!" counts.`,
	Example: `  # Table output
  tici list

  # JSON format for scripting
  tici list --json`,
	Args: cobra.NoArgs,
	RunE: ExecuteWithContext(runList),
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
}

func runList(ctx *CommandContext, cmd *cobra.Command, args []string) error {
	dir, err := ctx.SaveDir()
	if err != nil {
		return err
	}

	sessions, err := ctx.Store.List(dir)
	if err != nil {
		return err
	}

	if listJSON {
		return ctx.Printer.PrintSavedSessionsJSON(sessions)
	}
	return ctx.Printer.PrintSavedSessions(sessions)
}
