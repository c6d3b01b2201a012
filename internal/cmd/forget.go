package cmd

import (
	"errors"
	"fmt"

	"github.com/d-kuro/tici/internal/finder"
	"github.com/d-kuro/tici/internal/identity"
	"github.com/d-kuro/tici/internal/store"
	"github.com/d-kuro/tici/pkg/models"
	"github.com/d-kuro/tici/pkg/utils"
	"github.com/spf13/cobra"
)

var forgetInteractive bool

// forgetCmd represents the forget command.
var forgetCmd = &cobra.Command{
	Use:     "forget",
	Aliases: []string{"rm"},
	Short:   "Delete save files",
	Long: `Delete the directory's save file so the next run starts a fresh session.

Use -i to pick any number of save files with the fuzzy finder (Tab selects
several). Live tmux sessions are not touched.`,
	Example: `  # Forget the current directory's session layout
  tici forget

  # Pick save files to delete
  tici forget -i

  # Show which files would be deleted
  tici -n forget -i`,
	Args: cobra.NoArgs,
	RunE: ExecuteWithContext(runForget),
}

func init() {
	rootCmd.AddCommand(forgetCmd)

	forgetCmd.Flags().BoolVarP(&forgetInteractive, "interactive", "i", false, "Pick save files with the fuzzy finder")
}

func runForget(ctx *CommandContext, cmd *cobra.Command, args []string) error {
	if !forgetInteractive {
		return ctx.WithIdentity(func(id *identity.Identity) error {
			return forget(ctx, []string{id.SavePath})
		})
	}

	paths, err := pickForgetTargets(ctx)
	if err != nil {
		if errors.Is(err, finder.ErrCancelled) {
			return nil
		}
		return err
	}
	return forget(ctx, paths)
}

func forget(ctx *CommandContext, paths []string) error {
	for _, path := range paths {
		if ctx.DryRun {
			if !ctx.Store.Exists(path) {
				return fmt.Errorf("%w at %s", store.ErrNoSavedSession, path)
			}
			ctx.Printer.PrintInfo("Would remove: " + path)
			continue
		}
		if err := ctx.Store.Remove(path); err != nil {
			return err
		}
		ctx.Printer.PrintSuccess("Removed: " + path)
	}
	return nil
}

func pickForgetTargets(ctx *CommandContext) ([]string, error) {
	dir, err := ctx.SaveDir()
	if err != nil {
		return nil, err
	}
	sessions, err := ctx.Store.List(dir)
	if err != nil {
		return nil, err
	}
	selected, err := ctx.GetFinder().SelectSavedSessions(sessions)
	if err != nil {
		return nil, err
	}

	return utils.Map(selected, func(s models.SavedSession) string { return s.Path }), nil
}
