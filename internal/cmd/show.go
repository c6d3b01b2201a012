package cmd

import (
	"errors"
	"fmt"

	"github.com/d-kuro/tici/internal/finder"
	"github.com/spf13/cobra"
)

var (
	showFormat      string
	showInteractive bool
)

// showCmd represents the show command.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a save file",
	Long: `Print the session stored in the directory's save file without
touching tmux.

Use -i to pick any save file with the fuzzy finder instead.`,
	Example: `  # Show the current directory's save file
  tici show

  # YAML output
  tici show --format yaml

  # Pick a save file
  tici show -i`,
	Args:              cobra.NoArgs,
	PreRunE:           validateShowFormat,
	RunE:              ExecuteWithContext(runShow),
	ValidArgsFunction: cobra.NoFileCompletions,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVarP(&showFormat, "format", "f", "text", "Output format: text, yaml or json")
	showCmd.Flags().BoolVarP(&showInteractive, "interactive", "i", false, "Pick the save file with the fuzzy finder")
	_ = showCmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return showFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

var showFormats = []string{"text", "yaml", "json"}

func validateShowFormat(cmd *cobra.Command, args []string) error {
	for _, f := range showFormats {
		if showFormat == f {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want text, yaml or json)", showFormat)
}

func runShow(ctx *CommandContext, cmd *cobra.Command, args []string) error {
	path, err := showTarget(ctx)
	if err != nil {
		if errors.Is(err, finder.ErrCancelled) {
			return nil
		}
		return err
	}

	saved, err := ctx.Store.Load(path)
	if err != nil {
		return err
	}

	switch showFormat {
	case "yaml":
		return ctx.Printer.PrintSessionYAML(saved)
	case "json":
		return ctx.Printer.PrintSessionJSON(saved)
	default:
		ctx.Printer.PrintSession(saved)
		return nil
	}
}

func showTarget(ctx *CommandContext) (string, error) {
	if !showInteractive {
		id, err := ctx.Resolver.Resolve(ctx.WorkDir)
		if err != nil {
			return "", err
		}
		return id.SavePath, nil
	}

	dir, err := ctx.SaveDir()
	if err != nil {
		return "", err
	}
	sessions, err := ctx.Store.List(dir)
	if err != nil {
		return "", err
	}
	selected, err := ctx.GetFinder().SelectSavedSession(sessions)
	if err != nil {
		return "", err
	}
	return selected.Path, nil
}
