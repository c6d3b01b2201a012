package cmd

import (
	"fmt"

	"github.com/d-kuro/tici/internal/config"
	"github.com/d-kuro/tici/internal/finder"
	"github.com/d-kuro/tici/internal/identity"
	"github.com/d-kuro/tici/internal/logging"
	"github.com/d-kuro/tici/internal/session"
	"github.com/d-kuro/tici/internal/store"
	"github.com/d-kuro/tici/internal/tmux"
	"github.com/d-kuro/tici/internal/ui"
	"github.com/d-kuro/tici/pkg/command"
	"github.com/d-kuro/tici/pkg/filesystem"
	"github.com/d-kuro/tici/pkg/models"
	"github.com/d-kuro/tici/pkg/system"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// CommandContext encapsulates common dependencies used across commands.
type CommandContext struct {
	Config   *models.Config
	Printer  *ui.Printer
	Logger   *zap.Logger
	Resolver *identity.Resolver
	Store    *store.Store
	Tmux     *tmux.TmuxCommand
	Manager  *session.Manager
	WorkDir  string
	DryRun   bool
	home     string
	finder   *finder.Finder // Lazy-loaded
}

// NewCommandContext loads configuration and wires the save/restore pipeline.
func NewCommandContext() (*CommandContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(loggingConfig(cfg, verbose))
	if err != nil {
		return nil, fmt.Errorf("invalid log configuration: %w", err)
	}

	fs := filesystem.NewStandardFileSystem()
	sys := system.NewStandardSystem()
	printer := ui.New(&cfg.UI)

	resolver := identity.NewResolver(fs, sys, identity.Options{
		DirName:   cfg.Storage.DirName,
		Extension: cfg.Storage.Extension,
	})
	// Listings still work without HOME; they just skip the ~ shortening.
	home, _ := resolver.Home()
	printer.SetHome(home)
	st := store.New(fs, resolver.Extension(), logger.Named("store"))
	tm := tmux.NewTmuxCommand(cfg.Tmux.Command, command.NewStandardExecutor(), logger.Named("tmux"))
	manager := session.NewManager(tm, st, sys, printer, logger.Named("session"))

	return &CommandContext{
		Config:   cfg,
		Printer:  printer,
		Logger:   logger,
		Resolver: resolver,
		Store:    st,
		Tmux:     tm,
		Manager:  manager,
		WorkDir:  workDir,
		DryRun:   dryRun,
		home:     home,
	}, nil
}

func loggingConfig(cfg *models.Config, verbose bool) logging.Config {
	logCfg := logging.DefaultConfig()
	if cfg.Log.Level != "" {
		logCfg.Level = cfg.Log.Level
	}
	logCfg.Development = cfg.Log.Development
	if verbose {
		logCfg.Level = "debug"
	}
	return logCfg
}

// WithIdentity resolves the directory selected by --dir and runs fn for it.
// "Using directory" precedes any other output and is printed on success,
// or before tmux takes over the terminal; dry runs print it up front.
func (ctx *CommandContext) WithIdentity(fn func(*identity.Identity) error) error {
	id, err := ctx.Resolver.Resolve(ctx.WorkDir)
	if err != nil {
		return err
	}
	ctx.Logger.Debug("resolved identity",
		zap.String("dir", id.Dir),
		zap.String("session", id.SessionName),
		zap.String("path", id.SavePath))

	ctx.Printer.SetHeader("Using directory: " + id.Dir)
	if ctx.DryRun {
		ctx.Printer.FlushHeader()
	}
	if err := fn(id); err != nil {
		return err
	}
	ctx.Printer.FlushHeader()
	return nil
}

// RequireTmux fails with an environment error when the tmux binary cannot
// be found.
func (ctx *CommandContext) RequireTmux() error {
	return ctx.Tmux.CheckAvailable()
}

// SaveDir returns the directory holding every save file.
func (ctx *CommandContext) SaveDir() (string, error) {
	return ctx.Resolver.HomeSaveDir()
}

// GetFinder returns a finder instance, creating it if needed.
func (ctx *CommandContext) GetFinder() *finder.Finder {
	if ctx.finder == nil {
		ctx.finder = finder.New(&ctx.Config.Finder, &ctx.Config.UI, ctx.home, ctx.Store)
	}
	return ctx.finder
}

// newPlainPrinter returns a printer for commands that run without the full
// command context.
func newPlainPrinter(cmd *cobra.Command) *ui.Printer {
	return ui.New(&config.Get().UI).SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// ExecuteWithContext creates a command context and executes the provided function.
func ExecuteWithContext(fn func(*CommandContext, *cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, err := NewCommandContext()
		if err != nil {
			return err
		}
		defer func() { _ = ctx.Logger.Sync() }()

		ctx.Printer.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
		ctx.Tmux.SetStreams(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		ctx.Tmux.OnHandoff(ctx.Printer.FlushHeader)
		return fn(ctx, cmd, args)
	}
}
