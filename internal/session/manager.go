// Package session drives the save and restore pipeline: it captures a live
// tmux session into a save file and rebuilds a session from one.
package session

import (
	"context"

	"github.com/d-kuro/tici/internal/tmux"
	"github.com/d-kuro/tici/pkg/models"
	"github.com/d-kuro/tici/pkg/system"
	"go.uber.org/zap"
)

// Multiplexer is the set of tmux operations the pipeline needs.
type Multiplexer interface {
	HasSession(ctx context.Context, name string) (bool, error)
	ListWindows(ctx context.Context, session string) ([]models.Window, error)
	ListPanes(ctx context.Context, target tmux.WindowTarget) ([]models.Pane, error)
	NewSession(ctx context.Context, name string, detached bool, dir string) error
	NewWindow(ctx context.Context, session string, index int, name, dir string) (int, error)
	SplitWindow(ctx context.Context, target tmux.WindowTarget, dir string) error
	RenameWindow(ctx context.Context, target tmux.WindowTarget, name string) error
	SelectLayout(ctx context.Context, target tmux.WindowTarget, layout string) error
	SelectPane(ctx context.Context, target tmux.PaneTarget) error
	SelectWindow(ctx context.Context, target tmux.WindowTarget) error
	KillWindow(ctx context.Context, target tmux.WindowTarget) error
	AttachSession(ctx context.Context, name string) error
	SwitchClient(ctx context.Context, name string) error
}

// Storage persists save files.
type Storage interface {
	EnsureDir(path string) error
	Write(path string, data []byte) error
	Load(path string) (*models.Session, error)
}

// Reporter receives user-facing output.
type Reporter interface {
	PrintInfo(message string)
	PrintSuccess(message string)
	PrintSession(session *models.Session)
}

// Manager runs snapshots and restores against one multiplexer.
type Manager struct {
	mux      Multiplexer
	storage  Storage
	sys      system.SystemInterface
	reporter Reporter
	logger   *zap.Logger
}

// NewManager creates a Manager.
func NewManager(mux Multiplexer, storage Storage, sys system.SystemInterface, reporter Reporter, logger *zap.Logger) *Manager {
	if sys == nil {
		sys = system.NewStandardSystem()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		mux:      mux,
		storage:  storage,
		sys:      sys,
		reporter: reporter,
		logger:   logger,
	}
}

// SwitchTo brings the session to the user's terminal: the current client is
// switched when running inside tmux, otherwise the terminal attaches and
// SwitchTo blocks until the user detaches.
func (m *Manager) SwitchTo(ctx context.Context, name string) error {
	if system.InsideTmux(m.sys) {
		m.logger.Debug("switching client", zap.String("session", name))
		return m.mux.SwitchClient(ctx, name)
	}
	m.logger.Debug("attaching", zap.String("session", name))
	return m.mux.AttachSession(ctx, name)
}
