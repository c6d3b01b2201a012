package session

import (
	"context"
	"strings"

	"github.com/d-kuro/tici/internal/codec"
	"github.com/d-kuro/tici/internal/identity"
	"github.com/d-kuro/tici/internal/tmux"
	"github.com/d-kuro/tici/pkg/models"
	"go.uber.org/zap"
)

// Snapshot captures the live session named by id into its save file. With
// dryRun the serialized form is printed and nothing is written.
func (m *Manager) Snapshot(ctx context.Context, id *identity.Identity, dryRun bool) (*models.Session, error) {
	if !dryRun {
		if err := m.storage.EnsureDir(id.SavePath); err != nil {
			return nil, err
		}
	}

	session, err := m.Capture(ctx, id.SessionName)
	if err != nil {
		return nil, err
	}

	data, err := codec.Marshal(session)
	if err != nil {
		return nil, err
	}

	if dryRun {
		m.reporter.PrintInfo("Would save session to: " + id.SavePath)
		m.reporter.PrintInfo(strings.TrimSuffix(string(data), "\n"))
		return session, nil
	}

	if err := m.storage.Write(id.SavePath, data); err != nil {
		return nil, err
	}
	m.logger.Info("session saved",
		zap.String("session", id.SessionName),
		zap.Int("windows", len(session.Windows)),
		zap.Int("panes", session.PaneCount()))
	m.reporter.PrintSuccess("Session saved to: " + id.SavePath)
	return session, nil
}

// Capture reads the structure of a live session from tmux.
func (m *Manager) Capture(ctx context.Context, name string) (*models.Session, error) {
	windows, err := m.mux.ListWindows(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, codec.ErrEmptySession
	}

	for i := range windows {
		if windows[i].SessionName == "" {
			windows[i].SessionName = name
		}
		panes, err := m.mux.ListPanes(ctx, tmux.WindowTarget{Session: name, Window: windows[i].Index})
		if err != nil {
			return nil, err
		}
		windows[i].Panes = panes
	}

	return &models.Session{Name: name, Windows: windows}, nil
}
