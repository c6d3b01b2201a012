package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/d-kuro/tici/internal/identity"
	"github.com/d-kuro/tici/internal/store"
	"go.uber.org/zap"
)

// Open is the default verb. An existing session is switched to. Otherwise a
// detached session is created in the directory, restored from its save file
// when there is one, switched to, and snapshotted once the user returns.
func (m *Manager) Open(ctx context.Context, id *identity.Identity, dryRun bool) error {
	name := id.SessionName

	exists, err := m.mux.HasSession(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		if dryRun {
			m.reporter.PrintInfo("Would switch to existing session: " + name)
			return nil
		}
		return m.SwitchTo(ctx, name)
	}

	if dryRun {
		m.reporter.PrintInfo(fmt.Sprintf("Would create session %s in: %s", name, id.Dir))
		if err := m.Restore(ctx, id, true); err != nil && !errors.Is(err, store.ErrNoSavedSession) {
			return err
		}
		m.reporter.PrintInfo("Would switch to session: " + name)
		m.reporter.PrintInfo("Would save session to: " + id.SavePath)
		return nil
	}

	if err := m.mux.NewSession(ctx, name, true, id.Dir); err != nil {
		return err
	}

	if err := m.Restore(ctx, id, false); err != nil {
		if !errors.Is(err, store.ErrNoSavedSession) {
			return err
		}
		m.logger.Info("no saved session, starting fresh",
			zap.String("session", name), zap.String("path", id.SavePath))
	}

	if err := m.SwitchTo(ctx, name); err != nil {
		return err
	}

	alive, err := m.mux.HasSession(ctx, name)
	if err != nil {
		return err
	}
	if !alive {
		m.logger.Info("session ended before it could be saved", zap.String("session", name))
		return nil
	}

	_, err = m.Snapshot(ctx, id, false)
	return err
}
