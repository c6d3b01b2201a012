package session

import (
	"context"
	"fmt"

	"github.com/d-kuro/tici/internal/identity"
	"github.com/d-kuro/tici/internal/tmux"
	"github.com/d-kuro/tici/pkg/models"
	"github.com/d-kuro/tici/pkg/utils"
	"go.uber.org/zap"
)

// Restore rebuilds the session named by id from its save file. With dryRun
// the parsed structure is printed and tmux is never called.
func (m *Manager) Restore(ctx context.Context, id *identity.Identity, dryRun bool) error {
	saved, err := m.storage.Load(id.SavePath)
	if err != nil {
		return err
	}

	if dryRun {
		m.reporter.PrintInfo(fmt.Sprintf("Would restore session %s from: %s", id.SessionName, id.SavePath))
		m.reporter.PrintSession(saved)
		return nil
	}

	return m.rebuild(ctx, id, saved)
}

// RestoreAndSwitch restores the session and then brings it to the terminal.
func (m *Manager) RestoreAndSwitch(ctx context.Context, id *identity.Identity, dryRun bool) error {
	if err := m.Restore(ctx, id, dryRun); err != nil {
		return err
	}
	if dryRun {
		m.reporter.PrintInfo("Would switch to session: " + id.SessionName)
		return nil
	}
	return m.SwitchTo(ctx, id.SessionName)
}

func (m *Manager) rebuild(ctx context.Context, id *identity.Identity, saved *models.Session) error {
	name := id.SessionName

	exists, err := m.mux.HasSession(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		dir := id.Dir
		if len(saved.Windows) > 0 {
			first := saved.SortedWindows()[0]
			if start := first.StartDirectory(); start != "" {
				dir = start
			}
		}
		if err := m.mux.NewSession(ctx, name, true, dir); err != nil {
			return err
		}
	}

	live, err := m.mux.ListWindows(ctx, name)
	if err != nil {
		return err
	}
	base, hasBase := baseWindow(live)

	stale := utils.Filter(live, func(w models.Window) bool {
		return w.Index != 0 && (!hasBase || w.Index != base.Index)
	})
	for _, w := range stale {
		m.logger.Debug("killing stale window", zap.String("session", name), zap.Int("window", w.Index))
		if err := m.mux.KillWindow(ctx, tmux.WindowTarget{Session: name, Window: w.Index}); err != nil {
			return err
		}
	}

	created := make(map[int]int, len(saved.Windows))
	for _, w := range saved.SortedWindows() {
		var existing *models.Window
		if hasBase && w.Index == base.Index {
			existing = &base
		}
		index, err := m.restoreWindow(ctx, name, w, existing)
		if err != nil {
			return err
		}
		created[w.Index] = index
	}

	if active, ok := saved.ActiveWindow(); ok {
		index, ok := created[active.Index]
		if !ok {
			index = active.Index
		}
		if err := m.mux.SelectWindow(ctx, tmux.WindowTarget{Session: name, Window: index}); err != nil {
			return err
		}
	}

	m.logger.Info("session restored",
		zap.String("session", name),
		zap.Int("windows", len(saved.Windows)),
		zap.Int("panes", saved.PaneCount()))
	return nil
}

// restoreWindow recreates one window and returns the index tmux gave it.
// When existing is set the window is rebuilt in place: it is renamed and
// keeps its panes, only gaining the missing ones.
func (m *Manager) restoreWindow(ctx context.Context, session string, w models.Window, existing *models.Window) (int, error) {
	index := w.Index
	present := 1

	if existing != nil {
		target := tmux.WindowTarget{Session: session, Window: index}
		panes, err := m.mux.ListPanes(ctx, target)
		if err != nil {
			return 0, err
		}
		present = max(len(panes), 1)

		if w.Name != "" && w.Name != existing.Name {
			if err := m.mux.RenameWindow(ctx, target, w.Name); err != nil {
				return 0, err
			}
		}
	} else {
		var err error
		index, err = m.mux.NewWindow(ctx, session, w.Index, w.Name, w.StartDirectory())
		if err != nil {
			return 0, err
		}
	}

	target := tmux.WindowTarget{Session: session, Window: index}
	for i := present; i < len(w.Panes); i++ {
		if err := m.mux.SplitWindow(ctx, target, w.Panes[i].CurrentPath); err != nil {
			return 0, err
		}
	}

	if w.Layout != "" {
		if err := m.mux.SelectLayout(ctx, target, w.Layout); err != nil {
			return 0, err
		}
	}

	if pane, ok := w.ActivePane(); ok {
		if err := m.mux.SelectPane(ctx, tmux.PaneTarget{WindowTarget: target, Pane: pane.Index}); err != nil {
			return 0, err
		}
	}
	return index, nil
}

// baseWindow returns the window that must survive the purge: index 0, or
// the lowest index when the session has no window 0.
func baseWindow(live []models.Window) (models.Window, bool) {
	if len(live) == 0 {
		return models.Window{}, false
	}
	lowest := live[0]
	for _, w := range live[1:] {
		if w.Index < lowest.Index {
			lowest = w
		}
	}
	return lowest, true
}
