// Package finder provides fuzzy selection of save files.
package finder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/d-kuro/tici/pkg/cache"
	"github.com/d-kuro/tici/pkg/models"
	"github.com/d-kuro/tici/pkg/utils"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/mattn/go-runewidth"
)

// ErrNoSessions is returned when there is nothing to choose from.
var ErrNoSessions = errors.New("no saved sessions available")

// ErrCancelled is returned when the user closes the finder without choosing.
var ErrCancelled = errors.New("selection cancelled")

// Loader reads the session stored in a save file for the preview window.
type Loader interface {
	Load(path string) (*models.Session, error)
}

// Finder provides fuzzy finder functionality.
type Finder struct {
	config   *models.FinderConfig
	loader   Loader
	previews *cache.Cache[string, *models.Session]
	home     string
}

// New creates a new Finder instance. home is shortened to ~ in the preview
// when the UI config asks for it. A nil loader disables pane details in the
// preview.
func New(config *models.FinderConfig, uiConfig *models.UIConfig, home string, loader Loader) *Finder {
	f := &Finder{
		config:   config,
		loader:   loader,
		previews: cache.New[string, *models.Session](0),
	}
	if uiConfig.TildeHome {
		f.home = home
	}
	return f
}

// SelectSavedSession displays a fuzzy finder for choosing one save file.
func (f *Finder) SelectSavedSession(sessions []models.SavedSession) (*models.SavedSession, error) {
	if len(sessions) == 0 {
		return nil, ErrNoSessions
	}

	idx, err := fuzzyfinder.Find(
		sessions,
		func(i int) string { return label(sessions[i]) },
		f.options(sessions, "Select session> ")...,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &sessions[idx], nil
}

// SelectSavedSessions displays a fuzzy finder for choosing several save files.
func (f *Finder) SelectSavedSessions(sessions []models.SavedSession) ([]models.SavedSession, error) {
	if len(sessions) == 0 {
		return nil, ErrNoSessions
	}

	indices, err := fuzzyfinder.FindMulti(
		sessions,
		func(i int) string { return label(sessions[i]) },
		f.options(sessions, "Select sessions (Tab to select multiple)> ")...,
	)
	if err != nil {
		return nil, translate(err)
	}

	selected := make([]models.SavedSession, len(indices))
	for i, idx := range indices {
		selected[i] = sessions[idx]
	}
	return selected, nil
}

func (f *Finder) options(sessions []models.SavedSession, prompt string) []fuzzyfinder.Option {
	opts := []fuzzyfinder.Option{
		fuzzyfinder.WithPromptString(prompt),
	}
	if f.config.Preview {
		opts = append(opts, fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return f.generatePreview(sessions[i], w, h)
		}))
	}
	return opts
}

func translate(err error) error {
	if errors.Is(err, fuzzyfinder.ErrAbort) {
		return ErrCancelled
	}
	return err
}

func label(s models.SavedSession) string {
	if s.Err != "" {
		return fmt.Sprintf("%s [%s] (unreadable)", s.Name, s.Hash)
	}
	return fmt.Sprintf("%s [%s] (%d windows, %d panes)", s.Name, s.Hash, s.Windows, s.Panes)
}

// generatePreview generates preview content for a save file.
func (f *Finder) generatePreview(s models.SavedSession, width, maxLines int) string {
	path := utils.TildePathWithHome(s.Path, f.home)

	preview := []string{
		fmt.Sprintf("Session: %s", s.Name),
		fmt.Sprintf("Hash: %s", s.Hash),
		fmt.Sprintf("File: %s", path),
	}
	if !s.ModTime.IsZero() {
		preview = append(preview, fmt.Sprintf("Saved: %s", s.ModTime.Format("2006-01-02 15:04:05")))
	}

	if s.Err != "" {
		preview = append(preview, "", "Error: "+s.Err)
	} else if f.loader != nil {
		if session, err := f.load(s.Path); err != nil {
			preview = append(preview, "", "Error: "+err.Error())
		} else {
			preview = append(preview, "")
			for _, w := range session.SortedWindows() {
				marker := "  "
				if w.Active {
					marker = "● "
				}
				preview = append(preview, fmt.Sprintf("%s%d: %s", marker, w.Index, w.Name))
				for _, p := range w.Panes {
					preview = append(preview, fmt.Sprintf("    %d: %s", p.Index, p.CurrentPath))
				}
			}
		}
	}

	if maxLines > 0 && len(preview) > maxLines {
		preview = preview[:maxLines]
	}
	if width > 0 {
		for i, line := range preview {
			preview[i] = truncateWidth(line, width)
		}
	}
	return strings.Join(preview, "\n")
}

// truncateWidth shortens s to at most maxWidth terminal columns.
func truncateWidth(s string, maxWidth int) string {
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth < 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// load parses a save file once per finder run; the preview is redrawn on
// every cursor move.
func (f *Finder) load(path string) (*models.Session, error) {
	return f.previews.GetOrCompute(path, func() (*models.Session, error) {
		return f.loader.Load(path)
	})
}
