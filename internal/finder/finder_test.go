package finder

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/d-kuro/tici/pkg/models"
	"github.com/ktr0731/go-fuzzyfinder"
)

type stubLoader struct {
	session *models.Session
	err     error
}

func (s stubLoader) Load(path string) (*models.Session, error) {
	return s.session, s.err
}

func sampleSaved() models.SavedSession {
	return models.SavedSession{
		Path:    "/h/.tici/session_7b04a95ed64784a2_proj.tmux",
		Hash:    "7b04a95ed64784a2",
		Name:    "proj",
		ModTime: time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC),
		Windows: 2,
		Panes:   3,
	}
}

func TestSelectSavedSession_EmptyList(t *testing.T) {
	f := New(&models.FinderConfig{Preview: true}, &models.UIConfig{}, "", nil)

	if _, err := f.SelectSavedSession(nil); !errors.Is(err, ErrNoSessions) {
		t.Errorf("expected ErrNoSessions, got %v", err)
	}
	if _, err := f.SelectSavedSessions([]models.SavedSession{}); !errors.Is(err, ErrNoSessions) {
		t.Errorf("expected ErrNoSessions, got %v", err)
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name  string
		saved models.SavedSession
		want  string
	}{
		{"readable", sampleSaved(), "proj [7b04a95ed64784a2] (2 windows, 3 panes)"},
		{"unreadable", models.SavedSession{Name: "x", Hash: "0123456789abcdef", Err: "bad"}, "x [0123456789abcdef] (unreadable)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := label(tt.saved); got != tt.want {
				t.Errorf("label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTranslate(t *testing.T) {
	if !errors.Is(translate(fuzzyfinder.ErrAbort), ErrCancelled) {
		t.Error("abort should become ErrCancelled")
	}
	other := errors.New("terminal gone")
	if translate(other) != other {
		t.Error("other errors should pass through")
	}
}

func TestGeneratePreview(t *testing.T) {
	loader := stubLoader{session: &models.Session{
		Name: "proj",
		Windows: []models.Window{
			{Index: 1, Name: "logs", Active: true, Panes: []models.Pane{{Index: 0, CurrentPath: "/var/log"}}},
			{Index: 0, Name: "edit", Panes: []models.Pane{{Index: 0, CurrentPath: "/h/proj"}}},
		},
	}}
	f := New(&models.FinderConfig{Preview: true}, &models.UIConfig{}, "", loader)

	preview := f.generatePreview(sampleSaved(), 0, 0)
	want := []string{
		"Session: proj",
		"Hash: 7b04a95ed64784a2",
		"File: /h/.tici/session_7b04a95ed64784a2_proj.tmux",
		"Saved: 2026-10-18 09:30:00",
		"",
		"  0: edit",
		"    0: /h/proj",
		"● 1: logs",
		"    0: /var/log",
	}
	if preview != strings.Join(want, "\n") {
		t.Errorf("preview =\n%s\nwant\n%s", preview, strings.Join(want, "\n"))
	}
}

func TestGeneratePreview_LoadError(t *testing.T) {
	f := New(&models.FinderConfig{Preview: true}, &models.UIConfig{}, "", stubLoader{err: errors.New("no windows found")})
	preview := f.generatePreview(sampleSaved(), 0, 0)
	if !strings.HasSuffix(preview, "Error: no windows found") {
		t.Errorf("preview should report the load error:\n%s", preview)
	}
}

func TestGeneratePreview_MaxLines(t *testing.T) {
	f := New(&models.FinderConfig{Preview: true}, &models.UIConfig{}, "", nil)
	preview := f.generatePreview(sampleSaved(), 0, 2)
	if lines := strings.Split(preview, "\n"); len(lines) != 2 {
		t.Errorf("expected 2 lines, got %d:\n%s", len(lines), preview)
	}
}

func TestGeneratePreview_Width(t *testing.T) {
	f := New(&models.FinderConfig{Preview: true}, &models.UIConfig{}, "", nil)
	preview := f.generatePreview(sampleSaved(), 12, 0)
	for _, line := range strings.Split(preview, "\n") {
		if len([]rune(line)) > 12 {
			t.Errorf("line %q exceeds width 12", line)
		}
	}
}

func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"fits", "proj", 10, "proj"},
		{"ascii", "/very/long/path", 10, "/very/l..."},
		{"wide runes", "日本語のパス", 7, "日本..."},
		{"tiny", "abcdef", 2, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateWidth(tt.input, tt.width); got != tt.want {
				t.Errorf("truncateWidth(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
			}
		})
	}
}

type countingLoader struct {
	calls map[string]int
}

func (c *countingLoader) Load(path string) (*models.Session, error) {
	c.calls[path]++
	return &models.Session{Name: "proj"}, nil
}

func TestGeneratePreview_LoadsEachFileOnce(t *testing.T) {
	loader := &countingLoader{calls: map[string]int{}}
	f := New(&models.FinderConfig{Preview: true}, &models.UIConfig{}, "", loader)

	other := sampleSaved()
	other.Path = "/h/.tici/session_0000000000000000_other.tmux"
	for i := 0; i < 3; i++ {
		f.generatePreview(sampleSaved(), 0, 0)
		f.generatePreview(other, 0, 0)
	}

	for path, n := range loader.calls {
		if n != 1 {
			t.Errorf("%s loaded %d times, want 1", path, n)
		}
	}
	if len(loader.calls) != 2 {
		t.Errorf("expected 2 files loaded, got %d", len(loader.calls))
	}
}

func TestGeneratePreview_TildeHome(t *testing.T) {
	tests := []struct {
		name  string
		tilde bool
		want  string
	}{
		{"shortened", true, "File: ~/.tici/session_7b04a95ed64784a2_proj.tmux"},
		{"disabled", false, "File: /h/.tici/session_7b04a95ed64784a2_proj.tmux"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(&models.FinderConfig{}, &models.UIConfig{TildeHome: tt.tilde}, "/h", nil)
			if preview := f.generatePreview(sampleSaved(), 0, 0); !strings.Contains(preview, tt.want) {
				t.Errorf("preview should contain %q:\n%s", tt.want, preview)
			}
		})
	}
}
