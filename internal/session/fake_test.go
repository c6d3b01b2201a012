package session

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/d-kuro/tici/internal/tmux"
	"github.com/d-kuro/tici/pkg/models"
)

// fakeMux is an in-memory tmux server. It records every call and keeps
// enough state for restores to be observed through ListWindows/ListPanes.
type fakeMux struct {
	calls    []string
	windows  map[string][]models.Window
	errs     map[string]error
	onAttach func(name string)
}

func newFakeMux() *fakeMux {
	return &fakeMux{windows: map[string][]models.Window{}, errs: map[string]error{}}
}

// addSession seeds a live session.
func (f *fakeMux) addSession(name string, windows ...models.Window) {
	for i := range windows {
		windows[i].SessionName = name
	}
	f.windows[name] = windows
}

func (f *fakeMux) record(op string, format string, args ...any) error {
	f.calls = append(f.calls, op+" "+fmt.Sprintf(format, args...))
	return f.errs[op]
}

func (f *fakeMux) callsWithPrefix(prefix string) []string {
	var out []string
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// writes returns the calls that change tmux state.
func (f *fakeMux) writes() []string {
	var out []string
	for _, c := range f.calls {
		op, _, _ := strings.Cut(c, " ")
		switch op {
		case "has-session", "list-windows", "list-panes":
		default:
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeMux) window(target tmux.WindowTarget) *models.Window {
	windows := f.windows[target.Session]
	for i := range windows {
		if windows[i].Index == target.Window {
			return &windows[i]
		}
	}
	return nil
}

func (f *fakeMux) HasSession(ctx context.Context, name string) (bool, error) {
	if err := f.record("has-session", "%s", name); err != nil {
		return false, err
	}
	_, ok := f.windows[name]
	return ok, nil
}

func (f *fakeMux) ListWindows(ctx context.Context, session string) ([]models.Window, error) {
	if err := f.record("list-windows", "%s", session); err != nil {
		return nil, err
	}
	windows, ok := f.windows[session]
	if !ok {
		return nil, &tmux.OperationError{Op: "list-windows", Target: session}
	}
	out := make([]models.Window, len(windows))
	for i, w := range windows {
		w.Panes = nil
		out[i] = w
	}
	return out, nil
}

func (f *fakeMux) ListPanes(ctx context.Context, target tmux.WindowTarget) ([]models.Pane, error) {
	if err := f.record("list-panes", "%s", target); err != nil {
		return nil, err
	}
	w := f.window(target)
	if w == nil {
		return nil, &tmux.OperationError{Op: "list-panes", Target: target.String()}
	}
	return slices.Clone(w.Panes), nil
}

func (f *fakeMux) NewSession(ctx context.Context, name string, detached bool, dir string) error {
	if err := f.record("new-session", "%s detached=%t dir=%s", name, detached, dir); err != nil {
		return err
	}
	f.addSession(name, models.Window{
		Index:  0,
		Name:   "zsh",
		Active: true,
		Panes:  []models.Pane{{Index: 0, Active: true, CurrentPath: dir, CurrentCommand: "zsh"}},
	})
	return nil
}

func (f *fakeMux) NewWindow(ctx context.Context, session string, index int, name, dir string) (int, error) {
	if err := f.record("new-window", "%s:%d name=%s dir=%s", session, index, name, dir); err != nil {
		return 0, err
	}
	f.windows[session] = append(f.windows[session], models.Window{
		SessionName: session,
		Index:       index,
		Name:        name,
		Panes:       []models.Pane{{Index: 0, Active: true, CurrentPath: dir, CurrentCommand: "zsh"}},
	})
	return index, nil
}

func (f *fakeMux) SplitWindow(ctx context.Context, target tmux.WindowTarget, dir string) error {
	if err := f.record("split-window", "%s dir=%s", target, dir); err != nil {
		return err
	}
	w := f.window(target)
	for i := range w.Panes {
		w.Panes[i].Active = false
	}
	w.Panes = append(w.Panes, models.Pane{Index: len(w.Panes), Active: true, CurrentPath: dir, CurrentCommand: "zsh"})
	return nil
}

func (f *fakeMux) RenameWindow(ctx context.Context, target tmux.WindowTarget, name string) error {
	if err := f.record("rename-window", "%s %s", target, name); err != nil {
		return err
	}
	f.window(target).Name = name
	return nil
}

func (f *fakeMux) SelectLayout(ctx context.Context, target tmux.WindowTarget, layout string) error {
	if err := f.record("select-layout", "%s %s", target, layout); err != nil {
		return err
	}
	f.window(target).Layout = layout
	return nil
}

func (f *fakeMux) SelectPane(ctx context.Context, target tmux.PaneTarget) error {
	if err := f.record("select-pane", "%s", target); err != nil {
		return err
	}
	w := f.window(target.WindowTarget)
	for i := range w.Panes {
		w.Panes[i].Active = w.Panes[i].Index == target.Pane
	}
	return nil
}

func (f *fakeMux) SelectWindow(ctx context.Context, target tmux.WindowTarget) error {
	if err := f.record("select-window", "%s", target); err != nil {
		return err
	}
	windows := f.windows[target.Session]
	for i := range windows {
		windows[i].Active = windows[i].Index == target.Window
	}
	return nil
}

func (f *fakeMux) KillWindow(ctx context.Context, target tmux.WindowTarget) error {
	if err := f.record("kill-window", "%s", target); err != nil {
		return err
	}
	f.windows[target.Session] = slices.DeleteFunc(f.windows[target.Session], func(w models.Window) bool {
		return w.Index == target.Window
	})
	return nil
}

func (f *fakeMux) AttachSession(ctx context.Context, name string) error {
	if err := f.record("attach-session", "%s", name); err != nil {
		return err
	}
	if f.onAttach != nil {
		f.onAttach(name)
	}
	return nil
}

func (f *fakeMux) SwitchClient(ctx context.Context, name string) error {
	return f.record("switch-client", "%s", name)
}

// recordingReporter collects printed lines.
type recordingReporter struct {
	lines    []string
	sessions []*models.Session
}

func (r *recordingReporter) PrintInfo(message string)    { r.lines = append(r.lines, message) }
func (r *recordingReporter) PrintSuccess(message string) { r.lines = append(r.lines, message) }
func (r *recordingReporter) PrintSession(s *models.Session) {
	r.sessions = append(r.sessions, s)
}

func (r *recordingReporter) output() string {
	return strings.Join(r.lines, "\n")
}
