package tmux

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"reflect"
	"strings"
	"testing"

	"github.com/d-kuro/tici/pkg/command"
	"github.com/d-kuro/tici/pkg/system"
)

type call struct {
	name        string
	args        []string
	interactive bool
	stdout      io.Writer
}

// mockExecutor records every invocation and answers from canned responses
// keyed by the tmux subcommand.
type mockExecutor struct {
	calls   []call
	outputs map[string]string
	errs    map[string]error
	path    map[string]string
}

func newMockExecutor() *mockExecutor {
	return &mockExecutor{
		outputs: map[string]string{},
		errs:    map[string]error{},
		path:    map[string]string{"tmux": "/usr/bin/tmux"},
	}
}

func (m *mockExecutor) record(name string, args []string, interactive bool) (string, error) {
	m.calls = append(m.calls, call{name: name, args: args, interactive: interactive})
	sub := ""
	if len(args) > 0 {
		sub = args[0]
	}
	return m.outputs[sub], m.errs[sub]
}

func (m *mockExecutor) Execute(ctx context.Context, name string, args ...string) error {
	_, err := m.record(name, args, false)
	return err
}

func (m *mockExecutor) ExecuteWithOutput(ctx context.Context, name string, args ...string) (string, error) {
	return m.record(name, args, false)
}

func (m *mockExecutor) ExecuteWithStreams(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, name string, args ...string) error {
	_, err := m.record(name, args, true)
	m.calls[len(m.calls)-1].stdout = stdout
	return err
}

func (m *mockExecutor) LookPath(name string) (string, error) {
	if path, ok := m.path[name]; ok {
		return path, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

func exitErr(stderr string) error {
	return &command.ExitError{Name: "tmux", Code: 1, Stderr: stderr, Err: errors.New("exit status 1")}
}

func newTestCommand(m *mockExecutor) *TmuxCommand {
	return NewTmuxCommand("tmux", m, nil)
}

func TestHasSession(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    bool
		wantErr bool
	}{
		{name: "exists", want: true},
		{name: "missing", err: exitErr("can't find session: proj")},
		{name: "launch failure", err: errors.New("boom"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockExecutor()
			m.errs["has-session"] = tt.err
			got, err := newTestCommand(m).HasSession(context.Background(), "proj")
			if (err != nil) != tt.wantErr {
				t.Fatalf("HasSession() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("HasSession() = %v, want %v", got, tt.want)
			}
			want := []string{"has-session", "-t", "=proj"}
			if !reflect.DeepEqual(m.calls[0].args, want) {
				t.Errorf("args = %v, want %v", m.calls[0].args, want)
			}
		})
	}
}

func TestHasSessionBinaryMissing(t *testing.T) {
	m := newMockExecutor()
	m.errs["has-session"] = &exec.Error{Name: "tmux", Err: exec.ErrNotFound}
	_, err := newTestCommand(m).HasSession(context.Background(), "proj")
	if !errors.Is(err, system.ErrEnvironmentMissing) {
		t.Errorf("expected ErrEnvironmentMissing, got %v", err)
	}
}

func TestListWindows(t *testing.T) {
	m := newMockExecutor()
	m.outputs["list-windows"] = "proj\t0\t:editor\t1\tabcd,80x24,0,0,0\n" +
		"proj\t2\t:\t0\tef01,80x24,0,0,1\n" +
		"proj\t3\t: spaced name\t0\t\n"

	windows, err := newTestCommand(m).ListWindows(context.Background(), "proj")
	if err != nil {
		t.Fatalf("ListWindows() error = %v", err)
	}
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}

	if w := windows[0]; w.SessionName != "proj" || w.Index != 0 || w.Name != "editor" || !w.Active || w.Layout != "abcd,80x24,0,0,0" {
		t.Errorf("unexpected first window: %+v", w)
	}
	if w := windows[1]; w.Index != 2 || w.Name != "" || w.Active {
		t.Errorf("unexpected second window: %+v", w)
	}
	if w := windows[2]; w.Name != " spaced name" || w.Layout != "" {
		t.Errorf("unexpected third window: %+v", w)
	}

	args := m.calls[0].args
	if args[0] != "list-windows" || args[2] != "=proj" || args[3] != "-F" {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestListWindowsMalformed(t *testing.T) {
	m := newMockExecutor()
	m.outputs["list-windows"] = "proj\t0\n"
	_, err := newTestCommand(m).ListWindows(context.Background(), "proj")
	var malformed *MalformedOutputError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedOutputError, got %v", err)
	}
}

func TestListWindowsFailure(t *testing.T) {
	m := newMockExecutor()
	m.errs["list-windows"] = exitErr("no server running")
	_, err := newTestCommand(m).ListWindows(context.Background(), "proj")

	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got %v", err)
	}
	if opErr.Op != "list-windows" || opErr.Target != "proj" {
		t.Errorf("unexpected OperationError: %+v", opErr)
	}
	if !strings.Contains(err.Error(), "list-windows") {
		t.Errorf("error message %q does not name the operation", err.Error())
	}
}

func TestListPanes(t *testing.T) {
	m := newMockExecutor()
	m.outputs["list-panes"] = "0\thost\t:/h/proj\t1\tvim\t4242\t1200\n" +
		"1\t\t:/h/proj/src\t0\tzsh\tnotanumber\n"

	target := WindowTarget{Session: "proj", Window: 1}
	panes, err := newTestCommand(m).ListPanes(context.Background(), target)
	if err != nil {
		t.Fatalf("ListPanes() error = %v", err)
	}
	if len(panes) != 2 {
		t.Fatalf("expected 2 panes, got %d", len(panes))
	}
	if p := panes[0]; p.Index != 0 || !p.Active || p.Title != "host" || p.CurrentPath != "/h/proj" || p.CurrentCommand != "vim" || p.PID != 4242 || p.HistorySize != 1200 {
		t.Errorf("unexpected first pane: %+v", p)
	}
	if p := panes[1]; p.Index != 1 || p.Active || p.CurrentPath != "/h/proj/src" || p.PID != 0 || p.HistorySize != 0 {
		t.Errorf("unexpected second pane: %+v", p)
	}
	if got := m.calls[0].args[2]; got != "proj:1" {
		t.Errorf("target = %q, want proj:1", got)
	}
}

func TestNewSession(t *testing.T) {
	t.Run("detached", func(t *testing.T) {
		m := newMockExecutor()
		if err := newTestCommand(m).NewSession(context.Background(), "proj", true, "/h/proj"); err != nil {
			t.Fatalf("NewSession() error = %v", err)
		}
		want := []string{"new-session", "-d", "-s", "proj", "-c", "/h/proj"}
		if !reflect.DeepEqual(m.calls[0].args, want) {
			t.Errorf("args = %v, want %v", m.calls[0].args, want)
		}
		if m.calls[0].interactive {
			t.Error("detached session should not use the terminal")
		}
	})

	t.Run("attached", func(t *testing.T) {
		m := newMockExecutor()
		if err := newTestCommand(m).NewSession(context.Background(), "proj", false, ""); err != nil {
			t.Fatalf("NewSession() error = %v", err)
		}
		want := []string{"new-session", "-s", "proj"}
		if !reflect.DeepEqual(m.calls[0].args, want) {
			t.Errorf("args = %v, want %v", m.calls[0].args, want)
		}
		if !m.calls[0].interactive {
			t.Error("attached session should use the terminal")
		}
	})

	t.Run("invalid name", func(t *testing.T) {
		m := newMockExecutor()
		err := newTestCommand(m).NewSession(context.Background(), "a.b", true, "")
		if !errors.Is(err, ErrInvalidTarget) {
			t.Errorf("expected ErrInvalidTarget, got %v", err)
		}
		if len(m.calls) != 0 {
			t.Errorf("expected no tmux calls, got %d", len(m.calls))
		}
	})
}

func TestNewWindow(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		winName  string
		want     int
		wantArgs []string
	}{
		{
			name:     "named",
			output:   "2\n",
			winName:  "logs",
			want:     2,
			wantArgs: []string{"new-window", "-d", "-P", "-F", "#{window_index}", "-t", "proj:2", "-n", "logs", "-c", "/h/proj"},
		},
		{
			name:     "renumbered by tmux",
			output:   "5\n",
			want:     5,
			wantArgs: []string{"new-window", "-d", "-P", "-F", "#{window_index}", "-t", "proj:2", "-c", "/h/proj"},
		},
		{
			name:     "no index printed",
			output:   "",
			want:     2,
			wantArgs: []string{"new-window", "-d", "-P", "-F", "#{window_index}", "-t", "proj:2", "-c", "/h/proj"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockExecutor()
			m.outputs["new-window"] = tt.output
			got, err := newTestCommand(m).NewWindow(context.Background(), "proj", 2, tt.winName, "/h/proj")
			if err != nil {
				t.Fatalf("NewWindow() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("NewWindow() = %d, want %d", got, tt.want)
			}
			if !reflect.DeepEqual(m.calls[0].args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", m.calls[0].args, tt.wantArgs)
			}
		})
	}
}

func TestTargetedCommands(t *testing.T) {
	ctx := context.Background()
	w := WindowTarget{Session: "proj", Window: 1}
	p := PaneTarget{WindowTarget: w, Pane: 2}

	tests := []struct {
		name string
		run  func(*TmuxCommand) error
		want []string
	}{
		{"split", func(c *TmuxCommand) error { return c.SplitWindow(ctx, w, "/h/proj/src") }, []string{"split-window", "-t", "proj:1", "-c", "/h/proj/src"}},
		{"layout", func(c *TmuxCommand) error { return c.SelectLayout(ctx, w, "tiled") }, []string{"select-layout", "-t", "proj:1", "tiled"}},
		{"select pane", func(c *TmuxCommand) error { return c.SelectPane(ctx, p) }, []string{"select-pane", "-t", "proj:1.2"}},
		{"select window", func(c *TmuxCommand) error { return c.SelectWindow(ctx, w) }, []string{"select-window", "-t", "proj:1"}},
		{"kill window", func(c *TmuxCommand) error { return c.KillWindow(ctx, w) }, []string{"kill-window", "-t", "proj:1"}},
		{"rename window", func(c *TmuxCommand) error { return c.RenameWindow(ctx, w, "edit") }, []string{"rename-window", "-t", "proj:1", "edit"}},
		{"switch client", func(c *TmuxCommand) error { return c.SwitchClient(ctx, "proj") }, []string{"switch-client", "-t", "=proj"}},
		{"attach", func(c *TmuxCommand) error { return c.AttachSession(ctx, "proj") }, []string{"attach-session", "-t", "=proj"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockExecutor()
			if err := tt.run(newTestCommand(m)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(m.calls) != 1 {
				t.Fatalf("expected 1 call, got %d", len(m.calls))
			}
			if m.calls[0].name != "tmux" {
				t.Errorf("binary = %q, want tmux", m.calls[0].name)
			}
			if !reflect.DeepEqual(m.calls[0].args, tt.want) {
				t.Errorf("args = %v, want %v", m.calls[0].args, tt.want)
			}
		})
	}
}

func TestOperationErrorWrapsExitError(t *testing.T) {
	m := newMockExecutor()
	m.errs["kill-window"] = exitErr("can't find window: 9")
	err := newTestCommand(m).KillWindow(context.Background(), WindowTarget{Session: "proj", Window: 9})

	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got %v", err)
	}
	var exit *command.ExitError
	if !errors.As(err, &exit) {
		t.Fatal("OperationError should unwrap to the ExitError")
	}
	if exit.Stderr != "can't find window: 9" {
		t.Errorf("stderr = %q", exit.Stderr)
	}
}

func TestCustomBinary(t *testing.T) {
	m := newMockExecutor()
	c := NewTmuxCommand("/opt/tmux", m, nil)
	if _, err := c.HasSession(context.Background(), "proj"); err != nil {
		t.Fatalf("HasSession() error = %v", err)
	}
	if m.calls[0].name != "/opt/tmux" {
		t.Errorf("binary = %q, want /opt/tmux", m.calls[0].name)
	}
}

func TestCheckAvailable(t *testing.T) {
	tests := []struct {
		name    string
		command string
		wantErr bool
	}{
		{"on PATH", "tmux", false},
		{"missing", "/opt/missing/tmux", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockExecutor()
			err := NewTmuxCommand(tt.command, m, nil).CheckAvailable()
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckAvailable() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, system.ErrEnvironmentMissing) {
				t.Errorf("expected ErrEnvironmentMissing, got %v", err)
			}
			if len(m.calls) != 0 {
				t.Errorf("CheckAvailable() must not run tmux, got %v", m.calls)
			}
		})
	}
}

func TestAttachUsesConfiguredStreams(t *testing.T) {
	m := newMockExecutor()
	c := newTestCommand(m)
	var out strings.Builder
	c.SetStreams(strings.NewReader(""), &out, &out)

	if err := c.AttachSession(context.Background(), "proj"); err != nil {
		t.Fatalf("AttachSession() error = %v", err)
	}
	if m.calls[0].stdout != &out {
		t.Error("attach should hand the configured stdout to tmux")
	}
}

func TestHandoffRunsBeforeInteractiveCommands(t *testing.T) {
	m := newMockExecutor()
	c := newTestCommand(m)
	var order []string
	c.OnHandoff(func() { order = append(order, fmt.Sprintf("handoff after %d calls", len(m.calls))) })

	if _, err := c.HasSession(context.Background(), "proj"); err != nil {
		t.Fatalf("HasSession() error = %v", err)
	}
	if err := c.AttachSession(context.Background(), "proj"); err != nil {
		t.Fatalf("AttachSession() error = %v", err)
	}

	want := []string{"handoff after 1 calls"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("handoff = %v, want %v", order, want)
	}
}
