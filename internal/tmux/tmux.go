// Package tmux is the only place that runs the tmux binary. It turns typed
// requests into tmux argument vectors and parses tmux's formatted output.
package tmux

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/d-kuro/tici/pkg/command"
	"github.com/d-kuro/tici/pkg/models"
	"github.com/d-kuro/tici/pkg/system"
	"go.uber.org/zap"
)

// sentinel prefixes fields that may be empty or start with whitespace.
const sentinel = ":"

const (
	windowFormat = "#{session_name}\t#{window_index}\t" + sentinel + "#{window_name}\t#{window_active}\t#{window_layout}"
	paneFormat   = "#{pane_index}\t#{pane_title}\t" + sentinel + "#{pane_current_path}\t#{pane_active}\t#{pane_current_command}\t#{pane_pid}\t#{history_size}"

	windowFormatFields = 5
	paneFormatFields   = 6
)

// OperationError reports a tmux invocation that ran and exited non-zero.
type OperationError struct {
	Op     string
	Target string
	Err    error
}

func (e *OperationError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("tmux %s failed", e.Op)
	}
	return fmt.Sprintf("tmux %s failed for %s", e.Op, e.Target)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// MalformedOutputError reports a line of tmux output with too few fields.
type MalformedOutputError struct {
	Op   string
	Line string
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("unexpected tmux %s output: %q", e.Op, e.Line)
}

// TmuxCommand drives tmux through its command line interface.
type TmuxCommand struct {
	command  string
	executor command.CommandExecutor
	logger   *zap.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// handoff runs before tmux takes over the terminal.
	handoff func()
}

// NewTmuxCommand creates a driver for the given tmux binary.
func NewTmuxCommand(cmd string, executor command.CommandExecutor, logger *zap.Logger) *TmuxCommand {
	if cmd == "" {
		cmd = "tmux"
	}
	if executor == nil {
		executor = command.NewStandardExecutor()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TmuxCommand{
		command:  cmd,
		executor: executor,
		logger:   logger,
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
}

// SetStreams replaces the terminal streams handed to interactive commands.
func (t *TmuxCommand) SetStreams(stdin io.Reader, stdout, stderr io.Writer) {
	t.stdin, t.stdout, t.stderr = stdin, stdout, stderr
}

// OnHandoff registers fn to run before each interactive command, letting
// callers finish their own output while they still own the terminal.
func (t *TmuxCommand) OnHandoff(fn func()) {
	t.handoff = fn
}

// CheckAvailable reports a missing tmux binary before any session work
// starts.
func (t *TmuxCommand) CheckAvailable() error {
	path, err := t.executor.LookPath(t.command)
	if err != nil {
		return fmt.Errorf("%w: %s not found in PATH", system.ErrEnvironmentMissing, t.command)
	}
	t.logger.Debug("tmux found", zap.String("path", path))
	return nil
}

// HasSession reports whether a session with exactly this name exists.
func (t *TmuxCommand) HasSession(ctx context.Context, name string) (bool, error) {
	target, err := sessionTarget(name)
	if err != nil {
		return false, err
	}
	err = t.run(ctx, "has-session", "-t", target)
	if err == nil {
		return true, nil
	}
	var exitErr *command.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, t.launchError(err)
}

// ListWindows returns the windows of a session, without panes.
func (t *TmuxCommand) ListWindows(ctx context.Context, session string) ([]models.Window, error) {
	target, err := sessionTarget(session)
	if err != nil {
		return nil, err
	}
	out, err := t.output(ctx, "list-windows", "-t", target, "-F", windowFormat)
	if err != nil {
		return nil, t.opError("list-windows", session, err)
	}

	var windows []models.Window
	for _, line := range outputLines(out) {
		w, err := parseWindowLine(line)
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, nil
}

// ListPanes returns the panes of a window.
func (t *TmuxCommand) ListPanes(ctx context.Context, target WindowTarget) ([]models.Pane, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	out, err := t.output(ctx, "list-panes", "-t", target.String(), "-F", paneFormat)
	if err != nil {
		return nil, t.opError("list-panes", target.String(), err)
	}

	var panes []models.Pane
	for _, line := range outputLines(out) {
		p, err := parsePaneLine(line)
		if err != nil {
			return nil, err
		}
		panes = append(panes, p)
	}
	return panes, nil
}

// NewSession creates a session. A detached session returns once tmux has
// created it; an attached one hands the terminal to tmux and returns when
// the client exits.
func (t *TmuxCommand) NewSession(ctx context.Context, name string, detached bool, dir string) error {
	if err := validateSessionName(name); err != nil {
		return err
	}
	args := []string{"new-session"}
	if detached {
		args = append(args, "-d")
	}
	args = append(args, "-s", name)
	if dir != "" {
		args = append(args, "-c", dir)
	}

	if detached {
		if err := t.run(ctx, args...); err != nil {
			return t.opError("new-session", name, err)
		}
		return nil
	}
	if err := t.interactive(ctx, args...); err != nil {
		return t.opError("new-session", name, err)
	}
	return nil
}

// NewWindow creates a window at the requested index and returns the index
// tmux actually assigned, which differs when tmux renumbers windows.
func (t *TmuxCommand) NewWindow(ctx context.Context, session string, index int, name, dir string) (int, error) {
	target, err := NewWindowTarget(session, index)
	if err != nil {
		return 0, err
	}
	args := []string{"new-window", "-d", "-P", "-F", "#{window_index}", "-t", target.String()}
	if name != "" {
		args = append(args, "-n", name)
	}
	if dir != "" {
		args = append(args, "-c", dir)
	}

	out, err := t.output(ctx, args...)
	if err != nil {
		return 0, t.opError("new-window", target.String(), err)
	}
	created, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		t.logger.Debug("new-window printed no index, assuming requested",
			zap.String("target", target.String()), zap.String("output", out))
		return index, nil
	}
	return created, nil
}

// SplitWindow adds a pane to the window, started in dir. The new pane
// becomes the window's active pane so repeated splits keep creation order.
func (t *TmuxCommand) SplitWindow(ctx context.Context, target WindowTarget, dir string) error {
	if err := target.Validate(); err != nil {
		return err
	}
	args := []string{"split-window", "-t", target.String()}
	if dir != "" {
		args = append(args, "-c", dir)
	}
	if err := t.run(ctx, args...); err != nil {
		return t.opError("split-window", target.String(), err)
	}
	return nil
}

// RenameWindow sets the window name. tmux stops renaming the window after
// its running command from then on.
func (t *TmuxCommand) RenameWindow(ctx context.Context, target WindowTarget, name string) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if err := t.run(ctx, "rename-window", "-t", target.String(), name); err != nil {
		return t.opError("rename-window", target.String(), err)
	}
	return nil
}

// SelectLayout applies a layout token verbatim.
func (t *TmuxCommand) SelectLayout(ctx context.Context, target WindowTarget, layout string) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if err := t.run(ctx, "select-layout", "-t", target.String(), layout); err != nil {
		return t.opError("select-layout", target.String(), err)
	}
	return nil
}

// SelectPane makes the pane active in its window.
func (t *TmuxCommand) SelectPane(ctx context.Context, target PaneTarget) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if err := t.run(ctx, "select-pane", "-t", target.String()); err != nil {
		return t.opError("select-pane", target.String(), err)
	}
	return nil
}

// SelectWindow makes the window current in its session.
func (t *TmuxCommand) SelectWindow(ctx context.Context, target WindowTarget) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if err := t.run(ctx, "select-window", "-t", target.String()); err != nil {
		return t.opError("select-window", target.String(), err)
	}
	return nil
}

// KillWindow destroys a window and its panes.
func (t *TmuxCommand) KillWindow(ctx context.Context, target WindowTarget) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if err := t.run(ctx, "kill-window", "-t", target.String()); err != nil {
		return t.opError("kill-window", target.String(), err)
	}
	return nil
}

// AttachSession attaches the current terminal and blocks until the client
// detaches or the session ends.
func (t *TmuxCommand) AttachSession(ctx context.Context, name string) error {
	target, err := sessionTarget(name)
	if err != nil {
		return err
	}
	if err := t.interactive(ctx, "attach-session", "-t", target); err != nil {
		return t.opError("attach-session", name, err)
	}
	return nil
}

// SwitchClient moves the current tmux client to the session.
func (t *TmuxCommand) SwitchClient(ctx context.Context, name string) error {
	target, err := sessionTarget(name)
	if err != nil {
		return err
	}
	if err := t.run(ctx, "switch-client", "-t", target); err != nil {
		return t.opError("switch-client", name, err)
	}
	return nil
}

func (t *TmuxCommand) run(ctx context.Context, args ...string) error {
	start := time.Now()
	err := t.executor.Execute(ctx, t.command, args...)
	t.logInvocation(args, start, err)
	return err
}

func (t *TmuxCommand) output(ctx context.Context, args ...string) (string, error) {
	start := time.Now()
	out, err := t.executor.ExecuteWithOutput(ctx, t.command, args...)
	t.logInvocation(args, start, err)
	return out, err
}

// interactive runs tmux on the user's terminal. The call is detached from
// ctx cancellation: an attached client lives as long as the user wants it.
func (t *TmuxCommand) interactive(ctx context.Context, args ...string) error {
	if t.handoff != nil {
		t.handoff()
	}
	start := time.Now()
	err := t.executor.ExecuteWithStreams(context.WithoutCancel(ctx), t.stdin, t.stdout, t.stderr, t.command, args...)
	t.logInvocation(args, start, err)
	return err
}

func (t *TmuxCommand) logInvocation(args []string, start time.Time, err error) {
	fields := []zap.Field{
		zap.String("command", t.command),
		zap.Strings("args", args),
		zap.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	t.logger.Debug("tmux", fields...)
}

// opError classifies a failed invocation: non-zero exits become
// OperationError, everything else is a launch failure.
func (t *TmuxCommand) opError(op, target string, err error) error {
	var exitErr *command.ExitError
	if errors.As(err, &exitErr) {
		return &OperationError{Op: op, Target: target, Err: err}
	}
	return t.launchError(err)
}

func (t *TmuxCommand) launchError(err error) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %s not found in PATH", system.ErrEnvironmentMissing, t.command)
	}
	return fmt.Errorf("launching %s: %w", t.command, err)
}

func outputLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func parseWindowLine(line string) (models.Window, error) {
	parts := strings.Split(line, "\t")
	if len(parts) < windowFormatFields {
		return models.Window{}, &MalformedOutputError{Op: "list-windows", Line: line}
	}
	index, err := strconv.Atoi(parts[1])
	if err != nil {
		return models.Window{}, &MalformedOutputError{Op: "list-windows", Line: line}
	}
	return models.Window{
		SessionName: parts[0],
		Index:       index,
		Name:        stripSentinel(parts[2]),
		Active:      parts[3] == "1",
		Layout:      parts[4],
	}, nil
}

func parsePaneLine(line string) (models.Pane, error) {
	parts := strings.Split(line, "\t")
	if len(parts) < paneFormatFields {
		return models.Pane{}, &MalformedOutputError{Op: "list-panes", Line: line}
	}
	index, err := strconv.Atoi(parts[0])
	if err != nil {
		return models.Pane{}, &MalformedOutputError{Op: "list-panes", Line: line}
	}
	p := models.Pane{
		Index:          index,
		Title:          parts[1],
		CurrentPath:    stripSentinel(parts[2]),
		Active:         parts[3] == "1",
		CurrentCommand: parts[4],
		PID:            atoiOrZero(parts[5]),
	}
	if len(parts) > paneFormatFields {
		p.HistorySize = atoiOrZero(parts[6])
	}
	return p, nil
}

func stripSentinel(s string) string {
	return strings.TrimPrefix(s, sentinel)
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
