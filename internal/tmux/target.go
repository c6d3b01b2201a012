package tmux

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTarget is returned when a target would contain a tmux separator.
var ErrInvalidTarget = errors.New("invalid tmux target")

// WindowTarget addresses a window as "<session>:<window>".
type WindowTarget struct {
	Session string
	Window  int
}

// PaneTarget addresses a pane as "<session>:<window>.<pane>".
type PaneTarget struct {
	WindowTarget
	Pane int
}

// NewWindowTarget builds a validated window target.
func NewWindowTarget(session string, window int) (WindowTarget, error) {
	t := WindowTarget{Session: session, Window: window}
	return t, t.Validate()
}

// NewPaneTarget builds a validated pane target.
func NewPaneTarget(session string, window, pane int) (PaneTarget, error) {
	t := PaneTarget{WindowTarget: WindowTarget{Session: session, Window: window}, Pane: pane}
	return t, t.Validate()
}

// Validate rejects session names containing ':' or '.' and negative indices.
func (t WindowTarget) Validate() error {
	if err := validateSessionName(t.Session); err != nil {
		return err
	}
	if t.Window < 0 {
		return fmt.Errorf("%w: negative window index %d", ErrInvalidTarget, t.Window)
	}
	return nil
}

func (t WindowTarget) String() string {
	return fmt.Sprintf("%s:%d", t.Session, t.Window)
}

// Validate checks the window part and the pane index.
func (t PaneTarget) Validate() error {
	if err := t.WindowTarget.Validate(); err != nil {
		return err
	}
	if t.Pane < 0 {
		return fmt.Errorf("%w: negative pane index %d", ErrInvalidTarget, t.Pane)
	}
	return nil
}

func (t PaneTarget) String() string {
	return fmt.Sprintf("%s.%d", t.WindowTarget.String(), t.Pane)
}

// sessionTarget matches the session name exactly instead of by prefix.
func sessionTarget(name string) (string, error) {
	if err := validateSessionName(name); err != nil {
		return "", err
	}
	return "=" + name, nil
}

func validateSessionName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty session name", ErrInvalidTarget)
	}
	if strings.ContainsAny(name, ":.") {
		return fmt.Errorf("%w: session name %q contains ':' or '.'", ErrInvalidTarget, name)
	}
	return nil
}
