// Package command runs child processes on behalf of the multiplexer driver.
package command

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// CommandExecutor defines the interface for executing system commands
type CommandExecutor interface {
	// Execute runs a command and returns error only. stdout is discarded,
	// stderr is captured into the returned *ExitError.
	Execute(ctx context.Context, name string, args ...string) error

	// ExecuteWithOutput runs a command and returns its stdout
	ExecuteWithOutput(ctx context.Context, name string, args ...string) (string, error)

	// ExecuteWithStreams runs a command with custom input/output streams
	ExecuteWithStreams(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, name string, args ...string) error

	// LookPath resolves an executable on PATH
	LookPath(name string) (string, error)
}

// ExitError reports a command that started but exited with a non-zero status.
// Failures to start the process are returned unwrapped instead.
type ExitError struct {
	Name   string
	Args   []string
	Code   int
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s %s: exit status %d", e.Name, strings.Join(e.Args, " "), e.Code)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
