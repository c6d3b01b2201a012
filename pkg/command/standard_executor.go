package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
)

// StandardExecutor implements CommandExecutor using os/exec
type StandardExecutor struct{}

// NewStandardExecutor creates a new StandardExecutor
func NewStandardExecutor() *StandardExecutor {
	return &StandardExecutor{}
}

// Execute runs a command and returns error only
func (e *StandardExecutor) Execute(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	return wrapExitError(cmd.Run(), name, args, stderr.String())
}

// ExecuteWithOutput runs a command and returns output and error
func (e *StandardExecutor) ExecuteWithOutput(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", wrapExitError(err, name, args, stderr.String())
	}
	return stdout.String(), nil
}

// ExecuteWithStreams runs a command with custom input/output streams
func (e *StandardExecutor) ExecuteWithStreams(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return wrapExitError(cmd.Run(), name, args, "")
}

// LookPath resolves an executable on PATH
func (e *StandardExecutor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func wrapExitError(err error, name string, args []string, stderr string) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{
			Name:   name,
			Args:   args,
			Code:   exitErr.ExitCode(),
			Stderr: stderr,
			Err:    err,
		}
	}
	return err
}
