package command

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Runner defines the interface for running external commands.
// This allows mocking exec.Command in tests.
type Runner interface {
	// Output runs the command and returns stdout. Stderr is returned inside
	// the error when the command fails.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)

	// CombinedOutput runs the command and returns stdout and stderr interleaved
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner is the production implementation using os/exec
type ExecRunner struct{}

// Output executes a command and returns its stdout
func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return out, &Error{Name: name, Stderr: stderr.String(), Err: err}
	}
	return out, nil
}

// CombinedOutput executes a command and returns everything it printed
func (r *ExecRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Error carries the stderr of a failed command
type Error struct {
	Name   string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	if e.Stderr == "" {
		return e.Name + ": " + e.Err.Error()
	}
	return e.Name + ": " + e.Err.Error() + ", stderr: " + e.Stderr
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit status carried by err, or -1 when the
// process never ran or did not exit normally
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Ensure ExecRunner implements Runner
var _ Runner = (*ExecRunner)(nil)
