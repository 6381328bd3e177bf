// Package cmdrun abstracts external process execution behind a small
// interface so exit-code classification can be unit-tested without invoking
// the real tools.
package cmdrun

import (
	"bytes"
	"context"
	"io"
	"os/exec"

	"github.com/cockroachdb/errors"
)

// Output captures what classification needs from a finished process.
type Output struct {
	// ExitCode is the process exit status. Zero on success.
	ExitCode int

	// Stderr holds the captured standard error, trimmed by the caller as
	// needed.
	Stderr string
}

// Runner executes external commands. The engine blocks synchronously on
// every invocation; there is no cancellation of an in-flight process beyond
// what the context delivers.
type Runner interface {
	// Run executes name with args and waits for completion. A non-zero exit
	// status is reported through Output.ExitCode with a nil error; the error
	// is non-nil only when the process could not be started or was cut short
	// by the context.
	Run(ctx context.Context, name string, args ...string) (Output, error)

	// RunInteractive executes name with args attached to the invoking
	// terminal, for commands that may prompt (sudo -v). Returns the exit
	// code like Run.
	RunInteractive(ctx context.Context, name string, args ...string) (Output, error)

	// LookPath reports where name resolves on PATH.
	LookPath(name string) (string, error)
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct {
	// Stdin, Stdout, Stderr are wired to interactive invocations.
	// Zero values mean the parent's streams are not attached.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a Runner that executes real processes. Interactive
// invocations inherit the given streams.
func NewExecRunner(stdin io.Reader, stdout, stderr io.Writer) *ExecRunner {
	return &ExecRunner{Stdin: stdin, Stdout: stdout, Stderr: stderr}
}

// Run implements Runner. Stdout is discarded (the tools are invoked with
// summary-only statistics); stderr is captured for logging.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = io.Discard

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stderr: stderr.String()}

	if err == nil {
		return out, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}

	return out, errors.Wrapf(err, "running %s", name)
}

// RunInteractive implements Runner with the configured terminal streams
// attached, so tools like sudo can prompt.
func (r *ExecRunner) RunInteractive(ctx context.Context, name string, args ...string) (Output, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	err := cmd.Run()
	if err == nil {
		return Output{}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Output{ExitCode: exitErr.ExitCode()}, nil
	}

	return Output{}, errors.Wrapf(err, "running %s", name)
}

// LookPath implements Runner.
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
