package errors

import (
	"errors"
	"fmt"
)

// Exit codes reported to the operating system.
const (
	// ExitSuccess indicates a fully successful run or a clean cancellation.
	ExitSuccess = 0

	// ExitFailure indicates a hard transfer failure, a fatal archive failure,
	// insufficient destination space, a missing required tool, or a failed
	// privilege pre-check.
	ExitFailure = 1

	// ExitInterrupted indicates the run was cut short by SIGINT or SIGTERM.
	// Distinct from ExitFailure so monitoring can tell operator cancellation
	// apart from genuinely failed runs.
	ExitInterrupted = 130
)

// Sentinel errors for the failure taxonomy. Callers classify outcomes with
// errors.Is against these.
var (
	// ErrToolMissing indicates a required external command (rsync, pigz,
	// sudo, systemctl) is not installed.
	ErrToolMissing = errors.New("required tool missing")

	// ErrInsufficientSpace indicates the destination has less free space
	// than the profile's minimum.
	ErrInsufficientSpace = errors.New("insufficient free space")

	// ErrSourceMissing indicates a declared source path does not exist.
	// Recovered locally: counted against the run, loop continues.
	ErrSourceMissing = errors.New("source missing")

	// ErrTransferFailed indicates a hard rsync failure (any non-zero exit
	// code outside the configured soft set).
	ErrTransferFailed = errors.New("transfer failed")

	// ErrArchiveFatal indicates the archive step failed with a code outside
	// the configured warning set. Copied files are preserved.
	ErrArchiveFatal = errors.New("archive failed")

	// ErrPrivilegeDenied indicates sudo could not be pre-authorized.
	ErrPrivilegeDenied = errors.New("privilege denied")

	// ErrUserCancelled indicates the operator declined a confirmation
	// prompt. This is a successful, non-error outcome (exit 0).
	ErrUserCancelled = errors.New("cancelled by user")

	// ErrInterrupted indicates a termination signal arrived mid-run.
	ErrInterrupted = errors.New("interrupted")

	// ErrNoDestination indicates no safe mounted destination was found.
	ErrNoDestination = errors.New("no destination available")

	// ErrInvalidSelection indicates an out-of-range or non-numeric
	// destination choice. Not re-prompted; callers re-invoke if they
	// want another attempt.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrNoRunsFound indicates no backup runs exist for the profile on the
	// selected destination.
	ErrNoRunsFound = errors.New("no backup runs found")
)

// Is reports whether any error in err's chain matches target. Re-exported so
// callers of this package do not need a second errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// ExitError wraps an error with a process exit code. It implements the error
// interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error. May be nil for bare exit codes.
	Err error

	// Code is the exit code to return to the operating system.
	Code int
}

// NewExitError creates an ExitError with the given underlying error and code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// Error returns the underlying error message, or a generic one when Err is nil.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error so errors.Is and errors.As can walk
// the chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode extracts the exit code from an error chain. A nil error maps to
// ExitSuccess, ErrUserCancelled to ExitSuccess, ErrInterrupted to
// ExitInterrupted, and everything else to ExitFailure unless an ExitError
// in the chain says otherwise.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, ErrUserCancelled) {
		return ExitSuccess
	}
	if errors.Is(err, ErrInterrupted) {
		return ExitInterrupted
	}
	return ExitFailure
}
