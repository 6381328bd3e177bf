package engine

import (
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"

	cberrors "github.com/carrybak/carrybak/internal/errors"
)

// Summary aggregates a run's per-source results into the verdict that
// drives the process exit code.
type Summary struct {
	Profile string
	RunDir  string

	// Sources is the number of copy operations attempted after glob
	// expansion. Skipped counts optional sources that were absent.
	Sources int
	Skipped int

	// Soft counts benign partial transfers; they do not fail the run.
	// Hard counts real transfer failures and missing required sources.
	Soft int
	Hard int

	// HookFailures counts failed post-restore validation hooks. They weigh
	// like hard failures in the restore verdict.
	HookFailures int

	ArchiveFatal bool
	Cancelled    bool
	Interrupted  bool

	Started  time.Time
	Finished time.Time
}

// Failed reports whether the run must exit non-zero.
func (s *Summary) Failed() bool {
	return s.Hard > 0 || s.HookFailures > 0 || s.ArchiveFatal
}

// Clean reports whether retention rotation may run: every transfer landed
// and the archive, if requested, was produced.
func (s *Summary) Clean() bool {
	return !s.Failed() && !s.Interrupted && !s.Cancelled
}

// Err maps the summary to the error the command layer turns into an exit
// code: nil for success and clean cancellation, ErrInterrupted for signals,
// a transfer/archive error otherwise.
func (s *Summary) Err() error {
	switch {
	case s.Interrupted:
		return cberrors.ErrInterrupted
	case s.Cancelled:
		return nil
	case s.ArchiveFatal:
		return errors.Wrapf(cberrors.ErrArchiveFatal, "profile %s", s.Profile)
	case s.Hard > 0 || s.HookFailures > 0:
		return errors.Wrapf(cberrors.ErrTransferFailed,
			"profile %s: %d failed", s.Profile, s.Hard+s.HookFailures)
	default:
		return nil
	}
}

// Log writes the one-line verdict. Called exactly once per run, including
// runs that abort after the summary exists.
func (s *Summary) Log(logger *slog.Logger) {
	attrs := []any{
		"profile", s.Profile,
		"sources", s.Sources,
		"skipped", s.Skipped,
		"soft", s.Soft,
		"hard", s.Hard,
		"elapsed", s.Finished.Sub(s.Started).Round(time.Millisecond),
	}
	switch {
	case s.Interrupted:
		logger.Warn("run interrupted", attrs...)
	case s.Cancelled:
		logger.Info("run cancelled", attrs...)
	case s.Failed():
		logger.Error("run finished with failures", attrs...)
	default:
		logger.Info("run complete", attrs...)
	}
}
