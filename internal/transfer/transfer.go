package transfer

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/carrybak/carrybak/internal/cmdrun"
	cberrors "github.com/carrybak/carrybak/internal/errors"
)

// Status classifies the outcome of one copy operation.
type Status int

const (
	// StatusSuccess means the tool exited zero.
	StatusSuccess Status = iota

	// StatusSoft means the tool reported a benign partial transfer (files
	// vanished or changed mid-copy). Counts as success for aggregation.
	StatusSoft

	// StatusHard means any other non-zero exit, or a missing source.
	// Counted against the run; the loop continues to the next source.
	StatusHard
)

// Result is the per-source outcome. Never discarded: the engine aggregates
// these into the run verdict.
type Result struct {
	Status  Status
	Code    int
	Message string
}

// Options configures one copy operation.
type Options struct {
	// Excludes are rsync exclude patterns for this invocation.
	Excludes []string

	// Elevated routes the copy through sudo. Privilege must be
	// pre-authorized before the transfer loop starts.
	Elevated bool

	// Mirror adds --delete-delay so target files absent from the source are
	// removed. Strictly for the restore direction.
	Mirror bool
}

// Executor runs rsync copies and classifies their exit codes.
type Executor struct {
	runner    cmdrun.Runner
	logger    *slog.Logger
	rsync     string
	sudo      string
	softCodes map[int]struct{}
}

// NewExecutor builds an Executor. softCodes is the configured set of rsync
// exit codes treated as benign partial transfers (defaults live in the
// config package, not here).
func NewExecutor(runner cmdrun.Runner, logger *slog.Logger, rsync, sudo string, softCodes []int) *Executor {
	soft := make(map[int]struct{}, len(softCodes))
	for _, c := range softCodes {
		soft[c] = struct{}{}
	}
	return &Executor{
		runner:    runner,
		logger:    logger,
		rsync:     rsync,
		sudo:      sudo,
		softCodes: soft,
	}
}

// CheckTool verifies the transfer tool is installed.
func (e *Executor) CheckTool() error {
	if _, err := e.runner.LookPath(e.rsync); err != nil {
		return errors.Wrapf(cberrors.ErrToolMissing, "%s not found", e.rsync)
	}
	return nil
}

// baseArgs requests archive-mode copy preserving hard links, ACLs, and
// xattrs, with numeric ids, sparse-file awareness, and summary-only stats.
func (e *Executor) baseArgs() []string {
	return []string{"-aHAX", "--numeric-ids", "--sparse", "--info=stats1"}
}

// Copy transfers src into destDir. A missing source is reported as a hard
// failure without invoking the tool.
func (e *Executor) Copy(ctx context.Context, src, destDir string, opts Options) Result {
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			e.logger.Error("source not found", "path", src)
			return Result{Status: StatusHard, Message: "source not found: " + src}
		}
		e.logger.Error("source not readable", "path", src, "error", err)
		return Result{Status: StatusHard, Message: err.Error()}
	}

	args := e.baseArgs()
	if opts.Mirror {
		args = append(args, "--delete-delay")
	}
	for _, pattern := range opts.Excludes {
		args = append(args, "--exclude", pattern)
	}
	args = append(args, src, destDir+"/")

	name := e.rsync
	if opts.Elevated {
		args = append([]string{e.rsync}, args...)
		name = e.sudo
	}

	out, err := e.runner.Run(ctx, name, args...)
	if err != nil {
		e.logger.Error("rsync could not run", "error", err)
		return Result{Status: StatusHard, Message: err.Error()}
	}

	if stderr := strings.TrimSpace(out.Stderr); stderr != "" {
		for _, line := range strings.Split(stderr, "\n") {
			e.logger.Error("rsync: " + line)
		}
	}

	switch {
	case out.ExitCode == 0:
		return Result{Status: StatusSuccess}
	case e.isSoft(out.ExitCode):
		e.logger.Warn("rsync returned partial transfer code; continuing",
			"code", out.ExitCode, "source", src)
		return Result{Status: StatusSoft, Code: out.ExitCode}
	default:
		e.logger.Error("rsync failed", "code", out.ExitCode, "source", src)
		return Result{
			Status:  StatusHard,
			Code:    out.ExitCode,
			Message: strings.TrimSpace(out.Stderr),
		}
	}
}

func (e *Executor) isSoft(code int) bool {
	_, ok := e.softCodes[code]
	return ok
}
