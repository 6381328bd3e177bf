package archive

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/carrybak/carrybak/internal/cmdrun"
	cberrors "github.com/carrybak/carrybak/internal/errors"
)

// Options configures one archive build.
type Options struct {
	// Excludes are paths (relative to the captured directory) left out of
	// the archive, such as the run's log file.
	Excludes []string

	// Elevated routes tar through sudo for runs containing root-owned files.
	Elevated bool

	// ChownTo, when non-empty and Elevated is set, reassigns archive
	// ownership ("user:group") to the invoking user after a successful build.
	ChownTo string
}

// Builder produces a compressed tar archive of a completed run directory
// using a parallel compressor.
type Builder struct {
	runner    cmdrun.Runner
	logger    *slog.Logger
	tar       string
	pigz      string
	sudo      string
	warnCodes map[int]struct{}
}

// NewBuilder constructs a Builder. warnCodes is the configured set of tar
// exit codes treated as completed-with-warnings (files changed during read).
func NewBuilder(runner cmdrun.Runner, logger *slog.Logger, tar, pigz, sudo string, warnCodes []int) *Builder {
	warn := make(map[int]struct{}, len(warnCodes))
	for _, c := range warnCodes {
		warn[c] = struct{}{}
	}
	return &Builder{
		runner:    runner,
		logger:    logger,
		tar:       tar,
		pigz:      pigz,
		sudo:      sudo,
		warnCodes: warn,
	}
}

// CheckTools verifies tar and the compressor are installed. Runs before any
// transfer so a missing compressor aborts the run with nothing to roll back.
func (b *Builder) CheckTools() error {
	if _, err := b.runner.LookPath(b.tar); err != nil {
		return errors.Wrapf(cberrors.ErrToolMissing, "%s not found", b.tar)
	}
	if _, err := b.runner.LookPath(b.pigz); err != nil {
		return errors.Wrapf(cberrors.ErrToolMissing,
			"%s not found; cannot create compressed archive", b.pigz)
	}
	return nil
}

// Build archives everything under sourceDir into archivePath. The archive is
// written to a temporary file in sourceDir's parent (same filesystem, and
// never swept up by tar when archivePath sits inside sourceDir) and renamed
// into place, so a fatal tar failure never leaves a partial archive visible.
// A fatal failure does not touch the transferred files: the uncompressed run
// directory remains a usable backup.
func (b *Builder) Build(ctx context.Context, sourceDir, archivePath string, opts Options) error {
	tmp, err := os.CreateTemp(filepath.Dir(sourceDir), ".carrybak-archive-*.tar.gz")
	if err != nil {
		return errors.Wrap(err, "creating temporary archive")
	}
	tmpName := tmp.Name()
	tmp.Close()

	args := []string{
		"--use-compress-program=" + b.pigz,
		"--warning=no-file-changed",
	}
	for _, pattern := range opts.Excludes {
		args = append(args, "--exclude", pattern)
	}
	args = append(args, "-cpf", tmpName, "-C", sourceDir, ".")

	name := b.tar
	if opts.Elevated {
		args = append([]string{b.tar}, args...)
		name = b.sudo
	}

	out, err := b.runner.Run(ctx, name, args...)
	if err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "running tar")
	}

	if stderr := strings.TrimSpace(out.Stderr); stderr != "" {
		b.logger.Error("tar: " + stderr)
	}

	switch {
	case out.ExitCode == 0:
	case b.isWarn(out.ExitCode):
		b.logger.Warn("compression completed with warnings",
			"dir", sourceDir, "code", out.ExitCode)
	default:
		os.Remove(tmpName)
		return errors.Wrapf(cberrors.ErrArchiveFatal,
			"compression failed for %s (exit %d)", sourceDir, out.ExitCode)
	}

	if err := os.Rename(tmpName, archivePath); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "moving archive into place")
	}

	if opts.Elevated && opts.ChownTo != "" {
		if chownOut, err := b.runner.Run(ctx, b.sudo, "chown", opts.ChownTo, archivePath); err != nil || chownOut.ExitCode != 0 {
			b.logger.Warn("could not reassign archive ownership",
				"path", archivePath, "owner", opts.ChownTo)
		}
	}

	b.logger.Info("compressed archive created", "path", archivePath)
	return nil
}

func (b *Builder) isWarn(code int) bool {
	_, ok := b.warnCodes[code]
	return ok
}
