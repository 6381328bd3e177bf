package engine

import (
	"context"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/carrybak/carrybak/internal/archive"
	"github.com/carrybak/carrybak/internal/cmdrun"
	"github.com/carrybak/carrybak/internal/config"
	"github.com/carrybak/carrybak/internal/destination"
	cberrors "github.com/carrybak/carrybak/internal/errors"
	"github.com/carrybak/carrybak/internal/gate"
	"github.com/carrybak/carrybak/internal/hooks"
	"github.com/carrybak/carrybak/internal/logging"
	"github.com/carrybak/carrybak/internal/manifest"
	"github.com/carrybak/carrybak/internal/paths"
	"github.com/carrybak/carrybak/internal/privilege"
	"github.com/carrybak/carrybak/internal/profile"
	"github.com/carrybak/carrybak/internal/retention"
	"github.com/carrybak/carrybak/internal/transfer"
)

// timestampLayout names run directories. Lexical order equals creation
// order, which retention relies on only as a tiebreaker (mtime is
// authoritative).
const timestampLayout = "20060102T150405"

// Engine orchestrates backup and restore runs. It is profile-agnostic:
// everything target-specific arrives as profile data.
type Engine struct {
	cfg      *config.Config
	logger   *slog.Logger
	runner   cmdrun.Runner
	resolver *destination.Resolver

	transfers *transfer.Executor
	builder   *archive.Builder
	priv      *privilege.Checker

	home     string
	username string

	// now is injectable so tests control run directory names.
	now func() time.Time
}

// New wires an Engine from the loaded configuration. The runner is injected
// so tests never spawn real processes.
func New(cfg *config.Config, logger *slog.Logger, runner cmdrun.Runner, resolver *destination.Resolver) *Engine {
	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	return &Engine{
		cfg:      cfg,
		logger:   logger,
		runner:   runner,
		resolver: resolver,
		transfers: transfer.NewExecutor(runner, logger,
			cfg.Tools.Rsync, cfg.Tools.Sudo, cfg.Tools.RsyncSoftCodes),
		builder: archive.NewBuilder(runner, logger,
			cfg.Tools.Tar, cfg.Tools.Pigz, cfg.Tools.Sudo, cfg.Tools.TarWarnCodes),
		priv:     privilege.NewChecker(runner, cfg.Tools.Sudo),
		home:     paths.Home(),
		username: username,
		now:      time.Now,
	}
}

// BackupOptions parameterizes one backup run.
type BackupOptions struct {
	Dest destination.Destination

	// Keep overrides the retention count when non-nil.
	Keep *int

	// NoCompress skips the archive step, leaving the run directory as-is.
	NoCompress bool

	// ManifestOnly writes the manifests and stops before any transfer.
	ManifestOnly bool

	// LogDir redirects the run log out of the run directory.
	LogDir string
}

// Backup executes one backup run for prof into opts.Dest. The returned
// Summary is valid even when err is non-nil; err carries the exit semantics.
func (e *Engine) Backup(ctx context.Context, prof profile.Profile, opts BackupOptions) (*Summary, error) {
	prof = prof.ExpandHome(e.home)
	sum := &Summary{Profile: prof.Name, Started: e.now()}

	if err := e.transfers.CheckTool(); err != nil {
		return sum, err
	}
	if !opts.NoCompress && !opts.ManifestOnly {
		if err := e.builder.CheckTools(); err != nil {
			return sum, err
		}
	}

	if anyElevated(prof) {
		if err := e.priv.Ensure(ctx); err != nil {
			return sum, err
		}
	}

	minFree := prof.MinFreeGB
	if minFree == 0 {
		minFree = e.cfg.MinFreeGB
	}
	if err := e.resolver.CheckFreeSpace(opts.Dest, minFree); err != nil {
		return sum, err
	}

	ts := e.now().Format(timestampLayout)
	runName := prof.Prefix + "-" + ts
	runDir := filepath.Join(opts.Dest.Path, prof.Subpath, runName)
	if err := os.MkdirAll(runDir, paths.DefaultDirPerm); err != nil {
		return sum, errors.Wrapf(err, "creating run directory %s", runDir)
	}
	sum.RunDir = runDir

	logDir := runDir
	if opts.LogDir != "" {
		logDir = opts.LogDir
	}
	logPath := filepath.Join(logDir, runName+".log")
	logger, closeLog := e.runLogger(logPath)
	defer closeLog()

	logger.Info("starting backup", "profile", prof.Name, "dir", runDir)
	archived := false
	defer func() {
		sum.Finished = e.now()
		sum.Log(logger)
		e.writeRunInfo(filepath.Join(runDir, "manifest.json"), prof, sum, archived)
		if err := manifest.TrimLog(logPath, e.cfg.Log.MaxBytes, e.cfg.Log.MaxLines); err != nil {
			e.logger.Warn("could not trim log", "path", logPath, "error", err)
		}
	}()

	e.writeSourceList(runDir, prof, ts)
	if opts.ManifestOnly {
		logger.Info("manifest-only run; skipping transfers")
		return sum, nil
	}

	e.copySources(ctx, logger, prof, runDir, sum)
	if sum.Interrupted {
		return sum, sum.Err()
	}

	if !opts.NoCompress {
		archivePath := filepath.Join(runDir, runName+".tar.gz")
		err := e.builder.Build(ctx, runDir, archivePath, archive.Options{
			Excludes: []string{"./" + runName + ".log", "./" + runName + ".tar.gz"},
			Elevated: anyElevated(prof),
			ChownTo:  e.chownSpec(),
		})
		if err != nil {
			if ctx.Err() != nil {
				sum.Interrupted = true
				logger.Warn("interrupted during compression",
					"cause", context.Cause(ctx).Error())
				return sum, sum.Err()
			}
			logger.Error("archive failed", "error", err)
			sum.ArchiveFatal = true
		} else {
			archived = true
		}
	}

	if sum.Clean() {
		keep := e.keepCount(prof, opts.Keep)
		root := filepath.Join(opts.Dest.Path, prof.Subpath)
		if err := retention.Rotate(root, prof.Prefix, keep, logger); err != nil {
			logger.Warn("rotation failed", "error", err)
		}
	} else {
		logger.Info("skipping rotation after imperfect run")
	}

	return sum, sum.Err()
}

// RestoreOptions parameterizes one restore run.
type RestoreOptions struct {
	// RunDir is the stored run to restore from.
	RunDir string

	Gate      *gate.Gate
	NoRestart bool
	LogDir    string
}

// Restore copies a stored run's contents back to their original locations
// and runs the profile's post-restore hooks. The safety gate resolves before
// anything is touched, including sudo validation.
func (e *Engine) Restore(ctx context.Context, prof profile.Profile, opts RestoreOptions) (*Summary, error) {
	prof = prof.ExpandHome(e.home)
	sum := &Summary{Profile: prof.Name, RunDir: opts.RunDir, Started: e.now()}

	state, err := opts.Gate.Confirm(
		"Restore " + prof.Name + " from " + opts.RunDir + " over current files")
	if err != nil {
		return sum, errors.Wrap(err, "reading confirmation")
	}
	if state != gate.Confirmed {
		sum.Cancelled = true
		sum.Finished = e.now()
		sum.Log(e.logger)
		return sum, nil
	}

	if err := e.transfers.CheckTool(); err != nil {
		return sum, err
	}
	if anyElevated(prof) || anyElevatedHook(prof) {
		if err := e.priv.Ensure(ctx); err != nil {
			return sum, err
		}
	}

	logDir := opts.LogDir
	if logDir == "" {
		logDir = opts.RunDir
	}
	logPath := filepath.Join(logDir, "restore-"+e.now().Format(timestampLayout)+".log")
	logger, closeLog := e.runLogger(logPath)
	defer closeLog()

	logger.Info("starting restore", "profile", prof.Name, "from", opts.RunDir)
	defer func() {
		sum.Finished = e.now()
		sum.Log(logger)
		if err := manifest.TrimLog(logPath, e.cfg.Log.MaxBytes, e.cfg.Log.MaxLines); err != nil {
			e.logger.Warn("could not trim log", "path", logPath, "error", err)
		}
	}()

	for _, src := range prof.Sources {
		if interrupted(ctx, logger, sum) {
			return sum, sum.Err()
		}

		stored := filepath.Join(opts.RunDir, filepath.Base(src.Path))
		if _, err := os.Stat(stored); err != nil {
			if src.Optional {
				logger.Info("not in this run; skipping", "path", stored)
				sum.Skipped++
				continue
			}
			logger.Error("missing from run", "path", stored)
			sum.Sources++
			sum.Hard++
			continue
		}

		sum.Sources++
		target := filepath.Dir(src.Path)
		res := e.transfers.Copy(ctx, stored, target, transfer.Options{
			Excludes: append(append([]string{}, prof.CommonExcludes...), src.Excludes...),
			Elevated: src.Elevated,
			Mirror:   prof.RestoreMirror,
		})
		e.tally(sum, res)
	}
	if sum.Interrupted {
		return sum, sum.Err()
	}

	if len(prof.PostRestore) > 0 {
		hr := hooks.NewRunner(e.runner, logger, e.cfg.Tools.Sudo, e.home)
		hr.NoRestart = opts.NoRestart
		res := hr.Run(ctx, prof.PostRestore)
		sum.HookFailures += res.Failed
	}

	return sum, sum.Err()
}

// copySources runs the transfer loop: glob expansion, optional-source
// skipping, per-source classification. The loop never stops on a hard
// failure; the verdict is aggregated.
func (e *Engine) copySources(ctx context.Context, logger *slog.Logger, prof profile.Profile, runDir string, sum *Summary) {
	for _, src := range prof.Sources {
		if interrupted(ctx, logger, sum) {
			return
		}

		expanded, optionalMiss := expandSource(src)
		if optionalMiss {
			logger.Info("optional source absent; skipping", "path", src.Path)
			sum.Skipped++
			continue
		}

		for _, path := range expanded {
			if interrupted(ctx, logger, sum) {
				return
			}
			sum.Sources++
			res := e.transfers.Copy(ctx, path, runDir, transfer.Options{
				Excludes: append(append([]string{}, prof.CommonExcludes...), src.Excludes...),
				Elevated: src.Elevated,
			})
			e.tally(sum, res)
		}
	}
}

func (e *Engine) tally(sum *Summary, res transfer.Result) {
	switch res.Status {
	case transfer.StatusSoft:
		sum.Soft++
	case transfer.StatusHard:
		sum.Hard++
	}
}

// expandSource resolves glob metacharacters in a source path. A pattern with
// no matches is reported as an optional miss or falls through as the literal
// path so the executor records the hard failure.
func expandSource(src profile.SourceSpec) (expanded []string, optionalMiss bool) {
	if !strings.ContainsAny(src.Path, "*?[") {
		if src.Optional {
			if _, err := os.Stat(src.Path); err != nil {
				return nil, true
			}
		}
		return []string{src.Path}, false
	}

	matches, err := filepath.Glob(src.Path)
	if err != nil || len(matches) == 0 {
		if src.Optional {
			return nil, true
		}
		return []string{src.Path}, false
	}
	return matches, false
}

// writeSourceList records the declared sources and excludes before any
// transfer starts. Best-effort.
func (e *Engine) writeSourceList(runDir string, prof profile.Profile, ts string) {
	var items []string
	items = append(items, "Sources:")
	for _, s := range prof.Sources {
		items = append(items, "  "+s.Path)
	}
	if len(prof.CommonExcludes) > 0 {
		items = append(items, "", "Excludes:")
		for _, x := range prof.CommonExcludes {
			items = append(items, "  "+x)
		}
	}
	manifest.Write(filepath.Join(runDir, "sources.txt"),
		prof.Name+" backup "+ts, items, e.logger)
}

// writeRunInfo records the machine-readable run outcome once the verdict is
// settled. Best-effort.
func (e *Engine) writeRunInfo(path string, prof profile.Profile, sum *Summary, archived bool) {
	host, _ := os.Hostname()
	sources := make([]string, len(prof.Sources))
	for i, s := range prof.Sources {
		sources[i] = s.Path
	}
	manifest.WriteInfo(path, manifest.Info{
		Profile:    prof.Name,
		StartedAt:  sum.Started,
		FinishedAt: sum.Finished,
		Host:       host,
		Sources:    sources,
		Soft:       sum.Soft,
		Hard:       sum.Hard,
		Archived:   archived,
	}, e.logger)
}

// runLogger fans the engine's console handler out to a per-run JSON log
// file. When the file cannot be opened the console logger is used alone.
func (e *Engine) runLogger(path string) (*slog.Logger, func()) {
	// --log-dir may name a directory that does not exist yet.
	if err := os.MkdirAll(filepath.Dir(path), paths.DefaultDirPerm); err != nil {
		e.logger.Warn("could not create log directory",
			"dir", filepath.Dir(path), "error", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		e.logger.Warn("could not open run log", "path", path, "error", err)
		return e.logger, func() {}
	}
	fileHandler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(logging.NewMultiHandler(e.logger.Handler(), fileHandler))
	return logger, func() { f.Close() }
}

func (e *Engine) keepCount(prof profile.Profile, override *int) int {
	if override != nil {
		return *override
	}
	if prof.Keep != 0 {
		return prof.Keep
	}
	return e.cfg.Keep
}

// chownSpec is the owner handed archives produced under sudo.
func (e *Engine) chownSpec() string {
	if e.username == "" {
		return ""
	}
	return e.username + ":" + e.username
}

// interrupted reports and records a context cancellation. The caller trims
// the log in its deferred epilogue; the process exits 130.
func interrupted(ctx context.Context, logger *slog.Logger, sum *Summary) bool {
	if ctx.Err() == nil {
		return false
	}
	if !sum.Interrupted {
		logger.Warn("interrupted; stopping", "cause", context.Cause(ctx).Error())
		sum.Interrupted = true
	}
	return true
}

func anyElevated(prof profile.Profile) bool {
	for _, s := range prof.Sources {
		if s.Elevated {
			return true
		}
	}
	return false
}

func anyElevatedHook(prof profile.Profile) bool {
	for _, h := range prof.PostRestore {
		if h.Elevated {
			return true
		}
	}
	return false
}

// Runs lists the stored runs for prof under dest, newest first.
func (e *Engine) Runs(dest destination.Destination, prof profile.Profile) ([]retention.Run, error) {
	root := filepath.Join(dest.Path, prof.Subpath)
	runs, err := retention.List(root, prof.Prefix)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, errors.Wrapf(cberrors.ErrNoRunsFound,
			"no %s runs under %s", prof.Name, root)
	}
	return runs, nil
}
