// Package hooks runs a profile's post-restore commands: config validators,
// service restarts, and permission fixups.
package hooks

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/carrybak/carrybak/internal/cmdrun"
	"github.com/carrybak/carrybak/internal/profile"
)

// Result summarizes a hook pass.
type Result struct {
	Ran     int
	Skipped int
	// Failed counts validation hooks that did not pass. Restart and fixup
	// failures are logged but do not affect the restore verdict.
	Failed int
}

// Runner executes hooks through an injected process runner.
type Runner struct {
	runner cmdrun.Runner
	logger *slog.Logger
	sudo   string
	home   string

	// NoRestart skips service-restart hooks, for restores staged on a host
	// where the services should not bounce yet.
	NoRestart bool
}

// NewRunner constructs a hook Runner. home is used to expand a leading "~"
// in hook arguments.
func NewRunner(runner cmdrun.Runner, logger *slog.Logger, sudo, home string) *Runner {
	return &Runner{runner: runner, logger: logger, sudo: sudo, home: home}
}

// Run executes the given hooks in order and returns the pass summary.
// A failed validation hook is counted and the remaining hooks still run, so
// one bad config file does not hide the state of the rest.
func (r *Runner) Run(ctx context.Context, hooks []profile.Hook) Result {
	var res Result
	for _, hook := range hooks {
		if hook.Kind == profile.HookRestart && r.NoRestart {
			r.logger.Info("skipping restart hook", "hook", hook.Name)
			res.Skipped++
			continue
		}
		if len(hook.Argv) == 0 {
			continue
		}

		argv := r.expand(hook.Argv)
		name := argv[0]
		args := argv[1:]
		if hook.Elevated {
			name = r.sudo
			args = argv
		}

		out, err := r.runner.Run(ctx, name, args...)
		res.Ran++
		if err != nil {
			err = errors.Wrapf(err, "running hook %s", hook.Name)
		} else if out.ExitCode != 0 {
			err = errors.Newf("hook %s exited %d", hook.Name, out.ExitCode)
		}

		if err == nil {
			r.logger.Info("hook succeeded", "hook", hook.Name)
			continue
		}

		if stderr := strings.TrimSpace(out.Stderr); stderr != "" {
			r.logger.Error(hook.Name + ": " + stderr)
		}
		switch hook.Kind {
		case profile.HookValidate:
			r.logger.Error("validation hook failed", "hook", hook.Name, "error", err)
			res.Failed++
		default:
			r.logger.Warn("hook failed", "hook", hook.Name, "error", err)
		}
	}
	return res
}

func (r *Runner) expand(argv []string) []string {
	out := make([]string, len(argv))
	for i, arg := range argv {
		switch {
		case arg == "~":
			out[i] = r.home
		case strings.HasPrefix(arg, "~/"):
			out[i] = r.home + arg[1:]
		default:
			out[i] = arg
		}
	}
	return out
}
