// Package privilege pre-validates sudo access so elevated transfers later in
// a run do not stall on a password prompt mid-copy.
package privilege

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/carrybak/carrybak/internal/cmdrun"
	cberrors "github.com/carrybak/carrybak/internal/errors"
)

// Checker validates and refreshes cached sudo credentials.
type Checker struct {
	runner cmdrun.Runner
	sudo   string
}

// NewChecker returns a Checker invoking the given sudo binary.
func NewChecker(runner cmdrun.Runner, sudo string) *Checker {
	return &Checker{runner: runner, sudo: sudo}
}

// Ensure prompts for and caches sudo credentials up front. Call once before
// the first elevated operation; the prompt goes to the user's terminal.
func (c *Checker) Ensure(ctx context.Context) error {
	if _, err := c.runner.LookPath(c.sudo); err != nil {
		return errors.Wrapf(cberrors.ErrToolMissing, "%s not found", c.sudo)
	}
	out, err := c.runner.RunInteractive(ctx, c.sudo, "-v")
	if err != nil {
		return errors.Wrap(err, "running sudo")
	}
	if out.ExitCode != 0 {
		return errors.Wrap(cberrors.ErrPrivilegeDenied, "sudo validation failed")
	}
	return nil
}

// Recheck verifies the cached credentials are still valid without prompting.
func (c *Checker) Recheck(ctx context.Context) error {
	out, err := c.runner.Run(ctx, c.sudo, "-n", "true")
	if err != nil {
		return errors.Wrap(err, "running sudo")
	}
	if out.ExitCode != 0 {
		return errors.Wrap(cberrors.ErrPrivilegeDenied, "sudo credentials expired")
	}
	return nil
}
