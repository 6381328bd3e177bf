package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/carrybak/carrybak/internal/cmdrun"
	"github.com/carrybak/carrybak/internal/engine"
	cberrors "github.com/carrybak/carrybak/internal/errors"
	"github.com/carrybak/carrybak/internal/gate"
	"github.com/carrybak/carrybak/internal/logging"
	"github.com/carrybak/carrybak/internal/retention"
)

var (
	restoreConfirm   bool
	restoreNoRestart bool
)

func init() {
	rootCmd.AddCommand(restoreCmd)

	restoreCmd.Flags().BoolVar(&restoreConfirm, "confirm", false,
		"require explicit confirmation before any file is touched")
	restoreCmd.Flags().BoolVar(&restoreNoRestart, "no-restart", false,
		"skip service-restart hooks after restoring")
}

var restoreCmd = &cobra.Command{
	Use:   "restore <profile> [run-id]",
	Short: "Restore a profile from a stored run",
	Long: `Copy a stored run's contents back over the live files and execute the
profile's post-restore hooks (config validation, service restarts,
permission fixups).

By default the restore proceeds immediately and a warning notes that it
ran unguarded. With --confirm an interactive prompt must be answered
first; declining cancels cleanly with exit code 0. Combining --confirm
with --yes confirms without prompting, for scripted runs.

If no run id is given and several runs exist, an interactive picker
opens; with --yes the most recent run is used.`,
	Example: `  # Pick a run interactively, prompt before overwriting
  carrybak restore ssh --confirm

  # Most recent run, no prompts, do not bounce services
  carrybak restore smb --yes --no-restart

  # A specific run
  carrybak restore dots DOTS-20260829T071500`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runRestore,
}

func runRestore(cmd *cobra.Command, args []string) error {
	return runRestoreWithWriter(cmd, args, os.Stdout)
}

func runRestoreWithWriter(cmd *cobra.Command, args []string, w io.Writer) error {
	logger := logging.FromContext(cmd.Context())

	registry, err := loadProfiles()
	if err != nil {
		return err
	}
	prof, err := registry.Get(args[0])
	if err != nil {
		return err
	}

	resolver := buildResolver()
	dest, err := resolveDestination(cmd, resolver)
	if err != nil {
		return err
	}

	runner := cmdrun.NewExecRunner(cmd.InOrStdin(), w, cmd.ErrOrStderr())
	eng := engine.New(cfg, logger, runner, resolver)

	runs, err := eng.Runs(dest, prof)
	if err != nil {
		return err
	}

	var runID string
	if len(args) > 1 {
		runID = args[1]
	}
	runDir, err := pickRun(w, runs, runID)
	if err != nil {
		return err
	}
	if runDir == "" {
		fmt.Fprintln(w, "No run selected.")
		return nil
	}

	printBanner(w, "carrybak restore", [][2]string{
		{"profile", prof.Name},
		{"run", filepath.Base(runDir)},
		{"restart hooks", fmt.Sprintf("%t", !restoreNoRestart)},
	})

	policy := confirmPolicy(restoreConfirm, yesFlag || cfg.AssumeYes)

	sum, err := eng.Restore(cmd.Context(), prof, engine.RestoreOptions{
		RunDir:    runDir,
		Gate:      gate.New(policy, cmd.InOrStdin(), w),
		NoRestart: restoreNoRestart,
		LogDir:    logDirFlag,
	})
	if err != nil {
		return err
	}

	if sum.Cancelled {
		fmt.Fprintf(w, "%sRestore cancelled; nothing was changed.%s\n",
			colorYellow, colorReset)
		return nil
	}
	fmt.Fprintf(w, "%s✓ %s restored from %s (%d sources, %d skipped)%s\n",
		colorGreen, prof.Name, filepath.Base(runDir), sum.Sources, sum.Skipped, colorReset)
	return nil
}

// confirmPolicy maps the restore flags onto the safety gate. --confirm
// requires an explicit answer; adding --yes (or the assume_yes config key)
// answers it without a prompt. Without --confirm the restore proceeds
// unguarded and the gate records a warning.
func confirmPolicy(confirm, autoYes bool) gate.Policy {
	switch {
	case !confirm:
		return gate.NeverAsk
	case autoYes:
		return gate.AutoYes
	default:
		return gate.AlwaysAsk
	}
}

// pickRun resolves which stored run to restore from: an explicit id wins,
// --yes takes the most recent, otherwise an interactive picker opens.
// Aborting the picker is a clean cancellation.
func pickRun(w io.Writer, runs []retention.Run, runID string) (string, error) {
	if runID != "" {
		for _, run := range runs {
			if filepath.Base(run.Path) == runID {
				return run.Path, nil
			}
		}
		return "", errors.Wrapf(cberrors.ErrNoRunsFound, "run %s not found", runID)
	}

	if len(runs) == 1 || yesFlag {
		fmt.Fprintf(w, "Using most recent run: %s\n", filepath.Base(runs[0].Path))
		return runs[0].Path, nil
	}

	idx, err := fuzzyfinder.Find(
		runs,
		func(i int) string {
			return filepath.Base(runs[i].Path)
		},
		fuzzyfinder.WithPreviewWindow(func(i, width, height int) string {
			if i == -1 {
				return ""
			}
			run := runs[i]
			return fmt.Sprintf("Run: %s\nModified: %s\nPath: %s",
				filepath.Base(run.Path),
				time.Unix(0, run.ModTime).Format(time.RFC1123),
				run.Path,
			)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", nil
		}
		return "", errors.Wrap(err, "selecting run")
	}
	return runs[idx].Path, nil
}
