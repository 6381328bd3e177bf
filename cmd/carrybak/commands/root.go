// Package commands implements the CLI commands for carrybak.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	buildinfo "github.com/carrybak/carrybak/cmd"
	"github.com/carrybak/carrybak/internal/config"
	"github.com/carrybak/carrybak/internal/logging"
)

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// yesFlag skips confirmation prompts (restore) and destination selection
// questions where a safe default exists.
var yesFlag bool

// noBanner suppresses the option banner printed before a run.
var noBanner bool

// destFlag preselects a destination mount by path.
var destFlag string

// logDirFlag redirects per-run logs out of the run directory.
var logDirFlag string

// cfg is the loaded configuration; configLoadErr any error from loading it.
var (
	cfg           *config.Config
	configLoadErr error
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false,
		"answer yes to prompts and pick defaults")
	rootCmd.PersistentFlags().BoolVar(&noBanner, "no-banner", false,
		"suppress the option banner")
	rootCmd.PersistentFlags().StringVar(&destFlag, "dest", "",
		"destination mount path (skips interactive selection)")
	rootCmd.PersistentFlags().StringVar(&logDirFlag, "log-dir", "",
		"write run logs to this directory instead of the run directory")

	rootCmd.Version = buildinfo.Version
	rootCmd.SetVersionTemplate("carrybak version {{.Version}}\n")

	// Silence errors and usage so main controls error output and exit codes
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	cfg, configLoadErr = config.Load("")
}

var rootCmd = &cobra.Command{
	Use:   "carrybak",
	Short: "Point-in-time backups to removable media",
	Long: `carrybak copies configured source trees to a mounted external drive,
one timestamped directory per run, with optional pigz-compressed archives
and retention rotation. Restores copy a stored run back over the live
files, guarded by an explicit confirmation gate.

Profiles define what gets copied: the built-ins cover the home tree,
dotfiles, SSH, Samba, GRUB, and assorted system configs, and can be
overridden from profiles.toml in the config directory.`,
	Example: `  # Back up the home tree to an attached drive
  carrybak backup main

  # Restore SSH configs from the most recent run, no prompt
  carrybak restore ssh --confirm

  # See what is stored on a drive
  carrybak list --dest /run/media/jane/vault`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		if configLoadErr != nil {
			return errors.Wrap(configLoadErr, "loading configuration")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.New("cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity
		if v == 0 {
			if val, ok := os.LookupEnv("CARRYBAK_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 1
				case "2":
					v = 2
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	logger := logging.New(logging.Config{
		Level:  level,
		Format: logging.Format(logFormat),
		Output: cmd.ErrOrStderr(),
	})
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// Execute runs the root command. The returned error maps to the process
// exit code in main.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
