package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/carrybak/carrybak/internal/cmdrun"
	"github.com/carrybak/carrybak/internal/engine"
	"github.com/carrybak/carrybak/internal/logging"
)

var (
	backupKeep         int
	backupNoCompress   bool
	backupManifestOnly bool
)

func init() {
	rootCmd.AddCommand(backupCmd)

	backupCmd.Flags().IntVar(&backupKeep, "keep", 0,
		"override retention count for this run (negative disables rotation)")
	backupCmd.Flags().BoolVar(&backupNoCompress, "no-compress", false,
		"skip the compressed archive, keep the plain run directory")
	backupCmd.Flags().BoolVar(&backupManifestOnly, "manifest-only", false,
		"write manifests into a new run directory without copying anything")
}

var backupCmd = &cobra.Command{
	Use:   "backup <profile>",
	Short: "Back up a profile to an attached drive",
	Long: `Copy a profile's sources into a new timestamped directory on a mounted
external drive, compress the result, and rotate runs beyond the retention
count.

Rotation only happens after a fully clean run: any hard transfer failure
or fatal archive error leaves every stored run untouched.`,
	Example: `  # Back up the home tree, prompting for the drive if several are mounted
  carrybak backup main

  # Non-interactive: fixed drive, no archive
  carrybak backup dots --dest /run/media/jane/vault --no-compress

  # Keep only the two newest runs
  carrybak backup ssh --keep 2`,
	Args: cobra.ExactArgs(1),
	RunE: runBackup,
}

func runBackup(cmd *cobra.Command, args []string) error {
	return runBackupWithWriter(cmd, args, os.Stdout)
}

func runBackupWithWriter(cmd *cobra.Command, args []string, w io.Writer) error {
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

	printBanner(w, "carrybak backup", [][2]string{
		{"profile", prof.Name},
		{"destination", dest.Path},
		{"compress", strconv.FormatBool(!backupNoCompress)},
	})

	opts := engine.BackupOptions{
		Dest:         dest,
		NoCompress:   backupNoCompress,
		ManifestOnly: backupManifestOnly,
		LogDir:       logDirFlag,
	}
	if cmd.Flags().Changed("keep") {
		keep := backupKeep
		opts.Keep = &keep
	}

	runner := cmdrun.NewExecRunner(cmd.InOrStdin(), w, cmd.ErrOrStderr())
	eng := engine.New(cfg, logger, runner, resolver)

	sum, err := eng.Backup(cmd.Context(), prof, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s✓ %s backed up to %s (%d sources, %d soft, %d skipped)%s\n",
		colorGreen, prof.Name, sum.RunDir, sum.Sources, sum.Soft, sum.Skipped, colorReset)
	return nil
}
