package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/carrybak/carrybak/internal/retention"
)

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [profile]",
	Short: "List stored runs on a destination",
	Long: `List the backup runs stored on a mounted destination, grouped by
profile and most recent first. With a profile argument only that
profile's runs are shown.`,
	Example: `  # Everything on the selected drive
  carrybak list

  # Just the SSH runs, as JSON
  carrybak list ssh --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

// listOutput represents the JSON output for one profile's runs.
type listOutput struct {
	Profile string          `json:"profile"`
	Runs    []runInfoOutput `json:"runs"`
}

// runInfoOutput represents a single run in JSON output.
type runInfoOutput struct {
	ID       string    `json:"id"`
	Path     string    `json:"path"`
	Modified time.Time `json:"modified"`
}

func runList(cmd *cobra.Command, args []string) error {
	return runListWithWriter(cmd, args, os.Stdout)
}

func runListWithWriter(cmd *cobra.Command, args []string, w io.Writer) error {
	registry, err := loadProfiles()
	if err != nil {
		return err
	}

	names := registry.Names()
	if len(args) > 0 {
		prof, err := registry.Get(args[0])
		if err != nil {
			return err
		}
		names = []string{prof.Name}
	}

	dest, err := resolveDestination(cmd, buildResolver())
	if err != nil {
		return err
	}

	byProfile := make([]listOutput, 0, len(names))
	for _, name := range names {
		prof, err := registry.Get(name)
		if err != nil {
			return err
		}
		runs, err := retention.List(filepath.Join(dest.Path, prof.Subpath), prof.Prefix)
		if err != nil {
			return errors.Wrapf(err, "listing runs for %s", name)
		}

		infos := make([]runInfoOutput, len(runs))
		for i, run := range runs {
			infos[i] = runInfoOutput{
				ID:       filepath.Base(run.Path),
				Path:     run.Path,
				Modified: time.Unix(0, run.ModTime),
			}
		}
		byProfile = append(byProfile, listOutput{Profile: name, Runs: infos})
	}

	if listJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(byProfile)
	}
	return outputListTabular(w, byProfile)
}

func outputListTabular(w io.Writer, byProfile []listOutput) error {
	hasRuns := false

	for i, p := range byProfile {
		if len(p.Runs) > 0 {
			hasRuns = true
		}
		if i > 0 {
			fmt.Fprintln(w)
		}

		fmt.Fprintf(w, "%sProfile: %s%s\n", colorCyan+colorBold, p.Profile, colorReset)
		if len(p.Runs) == 0 {
			fmt.Fprintf(w, "  %s(no runs stored)%s\n", colorGray, colorReset)
			continue
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "  %sRUN%s\t%sMODIFIED%s\n",
			colorBold, colorReset,
			colorBold, colorReset)
		for _, run := range p.Runs {
			fmt.Fprintf(tw, "  %s%s%s\t%s\n",
				colorGreen, run.ID, colorReset,
				run.Modified.Local().Format("2006-01-02 15:04:05"))
		}
		tw.Flush()
	}

	if !hasRuns {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "No runs stored on this destination")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Create one with: carrybak backup <profile>")
	}

	return nil
}
