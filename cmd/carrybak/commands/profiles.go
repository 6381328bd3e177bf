package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/carrybak/carrybak/internal/paths"
	"github.com/carrybak/carrybak/internal/profile"
	"github.com/carrybak/carrybak/pkg/fileutil"
)

var profilesExportOutput string

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesExportCmd)

	profilesExportCmd.Flags().StringVarP(&profilesExportOutput, "output", "o", "",
		"file to write (default: profiles.yaml in the config directory)")
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Show the known backup profiles",
	Long: `Show the built-in profiles and any overrides loaded from profiles.toml
in the config directory.`,
	RunE: runProfiles,
}

func runProfiles(cmd *cobra.Command, _ []string) error {
	return runProfilesWithWriter(os.Stdout)
}

func runProfilesWithWriter(w io.Writer) error {
	registry, err := loadProfiles()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%sNAME%s\t%sPREFIX%s\t%sSUBPATH%s\t%sSOURCES%s\t%sHOOKS%s\n",
		colorBold, colorReset,
		colorBold, colorReset,
		colorBold, colorReset,
		colorBold, colorReset,
		colorBold, colorReset)
	for _, name := range registry.Names() {
		prof, err := registry.Get(name)
		if err != nil {
			return err
		}
		subpath := prof.Subpath
		if subpath == "" {
			subpath = "."
		}
		fmt.Fprintf(tw, "%s%s%s\t%s\t%s\t%d\t%d\n",
			colorGreen, prof.Name, colorReset,
			prof.Prefix, subpath, len(prof.Sources), len(prof.PostRestore))
	}
	return tw.Flush()
}

var profilesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the effective profiles to a YAML file",
	Long: `Write the effective profile definitions (built-ins plus overrides) to an
editable YAML file. Useful as a starting point for a profiles.toml
override: copy the parts to change and translate them to TOML.`,
	Example: `  # Snapshot the effective profiles
  carrybak profiles export

  # To a specific file
  carrybak profiles export -o /tmp/profiles.yaml`,
	RunE: runProfilesExport,
}

func runProfilesExport(cmd *cobra.Command, _ []string) error {
	return runProfilesExportWithWriter(os.Stdout)
}

func runProfilesExportWithWriter(w io.Writer) error {
	registry, err := loadProfiles()
	if err != nil {
		return err
	}

	out := profilesExportOutput
	if out == "" {
		if err := paths.EnsureDir(paths.ConfigDir(), 0); err != nil {
			return err
		}
		out = filepath.Join(paths.ConfigDir(), "profiles.yaml")
	}

	all := make([]profile.Profile, 0)
	for _, name := range registry.Names() {
		prof, err := registry.Get(name)
		if err != nil {
			return err
		}
		all = append(all, prof)
	}

	if err := fileutil.AtomicWriteYAML(out, map[string][]profile.Profile{"profiles": all}); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s✓ wrote %d profiles to %s%s\n",
		colorGreen, len(all), out, colorReset)
	return nil
}
