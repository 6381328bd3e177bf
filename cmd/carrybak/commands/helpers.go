package commands

import (
	"fmt"
	"io"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/carrybak/carrybak/internal/destination"
	"github.com/carrybak/carrybak/internal/paths"
	"github.com/carrybak/carrybak/internal/profile"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// loadProfiles builds the registry: built-ins plus profiles.toml overrides.
func loadProfiles() (*profile.Registry, error) {
	return profile.LoadRegistry(paths.ProfilesPath())
}

// buildResolver scans the configured mount roots, defaulting to the invoking
// user's removable-media directories.
func buildResolver() *destination.Resolver {
	roots := cfg.MountRoots
	if len(roots) == 0 {
		username := ""
		if u, err := user.Current(); err == nil {
			username = u.Username
		}
		roots = paths.MountRoots(username)
	}
	return destination.NewResolver(roots)
}

// resolveDestination picks the destination mount: --dest preselects,
// otherwise the interactive selector runs against the command's IO.
func resolveDestination(cmd *cobra.Command, resolver *destination.Resolver) (destination.Destination, error) {
	dests, err := resolver.List()
	if err != nil {
		return destination.Destination{}, err
	}
	if destFlag != "" {
		return destination.Preselect(dests, destFlag)
	}
	return destination.NewSelector(cmd.InOrStdin(), cmd.OutOrStdout()).Select(dests)
}

// printBanner shows the run's options before work starts. Suppressed by
// --no-banner.
func printBanner(w io.Writer, title string, opts [][2]string) {
	if noBanner {
		return
	}
	fmt.Fprintf(w, "%s%s%s%s\n", colorBold, colorCyan, title, colorReset)
	for _, opt := range opts {
		fmt.Fprintf(w, "  %-14s %s\n", opt[0]+":", opt[1])
	}
	fmt.Fprintln(w)
}
