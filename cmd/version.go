// Package cmd holds build metadata stamped in via ldflags at release time.
package cmd

var (
	// Version is the carrybak release version.
	Version = "dev"
	// Commit is the git revision the binary was built from.
	Commit = "none"
	// Date is when the binary was built.
	Date = "unknown"
)
