// Package destination discovers and validates backup target volumes.
//
// Candidates are immediate child directories of the per-user mount roots
// (/run/media/<user>, /media/<user>) that are mount points with a real
// filesystem type; pseudo filesystems (tmpfs, overlay, proc and friends)
// are rejected. The mount table and usage probes come from gopsutil and are
// injectable for tests.
package destination
