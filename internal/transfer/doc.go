// Package transfer wraps the external recursive-copy tool (rsync) and owns
// its exit-code classification.
//
// Classification is the crux of correctness for the whole engine: exit codes
// in the configured soft set mean files vanished or changed during the copy,
// which is benign for live trees, so those runs count as successes. Every
// other non-zero code is a hard failure that is counted but never aborts the
// remaining sources: one bad source must not sink an otherwise-good run.
//
// The tool is always reached through cmdrun.Runner, so tests classify fake
// exit codes without rsync installed.
package transfer
