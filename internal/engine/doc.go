// Package engine orchestrates backup and restore runs.
//
// A backup run proceeds tool checks, privilege pre-authorization, free-space
// check, run directory creation, manifests, transfer loop, archive, summary,
// log trim, retention rotation. Rotation is gated on a clean run: a single
// hard failure or archive fatal leaves every stored run in place.
//
// A restore run resolves the safety gate before anything else, then copies
// the stored run back over the live files and executes the profile's
// post-restore hooks.
//
// Interrupts arrive as context cancellation; the engine stops between
// transfers, trims the run log, and surfaces ErrInterrupted so the process
// exits 130.
package engine
