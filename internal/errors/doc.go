// Package errors defines the failure taxonomy and exit-code conventions for
// the carrybak CLI.
//
// # Sentinel Errors
//
// Sentinel errors let callers check for specific conditions with [errors.Is]:
//
//	if errors.Is(err, cberrors.ErrInsufficientSpace) {
//	    // abort before any transfer starts
//	}
//
// Fail-fast conditions (ErrToolMissing, ErrInsufficientSpace,
// ErrPrivilegeDenied) abort a run before any side effect. Per-source
// conditions (ErrSourceMissing, ErrTransferFailed) are recovered locally so
// one bad source cannot sink an otherwise-good run.
//
// # Exit Codes
//
//   - ExitSuccess (0): full success or clean cancellation
//   - ExitFailure (1): hard failure anywhere in the run
//   - ExitInterrupted (130): terminated by signal
//
// [ExitCode] maps an error chain to the appropriate code; ErrUserCancelled
// deliberately maps to ExitSuccess because declining a destructive restore
// is not an error.
package errors
