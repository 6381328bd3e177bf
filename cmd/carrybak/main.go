// Package main is the entry point for the carrybak CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"

	"github.com/carrybak/carrybak/cmd/carrybak/commands"
	cberrors "github.com/carrybak/carrybak/internal/errors"
)

func main() {
	// Cancel with the signal name as the cause so the engine's interrupt
	// warning can say which signal arrived.
	ctx, cancel := context.WithCancelCause(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		cancel(errors.Newf("received signal %s", sig))
	}()
	defer cancel(nil)

	err := commands.Execute(ctx)
	if err != nil && !cberrors.Is(err, cberrors.ErrUserCancelled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cberrors.ExitCode(err))
}
