// Package gate guards destructive restore operations behind explicit
// confirmation. Nothing is touched until the gate reports Confirmed; a
// declined gate is a clean cancel, not a failure.
package gate

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Policy controls how confirmation is obtained.
type Policy int

const (
	// AlwaysAsk prompts interactively before proceeding.
	AlwaysAsk Policy = iota
	// AutoYes proceeds without prompting (--yes / --confirm).
	AutoYes
	// NeverAsk proceeds without prompting and without a flag, for
	// non-interactive callers that accept the risk.
	NeverAsk
)

// State is the outcome of a confirmation check.
type State int

const (
	// NotConfirmed means the user has not yet been asked.
	NotConfirmed State = iota
	// Confirmed means the operation may proceed.
	Confirmed
	// Skipped means the user declined; the caller cancels cleanly.
	Skipped
)

// Gate asks for confirmation according to its policy. IO is injectable so
// tests drive the prompt without a terminal.
type Gate struct {
	policy Policy
	reader io.Reader
	writer io.Writer
}

// New returns a Gate reading answers from reader and writing prompts to
// writer.
func New(policy Policy, reader io.Reader, writer io.Writer) *Gate {
	return &Gate{policy: policy, reader: reader, writer: writer}
}

// Confirm resolves the gate for the operation described by summary.
// Under AlwaysAsk only an explicit "y" or "yes" confirms; anything else,
// including EOF, skips.
func (g *Gate) Confirm(summary string) (State, error) {
	switch g.policy {
	case AutoYes:
		fmt.Fprintf(g.writer, "Proceeding without prompt: %s\n", summary)
		return Confirmed, nil
	case NeverAsk:
		fmt.Fprintf(g.writer, "WARNING: proceeding unguarded: %s\n", summary)
		return Confirmed, nil
	}

	fmt.Fprintf(g.writer, "%s\n", summary)
	fmt.Fprint(g.writer, "This will overwrite existing files. Continue? [y/N]: ")

	scanner := bufio.NewScanner(g.reader)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return Skipped, err
		}
		fmt.Fprintln(g.writer, "No answer; skipping.")
		return Skipped, nil
	}

	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	if answer == "y" || answer == "yes" {
		return Confirmed, nil
	}
	fmt.Fprintln(g.writer, "Skipping.")
	return Skipped, nil
}
