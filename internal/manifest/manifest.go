// Package manifest records what a run captured: a human-readable sources
// list inside the run directory, a machine-readable run summary, and the
// size cap on the run log.
package manifest

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/carrybak/carrybak/pkg/fileutil"
)

// Info is the machine-readable record written alongside each run.
type Info struct {
	Profile    string    `json:"profile"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Host       string    `json:"host"`
	Sources    []string  `json:"sources"`
	Soft       int       `json:"soft_failures"`
	Hard       int       `json:"hard_failures"`
	Archived   bool      `json:"archived"`
}

// Write records the captured source list at path. Manifest writes are
// best-effort: a failure is logged and the run continues, since the backup
// data itself is already on disk.
func Write(path, title string, items []string, logger *slog.Logger) {
	var buf bytes.Buffer
	buf.WriteString(title + "\n")
	buf.WriteString(strings.Repeat("=", len(title)) + "\n\n")
	for _, item := range items {
		buf.WriteString(item + "\n")
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		logger.Warn("could not write manifest", "path", path, "error", err)
	}
}

// WriteInfo records the run summary as JSON next to the captured data.
// Best-effort, like Write.
func WriteInfo(path string, info Info, logger *slog.Logger) {
	if err := fileutil.AtomicWriteJSON(path, info); err != nil {
		logger.Warn("could not write run info", "path", path, "error", err)
	}
}

// TrimLog caps the log at path. When the file exceeds maxBytes it is
// rewritten atomically keeping only the newest maxLines lines; under the
// byte cap it is left alone regardless of line count. Runs at the end of
// every invocation, including interrupted ones.
func TrimLog(path string, maxBytes int64, maxLines int) error {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return errors.Wrapf(err, "stat %s", path)
	}
	if fi.Size() <= maxBytes {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	trimmed := strings.Join(lines, "\n") + "\n"

	if err := fileutil.AtomicWriteFile(path, []byte(trimmed), 0o644); err != nil {
		return errors.Wrapf(err, "rewriting %s", path)
	}
	return nil
}
