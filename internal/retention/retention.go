// Package retention prunes old runs from a destination, keeping the most
// recent N for a given profile prefix. Rotation runs only after a run
// finishes with zero hard failures; a keep value below zero disables
// rotation entirely.
package retention

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Run is one stored run directory eligible for rotation.
type Run struct {
	Path    string
	ModTime int64
}

// List returns the run directories under root whose names start with
// "<prefix>-", newest first by modification time. Plain files matching the
// pattern (stray archives, notes) are ignored.
func List(root, prefix string) ([]Run, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading %s", root)
	}

	var runs []Run
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix+"-") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		runs = append(runs, Run{
			Path:    filepath.Join(root, entry.Name()),
			ModTime: info.ModTime().UnixNano(),
		})
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].ModTime > runs[j].ModTime
	})
	return runs, nil
}

// Rotate deletes runs under root beyond the keep newest for prefix. Deletion
// errors are logged and skipped so one undeletable run never blocks the
// rest; rotation is housekeeping, not part of the backup's success.
func Rotate(root, prefix string, keep int, logger *slog.Logger) error {
	if keep < 0 {
		logger.Debug("rotation disabled", "prefix", prefix)
		return nil
	}

	runs, err := List(root, prefix)
	if err != nil {
		return err
	}
	if len(runs) <= keep {
		return nil
	}

	for _, run := range runs[keep:] {
		if err := os.RemoveAll(run.Path); err != nil {
			logger.Warn("could not remove old run", "path", run.Path, "error", err)
			continue
		}
		logger.Info("removed old run", "path", run.Path)
	}
	return nil
}
