package retention

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/carrybak/carrybak/internal/logging"
)

// makeRun creates a run directory with a deterministic mtime, oldest first.
func makeRun(t *testing.T, root, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}
	mtime := time.Now().Add(-age)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRotateKeepsNewest(t *testing.T) {
	root := t.TempDir()
	old3 := makeRun(t, root, "BKP-20260801T090000", 28*24*time.Hour)
	old2 := makeRun(t, root, "BKP-20260808T090000", 21*24*time.Hour)
	old1 := makeRun(t, root, "BKP-20260815T090000", 14*24*time.Hour)
	new2 := makeRun(t, root, "BKP-20260822T090000", 7*24*time.Hour)
	new1 := makeRun(t, root, "BKP-20260829T090000", time.Hour)

	if err := Rotate(root, "BKP", 2, logging.ForTest(t)); err != nil {
		t.Fatalf("Rotate() error: %v", err)
	}

	for _, path := range []string{new1, new2} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("kept run missing: %s", path)
		}
	}
	for _, path := range []string{old1, old2, old3} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("old run not removed: %s", path)
		}
	}
}

func TestRotateIgnoresForeignEntries(t *testing.T) {
	root := t.TempDir()
	other := makeRun(t, root, "DOTS-20260801T090000", 28*24*time.Hour)
	keep := makeRun(t, root, "BKP-20260829T090000", time.Hour)
	// A stray archive with a matching name is a file, not a run.
	archive := filepath.Join(root, "BKP-20260701T090000.tar.gz")
	if err := os.WriteFile(archive, []byte("gz"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Rotate(root, "BKP", 0, logging.ForTest(t)); err != nil {
		t.Fatalf("Rotate() error: %v", err)
	}

	if _, err := os.Stat(other); err != nil {
		t.Error("rotation touched another profile's run")
	}
	if _, err := os.Stat(archive); err != nil {
		t.Error("rotation touched a plain file")
	}
	if _, err := os.Stat(keep); !os.IsNotExist(err) {
		t.Error("keep=0 should remove every matching run")
	}
}

func TestRotateNegativeKeepDisables(t *testing.T) {
	root := t.TempDir()
	runs := []string{
		makeRun(t, root, "BKP-20260801T090000", 48*time.Hour),
		makeRun(t, root, "BKP-20260829T090000", time.Hour),
	}

	if err := Rotate(root, "BKP", -1, logging.ForTest(t)); err != nil {
		t.Fatalf("Rotate() error: %v", err)
	}
	for _, path := range runs {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("run removed despite disabled rotation: %s", path)
		}
	}
}

func TestRotateMissingRootIsNotAnError(t *testing.T) {
	root := filepath.Join(t.TempDir(), "never-created")
	if err := Rotate(root, "BKP", 2, logging.ForTest(t)); err != nil {
		t.Errorf("Rotate() on missing root = %v, want nil", err)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	root := t.TempDir()
	makeRun(t, root, "BKP-20260801T090000", 48*time.Hour)
	newest := makeRun(t, root, "BKP-20260829T090000", time.Hour)

	runs, err := List(root, "BKP")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("List() returned %d runs, want 2", len(runs))
	}
	if runs[0].Path != newest {
		t.Errorf("List()[0] = %s, want newest %s", runs[0].Path, newest)
	}
}
