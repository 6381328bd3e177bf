package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/carrybak/carrybak/internal/logging"
)

func TestWriteRecordsAllItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.txt")
	items := []string{"/home/jane", "/etc/ssh/sshd_config", "/does/not/exist"}

	Write(path, "ssh backup", items, logging.ForTest(t))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "ssh backup\n") {
		t.Errorf("missing title header:\n%s", content)
	}
	// Every declared item appears, including ones that will fail to copy.
	for _, item := range items {
		if !strings.Contains(content, item) {
			t.Errorf("manifest missing %q", item)
		}
	}
}

func TestWriteUnwritablePathDoesNotPanic(t *testing.T) {
	Write(filepath.Join(t.TempDir(), "no", "such", "dir", "sources.txt"),
		"t", []string{"x"}, logging.ForTest(t))
}

func TestWriteInfoRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	info := Info{
		Profile:   "main",
		StartedAt: time.Date(2026, 8, 29, 7, 15, 0, 0, time.UTC),
		Host:      "workstation",
		Sources:   []string{"/home/jane"},
	}

	WriteInfo(path, info, logging.ForTest(t))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("run info not written: %v", err)
	}
	var got Info
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Profile != "main" || got.Host != "workstation" {
		t.Errorf("round trip = %+v", got)
	}
}

func TestTrimLogUnderLimitsUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	content := "line one\nline two\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := TrimLog(path, 5*1024*1024, 5000); err != nil {
		t.Fatalf("TrimLog() error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != content {
		t.Error("log under both limits must not be rewritten")
	}
}

func TestTrimLogKeepsExactlyMaxLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	var sb strings.Builder
	for i := 1; i <= 7000; i++ {
		fmt.Fprintf(&sb, "entry %d\n", i)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatal(err)
	}

	// The file is over the byte cap, so it is rewritten down to maxLines.
	if err := TrimLog(path, 16*1024, 5000); err != nil {
		t.Fatalf("TrimLog() error: %v", err)
	}

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 5000 {
		t.Fatalf("kept %d lines, want exactly 5000", len(lines))
	}
	if lines[0] != "entry 2001" {
		t.Errorf("first kept line = %q, want the window end", lines[0])
	}
	if lines[len(lines)-1] != "entry 7000" {
		t.Errorf("last kept line = %q, want the newest entry", lines[len(lines)-1])
	}
}

func TestTrimLogLineCountAloneDoesNotTrigger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	var sb strings.Builder
	for i := 1; i <= 50; i++ {
		fmt.Fprintf(&sb, "entry %d\n", i)
	}
	content := sb.String()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	// More lines than maxLines, but comfortably under the byte cap: the
	// file must stay as-is.
	if err := TrimLog(path, 5*1024*1024, 10); err != nil {
		t.Fatalf("TrimLog() error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != content {
		t.Error("log under the byte cap must not be rewritten")
	}
}

func TestTrimLogByteLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	// Few lines but a large payload: the byte cap alone triggers a rewrite.
	big := strings.Repeat("x", 4096)
	content := "first " + big + "\nsecond " + big + "\nthird " + big + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := TrimLog(path, 1024, 2); err != nil {
		t.Fatalf("TrimLog() error: %v", err)
	}

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Errorf("kept %d lines, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "second ") {
		t.Errorf("oldest line should have been dropped, got %q", lines[0][:20])
	}
}

func TestTrimLogMissingFile(t *testing.T) {
	if err := TrimLog(filepath.Join(t.TempDir(), "absent.log"), 1024, 10); err != nil {
		t.Errorf("TrimLog() on missing file = %v, want nil", err)
	}
}
