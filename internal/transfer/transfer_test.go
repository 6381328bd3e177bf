package transfer

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/carrybak/carrybak/internal/cmdrun"
	cberrors "github.com/carrybak/carrybak/internal/errors"
	"github.com/carrybak/carrybak/internal/logging"
)

// fakeRunner scripts exit codes and records invocations.
type fakeRunner struct {
	exitCode int
	stderr   string
	missing  map[string]bool

	calls [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (cmdrun.Output, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return cmdrun.Output{ExitCode: f.exitCode, Stderr: f.stderr}, nil
}

func (f *fakeRunner) RunInteractive(_ context.Context, name string, args ...string) (cmdrun.Output, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return cmdrun.Output{}, nil
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.missing[name] {
		return "", errors.Newf("%s not found", name)
	}
	return "/usr/bin/" + name, nil
}

func newTestExecutor(t *testing.T, runner *fakeRunner) *Executor {
	t.Helper()
	return NewExecutor(runner, logging.ForTest(t), "rsync", "sudo", []int{23, 24})
}

func tempSource(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "data")
	if err := os.WriteFile(path, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckTool(t *testing.T) {
	exec := newTestExecutor(t, &fakeRunner{missing: map[string]bool{"rsync": true}})
	if err := exec.CheckTool(); !errors.Is(err, cberrors.ErrToolMissing) {
		t.Errorf("CheckTool() = %v, want ErrToolMissing", err)
	}

	exec = newTestExecutor(t, &fakeRunner{})
	if err := exec.CheckTool(); err != nil {
		t.Errorf("CheckTool() = %v, want nil", err)
	}
}

func TestCopyMissingSourceIsHardWithoutInvocation(t *testing.T) {
	runner := &fakeRunner{}
	exec := newTestExecutor(t, runner)

	res := exec.Copy(context.Background(), "/does/not/exist", t.TempDir(), Options{})

	if res.Status != StatusHard {
		t.Errorf("Status = %v, want StatusHard", res.Status)
	}
	if len(runner.calls) != 0 {
		t.Errorf("rsync was invoked %d times for a missing source", len(runner.calls))
	}
}

func TestCopyClassification(t *testing.T) {
	tests := []struct {
		name string
		code int
		want Status
	}{
		{"exit zero is success", 0, StatusSuccess},
		{"exit 23 is soft", 23, StatusSoft},
		{"exit 24 is soft", 24, StatusSoft},
		{"exit 12 is hard", 12, StatusHard},
		{"exit 1 is hard", 1, StatusHard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{exitCode: tt.code}
			exec := newTestExecutor(t, runner)

			res := exec.Copy(context.Background(), tempSource(t), t.TempDir(), Options{})

			if res.Status != tt.want {
				t.Errorf("Status = %v, want %v", res.Status, tt.want)
			}
			if tt.want != StatusSuccess && res.Code != tt.code {
				t.Errorf("Code = %d, want %d", res.Code, tt.code)
			}
		})
	}
}

func TestCopyArguments(t *testing.T) {
	runner := &fakeRunner{}
	exec := newTestExecutor(t, runner)
	src := tempSource(t)
	dest := t.TempDir()

	exec.Copy(context.Background(), src, dest, Options{
		Excludes: []string{".cache/"},
	})

	if len(runner.calls) != 1 {
		t.Fatalf("expected one invocation, got %d", len(runner.calls))
	}
	call := runner.calls[0]
	if call[0] != "rsync" {
		t.Errorf("command = %s, want rsync", call[0])
	}
	for _, arg := range []string{"-aHAX", "--numeric-ids", "--sparse", "--info=stats1", ".cache/", src, dest + "/"} {
		if !slices.Contains(call, arg) {
			t.Errorf("missing argument %q in %v", arg, call)
		}
	}
	if slices.Contains(call, "--delete-delay") {
		t.Error("--delete-delay must not appear outside mirror mode")
	}
}

func TestCopyMirrorAddsDeleteDelay(t *testing.T) {
	runner := &fakeRunner{}
	exec := newTestExecutor(t, runner)

	exec.Copy(context.Background(), tempSource(t), t.TempDir(), Options{Mirror: true})

	if !slices.Contains(runner.calls[0], "--delete-delay") {
		t.Errorf("mirror copy missing --delete-delay: %v", runner.calls[0])
	}
}

func TestCopyElevatedRunsThroughSudo(t *testing.T) {
	runner := &fakeRunner{}
	exec := newTestExecutor(t, runner)

	exec.Copy(context.Background(), tempSource(t), t.TempDir(), Options{Elevated: true})

	call := runner.calls[0]
	if call[0] != "sudo" {
		t.Errorf("command = %s, want sudo", call[0])
	}
	if call[1] != "rsync" {
		t.Errorf("first argument = %s, want rsync", call[1])
	}
}
