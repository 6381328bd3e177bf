package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)
	Init()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Keep != 5 {
		t.Errorf("Keep = %d, want 5", cfg.Keep)
	}
	if cfg.MinFreeGB != 20 {
		t.Errorf("MinFreeGB = %d, want 20", cfg.MinFreeGB)
	}
	if cfg.Tools.Rsync != "rsync" || cfg.Tools.Pigz != "pigz" {
		t.Errorf("tool defaults = %+v", cfg.Tools)
	}
	if got := cfg.Tools.RsyncSoftCodes; len(got) != 2 || got[0] != 23 || got[1] != 24 {
		t.Errorf("RsyncSoftCodes = %v, want [23 24]", got)
	}
	if got := cfg.Tools.TarWarnCodes; len(got) != 1 || got[0] != 1 {
		t.Errorf("TarWarnCodes = %v, want [1]", got)
	}
	if cfg.Log.MaxBytes != 5*1024*1024 || cfg.Log.MaxLines != 5000 {
		t.Errorf("log bounds = %+v", cfg.Log)
	}
	if cfg.AssumeYes {
		t.Error("AssumeYes must default to false")
	}
}

func TestLoadExplicitFile(t *testing.T) {
	resetViper(t)
	Init()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
keep: 3
min_free_gb: 50
tools:
  rsync_soft_codes: [23]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Keep != 3 || cfg.MinFreeGB != 50 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if len(cfg.Tools.RsyncSoftCodes) != 1 || cfg.Tools.RsyncSoftCodes[0] != 23 {
		t.Errorf("RsyncSoftCodes = %v, want [23]", cfg.Tools.RsyncSoftCodes)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Tools.Tar != "tar" {
		t.Errorf("Tar = %s, want default", cfg.Tools.Tar)
	}
}

func TestLoadMissingExplicitFileErrors(t *testing.T) {
	resetViper(t)
	Init()

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("explicit missing file must error")
	}
}
