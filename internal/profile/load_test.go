package profile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryMissingFileUsesBuiltins(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join(t.TempDir(), "profiles.toml"))
	if err != nil {
		t.Fatalf("LoadRegistry() error: %v", err)
	}
	if _, err := reg.Get("main"); err != nil {
		t.Errorf("built-in main missing: %v", err)
	}
}

func TestLoadRegistryOverridesAndAdds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	overrides := `
[[profile]]
name = "main"
prefix = "HOME"
keep = 3

  [[profile.sources]]
  path = "~/work"

[[profile]]
name = "media"
prefix = "MEDIA"
subpath = "MEDIA"

  [[profile.sources]]
  path = "~/Pictures"
  excludes = ["*.tmp"]
`
	if err := os.WriteFile(path, []byte(overrides), 0o644); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry() error: %v", err)
	}

	main, err := reg.Get("main")
	if err != nil {
		t.Fatal(err)
	}
	if main.Prefix != "HOME" || main.Keep != 3 || len(main.Sources) != 1 {
		t.Errorf("override not applied wholesale: %+v", main)
	}

	media, err := reg.Get("media")
	if err != nil {
		t.Fatalf("new profile not added: %v", err)
	}
	if media.Sources[0].Excludes[0] != "*.tmp" {
		t.Errorf("source excludes not parsed: %+v", media.Sources[0])
	}
}

func TestLoadRegistryRejectsInvalidOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	bad := `
[[profile]]
name = "broken"
prefix = ""
`
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadRegistry(path); err == nil {
		t.Error("invalid override must fail loading")
	}
}
