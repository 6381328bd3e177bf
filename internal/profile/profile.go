package profile

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// HookKind classifies post-restore hooks so the engine can skip or escalate
// them selectively.
type HookKind string

const (
	// HookValidate runs a check command; a non-zero exit counts against the
	// restore verdict (like a hard transfer failure).
	HookValidate HookKind = "validate"

	// HookRestart restarts or enables a system service. Skipped when the
	// operator passes --no-restart.
	HookRestart HookKind = "restart"

	// HookFix adjusts ownership or permissions. Best-effort: failures are
	// logged and ignored.
	HookFix HookKind = "fix"
)

// Hook is one post-restore action, run through the engine's command runner
// after all transfers complete.
type Hook struct {
	Name     string   `toml:"name" yaml:"name"`
	Kind     HookKind `toml:"kind" yaml:"kind"`
	Argv     []string `toml:"argv" yaml:"argv"`
	Elevated bool     `toml:"elevated" yaml:"elevated"`
}

// SourceSpec declares one path to copy. Consumed read-only by the engine.
type SourceSpec struct {
	// Path is the absolute source path. A leading "~/" is expanded to the
	// invoking user's home. Glob metacharacters are expanded at run time.
	Path string `toml:"path" yaml:"path"`

	// Excludes are per-source rsync exclude patterns, appended to the
	// profile's common excludes.
	Excludes []string `toml:"excludes" yaml:"excludes"`

	// Elevated routes the copy through sudo. The privilege pre-check runs
	// before the transfer loop starts, never in the middle of it.
	Elevated bool `toml:"elevated" yaml:"elevated"`

	// Optional sources produce no hard failure when absent (used for glob
	// sources like credential files that may not exist).
	Optional bool `toml:"optional" yaml:"optional"`
}

// Profile parameterizes the engine for one backup target. The engine itself
// is profile-agnostic; everything target-specific lives here.
type Profile struct {
	// Name is the CLI identifier (e.g. "ssh").
	Name string `toml:"name" yaml:"name"`

	// Prefix names run directories: <Prefix>-<timestamp>.
	Prefix string `toml:"prefix" yaml:"prefix"`

	// Subpath is the destination-relative directory holding this profile's
	// runs (e.g. "SERV/SSH").
	Subpath string `toml:"subpath" yaml:"subpath"`

	// MinFreeGB is the minimum destination free space. Zero falls back to
	// the configured default.
	MinFreeGB int `toml:"min_free_gb" yaml:"min_free_gb"`

	// Keep is the retention count. Negative disables rotation.
	Keep int `toml:"keep" yaml:"keep"`

	// CommonExcludes apply to every source in the profile.
	CommonExcludes []string `toml:"common_excludes" yaml:"common_excludes"`

	Sources []SourceSpec `toml:"sources" yaml:"sources"`

	// RestoreMirror enables rsync delete-mirroring when restoring, so files
	// absent from the backup are removed at the target. Never used for the
	// backup direction.
	RestoreMirror bool `toml:"restore_mirror" yaml:"restore_mirror"`

	PostRestore []Hook `toml:"post_restore" yaml:"post_restore"`
}

// Validate checks a profile for the invariants the engine relies on.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return errors.New("profile name is required")
	}
	if p.Prefix == "" {
		return errors.Newf("profile %s: prefix is required", p.Name)
	}
	if strings.ContainsAny(p.Prefix, "/ ") {
		return errors.Newf("profile %s: prefix must not contain slashes or spaces", p.Name)
	}
	if len(p.Sources) == 0 {
		return errors.Newf("profile %s: at least one source is required", p.Name)
	}
	for _, s := range p.Sources {
		if s.Path == "" {
			return errors.Newf("profile %s: source with empty path", p.Name)
		}
	}
	for _, h := range p.PostRestore {
		if len(h.Argv) == 0 {
			return errors.Newf("profile %s: hook %s has no command", p.Name, h.Name)
		}
		switch h.Kind {
		case HookValidate, HookRestart, HookFix:
		default:
			return errors.Newf("profile %s: hook %s has unknown kind %q", p.Name, h.Name, h.Kind)
		}
	}
	return nil
}

// ExpandHome rewrites "~/" prefixes in source paths against home, returning
// a copy. Profiles are shared values; the originals are never mutated.
func (p Profile) ExpandHome(home string) Profile {
	sources := make([]SourceSpec, len(p.Sources))
	for i, s := range p.Sources {
		s.Path = expandHome(s.Path, home)
		sources[i] = s
	}
	p.Sources = sources
	return p
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

// Registry holds the known profiles by name.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry creates a registry seeded with the given profiles.
func NewRegistry(profiles ...Profile) *Registry {
	r := &Registry{profiles: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		r.profiles[p.Name] = p
	}
	return r
}

// Get returns the named profile.
func (r *Registry) Get(name string) (Profile, error) {
	p, ok := r.profiles[name]
	if !ok {
		return Profile{}, errors.Newf("unknown profile %q (known: %s)",
			name, strings.Join(r.Names(), ", "))
	}
	return p, nil
}

// Names returns the registered profile names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Add registers or replaces a profile.
func (r *Registry) Add(p Profile) {
	r.profiles[p.Name] = p
}
