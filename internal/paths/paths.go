package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName is used for config and state directory naming.
const AppName = "carrybak"

// DefaultDirPerm is the default permission for created directories.
const DefaultDirPerm os.FileMode = 0o755

// ErrHomeDirNotFound indicates the user's home directory could not be determined.
var ErrHomeDirNotFound = errors.New("home directory not found")

// EnsureDir creates path (and parents) if it does not exist.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// Home returns the user's home directory.
// Note: it returns an empty string on error. Use ResolveHome for proper
// error handling.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
func ConfigHome() string {
	return xdg.ConfigHome
}

// ConfigDir returns the carrybak configuration directory.
// On Linux: ~/.config/carrybak
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ProfilesPath returns the path of the optional profile-override file.
func ProfilesPath() string {
	return filepath.Join(ConfigDir(), "profiles.toml")
}

// StateDir returns the directory for runtime state such as redirected logs.
// On Linux: ~/.local/state/carrybak
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// MountRoots returns the directories scanned for removable destinations.
// Both are per-user mount roots used by udisks and friends.
func MountRoots(user string) []string {
	return []string{
		filepath.Join("/run/media", user),
		filepath.Join("/media", user),
	}
}
