package profile

import (
	"os"

	"github.com/cockroachdb/errors"
	toml "github.com/pelletier/go-toml/v2"
)

// overridesFile is the on-disk shape of profiles.toml.
type overridesFile struct {
	Profiles []Profile `toml:"profile"`
}

// LoadRegistry builds the profile registry: built-ins first, then overrides
// from path (when it exists). An override with a built-in's name replaces it
// wholesale; new names are added. A missing file is not an error.
func LoadRegistry(path string) (*Registry, error) {
	reg := NewRegistry(Builtins()...)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return reg, nil
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	var overrides overridesFile
	if err := toml.Unmarshal(data, &overrides); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}

	for _, p := range overrides.Profiles {
		if err := p.Validate(); err != nil {
			return nil, errors.Wrapf(err, "invalid profile in %s", path)
		}
		reg.Add(p)
	}

	return reg, nil
}
