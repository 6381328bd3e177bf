package destination

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/shirou/gopsutil/v3/disk"

	cberrors "github.com/carrybak/carrybak/internal/errors"
)

// pseudoFstypes are filesystem types that are never safe backup targets.
var pseudoFstypes = map[string]struct{}{
	"tmpfs":    {},
	"overlay":  {},
	"squashfs": {},
	"nsfs":     {},
	"proc":     {},
	"sysfs":    {},
	"devtmpfs": {},
	"ramfs":    {},
	"autofs":   {},
}

// Destination is a mounted, non-pseudo filesystem path usable as a backup
// target. Discovered fresh on each invocation, never persisted.
type Destination struct {
	Path   string
	Fstype string
}

// Resolver discovers candidate destinations under a fixed set of mount
// roots. Partition and usage lookups are injectable for tests.
type Resolver struct {
	mountRoots []string
	partitions func(all bool) ([]disk.PartitionStat, error)
	usage      func(path string) (*disk.UsageStat, error)
}

// NewResolver builds a Resolver scanning the given mount roots, backed by
// the live system's mount table.
func NewResolver(mountRoots []string) *Resolver {
	return &Resolver{
		mountRoots: mountRoots,
		partitions: disk.Partitions,
		usage:      disk.Usage,
	}
}

// NewResolverWithProbes builds a Resolver with injected mount-table and
// usage lookups for testing.
func NewResolverWithProbes(
	mountRoots []string,
	partitions func(all bool) ([]disk.PartitionStat, error),
	usage func(path string) (*disk.UsageStat, error),
) *Resolver {
	return &Resolver{mountRoots: mountRoots, partitions: partitions, usage: usage}
}

// List enumerates immediate child directories of each mount root that are
// themselves mount points with an allowed filesystem type.
func (r *Resolver) List() ([]Destination, error) {
	parts, err := r.partitions(true)
	if err != nil {
		return nil, errors.Wrap(err, "reading mount table")
	}

	fstypeByMount := make(map[string]string, len(parts))
	for _, p := range parts {
		fstypeByMount[p.Mountpoint] = p.Fstype
	}

	var dests []Destination
	for _, root := range r.mountRoots {
		entries, err := os.ReadDir(root)
		if err != nil {
			// Mount roots commonly do not exist until a device is plugged in.
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			path := filepath.Join(root, entry.Name())
			fstype, mounted := fstypeByMount[path]
			if !mounted {
				continue
			}
			if _, pseudo := pseudoFstypes[fstype]; pseudo {
				continue
			}
			dests = append(dests, Destination{Path: path, Fstype: fstype})
		}
	}
	return dests, nil
}

// CheckFreeSpace fails when the destination offers less than minGB gibibytes
// of free space (integer floor, so the boundary value passes). Runs once per
// invocation before any transfer begins, never mid-run.
func (r *Resolver) CheckFreeSpace(dest Destination, minGB int) error {
	stat, err := r.usage(dest.Path)
	if err != nil {
		return errors.Wrapf(err, "reading free space on %s", dest.Path)
	}
	freeGB := stat.Free / (1 << 30)
	if freeGB < uint64(minGB) {
		return errors.Wrapf(cberrors.ErrInsufficientSpace,
			"%s has %dG free, need >= %dG", dest.Path, freeGB, minGB)
	}
	return nil
}
