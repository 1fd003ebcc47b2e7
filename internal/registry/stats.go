package registry

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

// Stats summarizes a package's on-disk footprint.
type Stats struct {
	Files int64
	Bytes int64
}

// Stats walks the package tree and returns its file count and total size.
// Unlike Hash, the walk order is irrelevant here, so the parallel walker is
// used. Unreadable entries are skipped.
func (m *Manager) Stats(pkg *Package) (Stats, error) {
	if pkg.Path() == "" {
		return Stats{}, fmt.Errorf("cannot stat %s: package is not bound to a filesystem path", pkg)
	}

	var files, bytes atomic.Int64
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, pkg.Path(), func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files.Add(1)
		bytes.Add(info.Size())
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("scanning %s: %w", pkg.Path(), err)
	}
	return Stats{Files: files.Load(), Bytes: bytes.Load()}, nil
}
