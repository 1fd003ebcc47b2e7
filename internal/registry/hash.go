package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// hashIgnoreDirs are never folded into the content fingerprint: version
// control internals and the tool metadata directory change without the
// package content changing.
var hashIgnoreDirs = map[string]bool{
	".git":      true,
	".svn":      true,
	".hg":       true,
	MetadataDir: true,
}

// Hash computes the package's content fingerprint: a SHA-256 digest over a
// depth-first traversal folding in each entry's base name and, for files,
// its full content. Directory entries are visited in sorted name order so
// the digest is reproducible on an unchanged tree. This is a change
// detection fingerprint for build caching, not a security primitive.
func (m *Manager) Hash(pkg *Package) (string, error) {
	if pkg.Path() == "" {
		return "", fmt.Errorf("cannot hash %s: package is not bound to a filesystem path", pkg)
	}
	h := sha256.New()
	if err := m.hashTree(h, pkg.Path(), ""); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (m *Manager) hashTree(h hash.Hash, root, rel string) error {
	// os.ReadDir returns entries sorted by name, which fixes the traversal
	// order the fingerprint depends on.
	entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return fmt.Errorf("hashing %s: %w", root, err)
	}

	for _, entry := range entries {
		if entry.IsDir() && hashIgnoreDirs[entry.Name()] {
			continue
		}
		childRel := path.Join(rel, entry.Name())
		if m.hashIgnored(childRel) {
			continue
		}

		h.Write([]byte(entry.Name()))
		switch {
		case entry.IsDir():
			if err := m.hashTree(h, root, childRel); err != nil {
				return err
			}
		case entry.Type().IsRegular():
			if err := hashFile(h, filepath.Join(root, filepath.FromSlash(childRel))); err != nil {
				return err
			}
		}
	}
	return nil
}

func hashFile(h hash.Hash, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}
	return nil
}

// hashIgnored reports whether the slash-separated relative path matches one
// of the configured extra ignore patterns.
func (m *Manager) hashIgnored(rel string) bool {
	for _, pattern := range m.hashIgnore {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
