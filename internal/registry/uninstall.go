package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MetadataDir is the tool-internal directory kept inside a package root. Its
// contents are never journal-tracked and are force-deleted on uninstall.
const MetadataDir = ".lode"

// Uninstall removes an installed package from disk and from the registry,
// driven by the package's install journal. Only journal-tracked files and
// directories (plus the tool metadata directory) are deleted; if anything
// else remains in the package root afterwards the operation fails and the
// root is left in place, so untracked user data is never destroyed.
func (m *Manager) Uninstall(pkg *Package) error {
	if pkg.Path() == "" {
		return fmt.Errorf("cannot uninstall %s: package is not bound to a filesystem path", pkg)
	}
	root := pkg.Path()
	log := m.log.With(
		zap.String("op", uuid.NewString()),
		zap.String("package", pkg.Name()),
		zap.String("version", pkg.Version().Display()),
		zap.String("path", root))
	log.Info("uninstalling package")

	if !m.deregister(pkg) {
		return fmt.Errorf("%w: %s at %s is not registered in any repository",
			ErrNotFound, pkg, root)
	}

	journalPath := filepath.Join(root, JournalFile)
	journal, err := LoadJournal(journalPath)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s at %s has no %s and must be removed manually",
			ErrMissingJournal, pkg, root, JournalFile)
	}
	if err != nil {
		return err
	}

	var dirs []string
	for _, entry := range journal.Entries() {
		switch entry.Type {
		case EntryDirectory:
			dirs = append(dirs, entry.RelativePath)
		case EntryRegularFile:
			if entry.RelativePath == JournalFile {
				// The journal's self entry; the file is removed explicitly
				// below, after directory cleanup.
				continue
			}
			target := filepath.Join(root, filepath.FromSlash(entry.RelativePath))
			if err := os.Remove(target); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					log.Warn("tracked file already missing", zap.String("file", entry.RelativePath))
				} else {
					log.Warn("failed to delete tracked file",
						zap.String("file", entry.RelativePath), zap.Error(err))
				}
			}
		default:
			log.Warn("ignoring unknown journal entry type",
				zap.String("type", string(entry.Type)),
				zap.String("path", entry.RelativePath))
		}
	}

	// Deepest paths first, so nested directories empty out before their
	// parents are attempted.
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })
	for _, dir := range dirs {
		target := filepath.Join(root, filepath.FromSlash(dir))
		if err := os.Remove(target); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Warn("tracked directory already missing", zap.String("directory", dir))
			} else {
				log.Warn("tracked directory not empty or not a directory, leaving in place",
					zap.String("directory", dir), zap.Error(err))
			}
		}
	}

	if err := os.RemoveAll(filepath.Join(root, MetadataDir)); err != nil {
		log.Warn("failed to delete metadata directory", zap.Error(err))
	}
	if err := os.Remove(journalPath); err != nil {
		log.Warn("failed to delete journal", zap.Error(err))
	}

	leftover, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("inspecting %s after cleanup: %w", root, err)
	}
	if len(leftover) > 0 {
		names := make([]string, len(leftover))
		for i, entry := range leftover {
			names[i] = entry.Name()
		}
		return fmt.Errorf("%w: %s at %s still contains %v, these must be deleted manually",
			ErrAlienFiles, pkg, root, names)
	}

	if err := os.Remove(root); err != nil {
		return fmt.Errorf("removing package directory %s: %w", root, err)
	}
	delete(m.byPath, root)
	log.Info("uninstalled package")
	return nil
}

// deregister removes pkg from exactly one place: the repositories' local
// package lists are searched by path equality first, then the discovery
// map. Reports whether the package was found anywhere.
func (m *Manager) deregister(pkg *Package) bool {
	for _, loc := range locationOrder {
		repo := m.repositories[loc]
		for i, p := range repo.localPackages {
			if p.Path() == pkg.Path() {
				repo.localPackages = append(repo.localPackages[:i], repo.localPackages[i+1:]...)
				return true
			}
		}
	}
	for name, list := range m.discovered {
		for i, p := range list {
			if p.Path() == pkg.Path() {
				list = append(list[:i], list[i+1:]...)
				if len(list) == 0 {
					delete(m.discovered, name)
				} else {
					m.discovered[name] = list
				}
				return true
			}
		}
	}
	return false
}
