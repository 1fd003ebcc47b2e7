package registry

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lode-build/lode/internal/archive"
	"github.com/lode-build/lode/internal/manifest"
	"github.com/lode-build/lode/internal/version"
)

// Install extracts the archive at archivePath into destination and registers
// the result under the given name and version. The name and version are
// authoritative: whatever descriptor the archive carries is rewritten with
// them (name lower-cased) after extraction.
//
// The destination must not already exist; install refuses to overwrite.
// Every file and directory created is journaled in creation order, and the
// journal is written to <destination>/journal.json once extraction is done.
// There is no rollback: a write error mid-extraction leaves the files
// created so far on disk with no journal.
func (m *Manager) Install(archivePath, name string, ver version.Version, destination string) (*Package, error) {
	destination = filepath.Clean(destination)
	log := m.log.With(
		zap.String("op", uuid.NewString()),
		zap.String("package", name),
		zap.String("version", ver.Display()),
		zap.String("destination", destination))
	log.Info("installing package", zap.String("archive", archivePath))

	if _, err := os.Lstat(destination); err == nil {
		return nil, fmt.Errorf("%w: %s %s at %s, uninstall it first",
			ErrAlreadyInstalled, name, ver.Display(), destination)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("checking destination %s: %w", destination, err)
	}

	ar, err := archive.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchive, err)
	}
	defer ar.Close()

	prefix, err := archivePrefix(ar.Entries())
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(destination, 0o755); err != nil {
		return nil, fmt.Errorf("creating destination %s: %w", destination, err)
	}

	journal := &Journal{}
	created := make(map[string]bool)

	// ensureDir creates rel (slash-separated, relative to destination) and
	// any missing parents, journaling each directory exactly once.
	ensureDir := func(rel string) error {
		if rel == "" || rel == "." {
			return nil
		}
		partial := ""
		for _, part := range strings.Split(rel, "/") {
			partial = path.Join(partial, part)
			if created[partial] {
				continue
			}
			target := filepath.Join(destination, filepath.FromSlash(partial))
			if err := os.Mkdir(target, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
				return fmt.Errorf("creating directory %s: %w", target, err)
			}
			created[partial] = true
			journal.AddDirectory(partial)
		}
		return nil
	}

	for _, entry := range ar.Entries() {
		rel, ok := stripPrefix(entry.Name, prefix)
		if !ok {
			log.Debug("skipping entry outside package root", zap.String("entry", entry.Name))
			continue
		}
		if rel == "" {
			continue
		}
		if rel == ".." || strings.HasPrefix(rel, "../") {
			log.Warn("skipping entry escaping package root", zap.String("entry", entry.Name))
			continue
		}

		if entry.IsDir {
			if err := ensureDir(rel); err != nil {
				return nil, err
			}
			continue
		}

		if err := ensureDir(path.Dir(rel)); err != nil {
			return nil, err
		}
		if err := extractFile(entry, filepath.Join(destination, filepath.FromSlash(rel))); err != nil {
			return nil, err
		}
		journal.AddFile(rel)
	}

	descriptor := filepath.Join(destination, manifest.FileName)
	if err := manifest.Rewrite(descriptor, name, ver.String()); err != nil {
		return nil, err
	}

	// The journal records itself as its final entry before being written.
	journal.AddFile(JournalFile)
	if err := journal.Save(filepath.Join(destination, JournalFile)); err != nil {
		return nil, err
	}

	pkg, err := m.loadPackage(destination)
	if err != nil {
		return nil, err
	}
	m.discovered[pkg.Name()] = append(m.discovered[pkg.Name()], pkg)

	log.Info("installed package", zap.Int("journalEntries", len(journal.Entries())))
	return pkg, nil
}

// extractFile writes one archive entry's full decompressed content to
// target.
func extractFile(entry archive.Entry, target string) error {
	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("%w: reading entry %s: %v", ErrArchive, entry.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("%w: reading entry %s: %v", ErrArchive, entry.Name, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return nil
}

// archivePrefix determines the common path prefix to strip from entry names.
// The authoritative rule is the descriptor file at the archive root or
// nested in exactly one top-level folder (the layout source-hosting exports
// produce). Archives satisfying neither are rejected rather than guessed at.
func archivePrefix(entries []archive.Entry) (string, error) {
	wrapped := ""
	found := false
	for _, entry := range entries {
		if entry.IsDir {
			continue
		}
		name := strings.Trim(entry.Name, "/")
		if name == manifest.FileName {
			return "", nil
		}
		if !found && archive.Depth(name) == 2 && path.Base(name) == manifest.FileName {
			wrapped = path.Dir(name) + "/"
			found = true
		}
	}
	if found {
		return wrapped, nil
	}
	return "", fmt.Errorf("%w: no %s at the archive root or one level below it",
		ErrArchive, manifest.FileName)
}

// stripPrefix removes the archive prefix from an entry name, returning the
// cleaned slash-separated relative path. ok is false for entries outside the
// prefix.
func stripPrefix(name, prefix string) (rel string, ok bool) {
	trimmed := strings.TrimPrefix(name, "/")
	if prefix != "" && !strings.HasPrefix(trimmed, prefix) {
		// The prefix directory entry itself is inside the prefix in spirit.
		if strings.Trim(trimmed, "/")+"/" == prefix {
			return "", true
		}
		return "", false
	}
	rel = strings.Trim(strings.TrimPrefix(trimmed, prefix), "/")
	if rel == "" {
		return "", true
	}
	rel = path.Clean(rel)
	if rel == "." {
		return "", true
	}
	return rel, true
}
