package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lode-build/lode/internal/manifest"
	"github.com/lode-build/lode/internal/version"
)

// AddLocal registers the package at path as an explicit local package of the
// given repository, bypassing directory-convention discovery. Registering an
// already-registered path is idempotent as long as the version matches;
// registering it at a differing version is a conflict.
func (m *Manager) AddLocal(path string, ver version.Version, loc Location) (*Package, error) {
	path = filepath.Clean(path)
	repo := m.repositories[loc]

	for _, p := range repo.localPackages {
		if p.Path() != path {
			continue
		}
		if !p.Version().Equal(ver) {
			return nil, fmt.Errorf("%w: %s already registered as %s %s, requested %s",
				ErrVersionConflict, path, p.Name(), p.Version(), ver)
		}
		return p, nil
	}

	name, err := localPackageName(path)
	if err != nil {
		return nil, err
	}
	pkg, err := m.loadLocalPackage(path, name, ver)
	if err != nil {
		return nil, err
	}
	repo.localPackages = append(repo.localPackages, pkg)

	if err := repo.writeLocalPackageList(); err != nil {
		return nil, err
	}
	m.log.Info("registered local package",
		zap.String("op", uuid.NewString()),
		zap.String("package", pkg.Name()),
		zap.String("version", ver.Display()),
		zap.String("path", path),
		zap.String("repository", loc.String()))
	return pkg, nil
}

// RemoveLocal removes every local registration of path from the given
// repository and persists the list. Fails when path is not registered.
func (m *Manager) RemoveLocal(path string, loc Location) error {
	path = filepath.Clean(path)
	repo := m.repositories[loc]

	kept := repo.localPackages[:0]
	removed := 0
	for _, p := range repo.localPackages {
		if p.Path() == path {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	if removed == 0 {
		return fmt.Errorf("%w: no local package registered at %s in the %s repository",
			ErrNotFound, path, loc)
	}
	repo.localPackages = kept

	if err := repo.writeLocalPackageList(); err != nil {
		return err
	}
	m.log.Info("removed local package registration",
		zap.String("op", uuid.NewString()),
		zap.String("path", path),
		zap.String("repository", loc.String()))
	return nil
}

// AddSearchPath adds a wildcard scan root to the given repository and
// persists it. The new path takes effect on the next refresh.
func (m *Manager) AddSearchPath(path string, loc Location) error {
	repo := m.repositories[loc]
	repo.searchPaths = append(repo.searchPaths, path)
	return repo.writeLocalPackageList()
}

// RemoveSearchPath removes every occurrence of path from the repository's
// scan roots and persists the list. Fails when path is not present.
func (m *Manager) RemoveSearchPath(path string, loc Location) error {
	repo := m.repositories[loc]

	kept := repo.searchPaths[:0]
	removed := 0
	for _, p := range repo.searchPaths {
		if p == path {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	if removed == 0 {
		return fmt.Errorf("%w: %s is not a search path of the %s repository",
			ErrNotFound, path, loc)
	}
	repo.searchPaths = kept
	return repo.writeLocalPackageList()
}

// localPackageName determines the name for a local registration: the
// descriptor's name when one exists, the lower-cased directory name when the
// descriptor is absent.
func localPackageName(path string) (string, error) {
	mf, err := manifest.Load(filepath.Join(path, manifest.FileName))
	if err == nil {
		return mf.Name, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return strings.ToLower(filepath.Base(path)), nil
	}
	return "", err
}
