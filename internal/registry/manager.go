package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lode-build/lode/internal/logging"
	"github.com/lode-build/lode/internal/manifest"
	"github.com/lode-build/lode/internal/version"
)

// defaultBranch is assumed for packages whose descriptor carries no version,
// such as plain source checkouts found on a search path.
const defaultBranch = version.BranchPrefix + "main"

// Settings configures a Manager at construction.
type Settings struct {
	// UserRoot and SystemRoot are the two repository roots.
	UserRoot   string
	SystemRoot string
	// SearchPaths are caller-supplied ad-hoc scan directories, searched
	// before both repositories. Never persisted.
	SearchPaths []string
	// HashIgnore holds extra glob patterns excluded from content hashing.
	HashIgnore []string
}

// Manager owns the user and system repositories, the discovery map and the
// temporary package list, and orchestrates install, uninstall, registration
// and hashing.
//
// All state is mutated without synchronization; a Manager serves a single
// logical caller for the lifetime of one CLI invocation. Nothing guards the
// on-disk repositories against a concurrent lode process.
type Manager struct {
	repositories map[Location]*Repository
	searchPaths  []string              // explicit, highest precedence
	discovered   map[string][]*Package // rebuilt wholesale per refresh
	temporary    []*Package
	byPath       map[string]*Package // identity arena keyed by absolute path
	hashIgnore   []string
	log          *logging.Logger
}

// New creates a Manager over the given repository roots and performs an
// initial refresh.
func New(s Settings, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.NewNop()
	}
	m := &Manager{
		repositories: map[Location]*Repository{
			LocationUser:   newRepository(LocationUser, s.UserRoot),
			LocationSystem: newRepository(LocationSystem, s.SystemRoot),
		},
		searchPaths: append([]string(nil), s.SearchPaths...),
		discovered:  make(map[string][]*Package),
		byPath:      make(map[string]*Package),
		hashIgnore:  append([]string(nil), s.HashIgnore...),
		log:         log,
	}
	m.Refresh(false)
	return m
}

// Repository returns the repository at the given location.
func (m *Manager) Repository(loc Location) *Repository {
	return m.repositories[loc]
}

// CompleteSearchPath returns the full, order-significant discovery scope:
// explicit search paths, then the user repository's search paths and package
// path, then the system repository's.
func (m *Manager) CompleteSearchPath() []string {
	paths := append([]string(nil), m.searchPaths...)
	for _, loc := range locationOrder {
		repo := m.repositories[loc]
		paths = append(paths, repo.searchPaths...)
		paths = append(paths, repo.PackagePath())
	}
	return paths
}

// Refresh rebuilds repository state and the discovery map from disk. With
// reloadAll false, a package already loaded at a given absolute path is
// reused verbatim, preserving consumer-held references. Individual failures
// are logged and skipped; refresh itself never fails.
func (m *Manager) Refresh(reloadAll bool) {
	if reloadAll {
		m.byPath = make(map[string]*Package)
	}
	for _, loc := range [...]Location{LocationSystem, LocationUser} {
		m.refreshRepository(m.repositories[loc], reloadAll)
	}
	m.scanSearchPath(reloadAll)
}

// refreshRepository reloads a repository's local-packages.json, replacing
// its search paths and local packages wholesale. A missing or unreadable
// list leaves the repository empty; bad entries are skipped one by one.
func (m *Manager) refreshRepository(repo *Repository, reloadAll bool) {
	entries, err := repo.readLocalPackageList()
	if err != nil {
		m.log.Warn("ignoring local package list",
			zap.String("repository", repo.Location().String()),
			zap.Error(err))
		entries = nil
	}

	var searchPaths []string
	var locals []*Package
	for _, entry := range entries {
		if entry.Path == "" {
			m.log.Warn("skipping local package entry without path",
				zap.String("repository", repo.Location().String()),
				zap.String("name", entry.Name))
			continue
		}
		if entry.Name == wildcardName {
			searchPaths = append(searchPaths, entry.Path)
			continue
		}

		ver, err := version.Parse(entry.Version)
		if err != nil {
			m.log.Warn("skipping local package with bad version",
				zap.String("name", entry.Name),
				zap.String("version", entry.Version),
				zap.Error(err))
			continue
		}

		path := filepath.Clean(entry.Path)
		pkg := m.cached(path, reloadAll)
		if pkg == nil {
			pkg, err = m.loadLocalPackage(path, entry.Name, ver)
			if err != nil {
				m.log.Warn("skipping local package",
					zap.String("name", entry.Name),
					zap.String("path", path),
					zap.Error(err))
				continue
			}
		}
		locals = append(locals, pkg)
	}

	repo.searchPaths = searchPaths
	repo.localPackages = locals
}

// scanSearchPath walks every directory on the complete search path and
// rebuilds the discovery map from scratch. A subdirectory (or a symlink to
// a directory) is a package root iff it directly contains the descriptor
// file.
func (m *Manager) scanSearchPath(reloadAll bool) {
	discovered := make(map[string][]*Package)
	seen := make(map[string]bool)

	for _, dir := range m.CompleteSearchPath() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			m.log.Debug("skipping search path", zap.String("path", dir), zap.Error(err))
			continue
		}
		for _, entry := range entries {
			root := filepath.Join(dir, entry.Name())
			if !entry.IsDir() {
				// Symlinked checkouts count as package roots too.
				if entry.Type()&fs.ModeSymlink == 0 {
					continue
				}
				info, err := os.Stat(root)
				if err != nil || !info.IsDir() {
					continue
				}
			}
			if _, err := os.Stat(filepath.Join(root, manifest.FileName)); err != nil {
				continue
			}
			if seen[root] {
				continue
			}
			seen[root] = true

			pkg := m.cached(root, reloadAll)
			if pkg == nil {
				loaded, err := m.loadPackage(root)
				if err != nil {
					m.log.Warn("failed to load package",
						zap.String("path", root), zap.Error(err))
					continue
				}
				pkg = loaded
			}
			discovered[pkg.Name()] = append(discovered[pkg.Name()], pkg)
		}
	}

	m.discovered = discovered
}

// cached returns the already-loaded package at path, unless a full reload
// was requested.
func (m *Manager) cached(path string, reloadAll bool) *Package {
	if reloadAll {
		return nil
	}
	return m.byPath[path]
}

// loadPackage loads the package rooted at path using the descriptor's own
// name and version and registers it in the identity arena.
func (m *Manager) loadPackage(path string) (*Package, error) {
	mf, err := manifest.Load(filepath.Join(path, manifest.FileName))
	if err != nil {
		return nil, err
	}

	verString := mf.Version
	if verString == "" {
		verString = defaultBranch
	}
	ver, err := version.Parse(verString)
	if err != nil {
		return nil, fmt.Errorf("package %s at %s: %w", mf.Name, path, err)
	}

	pkg := NewPackage(mf, ver, path)
	m.resolveSubPackages(pkg)
	m.byPath[path] = pkg
	return pkg, nil
}

// loadPackageAt loads the package rooted at path, overriding only its
// version with the given one.
func (m *Manager) loadPackageAt(path string, ver version.Version) (*Package, error) {
	mf, err := manifest.Load(filepath.Join(path, manifest.FileName))
	if err != nil {
		return nil, err
	}
	mf.Version = ver.String()

	pkg := NewPackage(mf, ver, path)
	m.resolveSubPackages(pkg)
	m.byPath[path] = pkg
	return pkg, nil
}

// loadLocalPackage loads a package for an explicit local registration. The
// registration's name and version override whatever the descriptor says; a
// name mismatch is logged but not fatal. A missing descriptor is tolerated
// by synthesizing one from the registration.
func (m *Manager) loadLocalPackage(path, name string, ver version.Version) (*Package, error) {
	mf, err := manifest.Load(filepath.Join(path, manifest.FileName))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			m.log.Debug("unreadable descriptor for local package",
				zap.String("path", path), zap.Error(err))
		}
		mf = &manifest.Manifest{Name: name}
	} else if mf.Name != name {
		m.log.Warn("local package descriptor name differs from registration",
			zap.String("registered", name),
			zap.String("descriptor", mf.Name),
			zap.String("path", path))
	}
	mf.Name = name
	mf.Version = ver.String()

	pkg := NewPackage(mf, ver, path)
	m.resolveSubPackages(pkg)
	m.byPath[path] = pkg
	return pkg, nil
}

// resolveSubPackages attaches the package's declared sub-packages. Failures
// skip the single sub-package only.
func (m *Manager) resolveSubPackages(pkg *Package) {
	for _, sp := range pkg.Manifest().SubPackages {
		if sp.Inline != nil {
			pkg.addSubPackage(sp.Inline, pkg.Path())
			continue
		}
		subPath := filepath.Join(pkg.Path(), filepath.FromSlash(sp.Path))
		sm, err := manifest.Load(filepath.Join(subPath, manifest.FileName))
		if err != nil {
			m.log.Warn("skipping sub-package",
				zap.String("package", pkg.Name()),
				zap.String("subPath", sp.Path),
				zap.Error(err))
			continue
		}
		pkg.addSubPackage(sm, subPath)
	}
}
