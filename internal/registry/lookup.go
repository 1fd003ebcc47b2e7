package registry

import (
	"fmt"
	"iter"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/lode-build/lode/internal/version"
)

// All returns a lazy traversal over every known package in the unified
// resolution order: temporary packages, then each repository's local
// packages (user before system), then the discovery map. Every package is
// immediately followed by its sub-packages. Breaking out of the range
// short-circuits the remaining sequence; this ordering defines first-match
// semantics for the point lookups below.
func (m *Manager) All() iter.Seq[*Package] {
	return func(yield func(*Package) bool) {
		emit := func(p *Package) bool {
			if !yield(p) {
				return false
			}
			for _, sub := range p.SubPackages() {
				if !yield(sub) {
					return false
				}
			}
			return true
		}

		for _, p := range m.temporary {
			if !emit(p) {
				return
			}
		}
		for _, loc := range locationOrder {
			for _, p := range m.repositories[loc].localPackages {
				if !emit(p) {
					return
				}
			}
		}
		for _, list := range m.discovered {
			for _, p := range list {
				if !emit(p) {
					return
				}
			}
		}
	}
}

// ByName filters the unified traversal by exact name.
func (m *Manager) ByName(name string) iter.Seq[*Package] {
	return func(yield func(*Package) bool) {
		for p := range m.All() {
			if p.Name() != name {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// Get returns the first package with the given name and version, or nil.
func (m *Manager) Get(name string, ver version.Version) *Package {
	for p := range m.ByName(name) {
		if p.Version().Equal(ver) {
			return p
		}
	}
	return nil
}

// GetAt behaves like Get but additionally requires the package root to be
// nested under underPath.
func (m *Manager) GetAt(name string, ver version.Version, underPath string) *Package {
	for p := range m.ByName(name) {
		if p.Version().Equal(ver) && pathWithin(p.Path(), underPath) {
			return p
		}
	}
	return nil
}

// GetMatching returns the first package whose own version satisfies the
// given version spec string. Branch tags and pre-release specs pass through
// the constraint parser; a spec that fails to parse falls back to literal
// comparison with the package's version string.
func (m *Manager) GetMatching(name, spec string) *Package {
	c, err := version.ParseConstraint(spec)
	if err != nil {
		for p := range m.ByName(name) {
			if p.Version().String() == spec {
				return p
			}
		}
		return nil
	}
	for p := range m.ByName(name) {
		if c.Matches(p.Version()) {
			return p
		}
	}
	return nil
}

// GetBest returns the package with the greatest version among those with
// the given name satisfying the constraint, or nil when none does. The
// version order is total, so the maximum is unique.
func (m *Manager) GetBest(name string, c version.Constraint) *Package {
	var best *Package
	for p := range m.ByName(name) {
		if !c.Matches(p.Version()) {
			continue
		}
		if best == nil || best.Version().LessThan(p.Version()) {
			best = p
		}
	}
	return best
}

// GetOrCreateAt returns the non-sub-package at exactly the given path. When
// nothing is registered there, the package is loaded from disk and kept as a
// temporary package; the call fails only if that load fails.
func (m *Manager) GetOrCreateAt(path string) (*Package, error) {
	path = filepath.Clean(path)
	for p := range m.All() {
		if !p.IsSubPackage() && p.Path() == path {
			return p, nil
		}
	}

	pkg, err := m.loadPackage(path)
	if err != nil {
		return nil, err
	}
	m.temporary = append(m.temporary, pkg)
	m.log.Debug("registered temporary package",
		zap.String("package", pkg.Name()),
		zap.String("path", path))
	return pkg, nil
}

// GetTemporary returns a package bound to path at the given version without
// installing or registering it anywhere, memoized by path. Referencing the
// same path at two different versions is a consistency error.
func (m *Manager) GetTemporary(path string, ver version.Version) (*Package, error) {
	path = filepath.Clean(path)
	for p := range m.All() {
		if p.IsSubPackage() || p.Path() != path {
			continue
		}
		if !p.Version().Equal(ver) {
			return nil, fmt.Errorf("%w: %s already loaded at version %s, requested %s",
				ErrVersionConflict, path, p.Version(), ver)
		}
		return p, nil
	}

	pkg, err := m.loadPackageAt(path, ver)
	if err != nil {
		return nil, err
	}
	m.temporary = append(m.temporary, pkg)
	return pkg, nil
}

// Search returns all packages whose name matches the doublestar glob
// pattern, sorted by name then descending version.
func (m *Manager) Search(pattern string) ([]*Package, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid search pattern %q", pattern)
	}
	var matches []*Package
	for p := range m.All() {
		ok, err := doublestar.Match(pattern, p.Name())
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, p)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Name() != matches[j].Name() {
			return matches[i].Name() < matches[j].Name()
		}
		return matches[j].Version().LessThan(matches[i].Version())
	})
	return matches, nil
}

// Names returns the sorted set of distinct known package names.
func (m *Manager) Names() []string {
	set := make(map[string]bool)
	for p := range m.All() {
		set[p.Name()] = true
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// pathWithin reports whether path is inside root (or equal to it).
func pathWithin(path, root string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
