package registry

import (
	"fmt"
	"path/filepath"

	"github.com/lode-build/lode/internal/manifest"
	"github.com/lode-build/lode/internal/version"
)

// Package is a loaded package descriptor bound to a filesystem path and
// version. Identity is the (name, version, root path) tuple: the same
// (name, version) may exist at several paths, and several versions of one
// name coexist in discovery.
//
// A Package constructed for a given absolute path stays the same object
// across refreshes unless a full reload is forced, so consumer-held
// references and sub-package state survive rescans.
type Package struct {
	manifest *manifest.Manifest
	name     string // qualified: "parent:sub" for sub-packages
	ver      version.Version
	path     string // absolute root directory, "" when unbound
	parent   *Package
	subs     []*Package
}

// NewPackage binds a parsed manifest to a version and root path.
func NewPackage(m *manifest.Manifest, ver version.Version, path string) *Package {
	return &Package{manifest: m, name: m.Name, ver: ver, path: path}
}

// Name returns the package name; sub-packages are qualified as "parent:sub".
func (p *Package) Name() string { return p.name }

// Version returns the package version.
func (p *Package) Version() version.Version { return p.ver }

// Path returns the absolute package root directory, or "" when the package
// is not bound to the filesystem.
func (p *Package) Path() string { return p.path }

// Manifest returns the parsed descriptor.
func (p *Package) Manifest() *manifest.Manifest { return p.manifest }

// Parent returns the owning package for sub-packages, nil otherwise.
func (p *Package) Parent() *Package { return p.parent }

// IsSubPackage reports whether p is nested inside another package.
func (p *Package) IsSubPackage() bool { return p.parent != nil }

// SubPackages returns the resolved sub-packages, in declaration order.
func (p *Package) SubPackages() []*Package { return p.subs }

// DescriptorPath returns the path of the package's descriptor file.
func (p *Package) DescriptorPath() string {
	return filepath.Join(p.path, manifest.FileName)
}

func (p *Package) String() string {
	return fmt.Sprintf("%s@%s", p.name, p.ver.Display())
}

// addSubPackage attaches a resolved sub-package. Sub-packages inherit the
// parent version and qualify their name with the parent's.
func (p *Package) addSubPackage(m *manifest.Manifest, path string) *Package {
	sub := &Package{
		manifest: m,
		name:     p.name + ":" + m.Name,
		ver:      p.ver,
		path:     path,
		parent:   p,
	}
	p.subs = append(p.subs, sub)
	return sub
}
