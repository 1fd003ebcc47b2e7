package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
)

// Location names a repository. Exactly two exist, fixed at construction.
type Location int

const (
	// LocationUser is the per-user repository, searched before the system
	// repository.
	LocationUser Location = iota
	// LocationSystem is the machine-wide repository.
	LocationSystem
)

// locationOrder is the fixed repository precedence for lookups.
var locationOrder = [...]Location{LocationUser, LocationSystem}

func (l Location) String() string {
	switch l {
	case LocationUser:
		return "user"
	case LocationSystem:
		return "system"
	default:
		return "unknown"
	}
}

// localPackagesFile lists a repository's wildcard scan roots and explicit
// local package registrations, under the repository's package path.
const localPackagesFile = "local-packages.json"

// wildcardName marks a local-packages entry as a scan root rather than a
// package registration.
const wildcardName = "*"

// localPackageEntry is one element of local-packages.json.
type localPackageEntry struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Path    string `json:"path"`
}

// Repository is a named local package source: a root directory, the derived
// directory installed packages live in, ad-hoc scan directories and the
// explicitly registered local packages.
type Repository struct {
	location      Location
	rootPath      string
	searchPaths   []string
	localPackages []*Package
}

// newRepository creates a repository rooted at rootPath. The package path is
// always derived from the root, never set independently.
func newRepository(location Location, rootPath string) *Repository {
	return &Repository{location: location, rootPath: rootPath}
}

// Location returns the repository's name.
func (r *Repository) Location() Location { return r.location }

// RootPath returns the repository root directory.
func (r *Repository) RootPath() string { return r.rootPath }

// PackagePath returns the directory installed packages are placed in,
// <root>/packages.
func (r *Repository) PackagePath() string {
	return filepath.Join(r.rootPath, "packages")
}

// SearchPaths returns the repository's wildcard scan roots.
func (r *Repository) SearchPaths() []string { return r.searchPaths }

// LocalPackages returns the explicitly registered packages.
func (r *Repository) LocalPackages() []*Package { return r.localPackages }

func (r *Repository) localPackagesPath() string {
	return filepath.Join(r.PackagePath(), localPackagesFile)
}

// readLocalPackageList loads the raw local-packages.json entries. A missing
// file yields an empty list; a malformed file is an ErrInvalidFormat.
func (r *Repository) readLocalPackageList() ([]localPackageEntry, error) {
	data, err := os.ReadFile(r.localPackagesPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", r.localPackagesPath(), err)
	}
	var entries []localPackageEntry
	if err := sonic.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, r.localPackagesPath(), err)
	}
	return entries, nil
}

// writeLocalPackageList persists the repository's search paths and local
// packages wholesale: wildcard entries first, then explicit registrations.
func (r *Repository) writeLocalPackageList() error {
	entries := make([]localPackageEntry, 0, len(r.searchPaths)+len(r.localPackages))
	for _, path := range r.searchPaths {
		entries = append(entries, localPackageEntry{Name: wildcardName, Path: path})
	}
	for _, pkg := range r.localPackages {
		entries = append(entries, localPackageEntry{
			Name:    pkg.Name(),
			Version: pkg.Version().String(),
			Path:    pkg.Path(),
		})
	}

	if err := os.MkdirAll(r.PackagePath(), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", r.PackagePath(), err)
	}
	data, err := sonic.MarshalIndent(entries, "", "\t")
	if err != nil {
		return fmt.Errorf("encoding local package list: %w", err)
	}
	if err := os.WriteFile(r.localPackagesPath(), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", r.localPackagesPath(), err)
	}
	return nil
}
