package registry

import "errors"

// Error kinds surfaced by registry operations. Callers match them with
// errors.Is; messages carry package name, version and path so an operator
// can remediate manually where the operation instructs it.
var (
	// ErrAlreadyInstalled is returned when the install destination already
	// exists as a filesystem entry.
	ErrAlreadyInstalled = errors.New("package already installed")

	// ErrArchive is returned when an archive cannot be opened or its layout
	// cannot be understood.
	ErrArchive = errors.New("invalid package archive")

	// ErrNotFound is returned when an uninstall or removal target is absent
	// from every repository and the discovery map.
	ErrNotFound = errors.New("package not found")

	// ErrVersionConflict is returned when a path is re-registered or
	// re-referenced under a differing version.
	ErrVersionConflict = errors.New("conflicting package versions")

	// ErrMissingJournal is returned when uninstall finds no journal.json in
	// the package root. The package must then be removed manually.
	ErrMissingJournal = errors.New("missing install journal")

	// ErrAlienFiles is returned when the package root still holds untracked
	// entries after journal-driven cleanup. Those files must be deleted
	// manually; lode never deletes data it did not create.
	ErrAlienFiles = errors.New("untracked files in package directory")

	// ErrInvalidFormat is returned when a persisted registry file is not in
	// the expected shape.
	ErrInvalidFormat = errors.New("invalid registry file format")
)
