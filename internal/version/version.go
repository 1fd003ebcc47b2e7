// Package version models package versions and the constraint predicate used
// by best-match queries.
//
// Two kinds of versions exist:
//   - Release versions: semantic versions such as "1.2.3" or "2.0.0-rc.1",
//     backed by github.com/Masterminds/semver.
//   - Branch versions: "~main", "~feature-x" and the like, marking a package
//     checked out from a moving branch rather than a tagged release.
//
// The order is total: every branch version sorts below every release
// version, branches sort lexically among themselves, releases follow semver
// precedence.
package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// BranchPrefix marks a branch version string.
const BranchPrefix = "~"

// Version is a package version: either a semver release or a branch.
// The zero value is invalid; construct through Parse or MustParse.
type Version struct {
	raw    string
	branch string          // branch name without the marker, empty for releases
	sem    *semver.Version // nil for branch versions
}

// Parse parses a version string. Strings starting with the branch marker
// become branch versions; everything else must be valid semver.
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, fmt.Errorf("empty version string")
	}
	if strings.HasPrefix(s, BranchPrefix) {
		name := strings.TrimPrefix(s, BranchPrefix)
		if name == "" {
			return Version{}, fmt.Errorf("invalid branch version %q", s)
		}
		return Version{raw: s, branch: name}, nil
	}
	sv, err := semver.NewVersion(s)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	return Version{raw: s, sem: sv}, nil
}

// MustParse parses a version string and panics on failure. For use with
// literals in tests and defaults.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsBranch reports whether v is a branch version.
func (v Version) IsBranch() bool { return v.branch != "" }

// Branch returns the branch name without the marker, or "" for releases.
func (v Version) Branch() string { return v.branch }

// IsZero reports whether v is the invalid zero value.
func (v Version) IsZero() bool { return v.raw == "" }

// String returns the original version string, marker included for branches.
func (v Version) String() string { return v.raw }

// Display returns the version for human-facing output: branch versions are
// shown without the marker.
func (v Version) Display() string {
	if v.IsBranch() {
		return v.branch
	}
	return v.raw
}

// Equal reports whether two versions denote the same version.
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}

// Compare orders two versions: -1 if v < o, 0 if equal, +1 if v > o.
// Branches sort below all releases and lexically among themselves.
func (v Version) Compare(o Version) int {
	switch {
	case v.IsBranch() && o.IsBranch():
		return strings.Compare(v.branch, o.branch)
	case v.IsBranch():
		return -1
	case o.IsBranch():
		return 1
	default:
		return v.sem.Compare(o.sem)
	}
}

// LessThan reports whether v orders before o.
func (v Version) LessThan(o Version) bool { return v.Compare(o) < 0 }

// Constraint is the opaque "does version V satisfy this spec" predicate
// consumed by best-match queries.
type Constraint interface {
	Matches(Version) bool
	String() string
}

// ParseConstraint parses a constraint string. A branch string ("~main")
// matches only that exact branch; anything else is parsed as a semver range
// (">=1.0.0 <2.0.0", "^1.2", "1.0.0", ...) matching release versions only.
func ParseConstraint(s string) (Constraint, error) {
	if s == "" || s == "*" {
		return anyConstraint{}, nil
	}
	if strings.HasPrefix(s, BranchPrefix) {
		name := strings.TrimPrefix(s, BranchPrefix)
		if name == "" {
			return nil, fmt.Errorf("invalid branch constraint %q", s)
		}
		return branchConstraint{branch: name}, nil
	}
	c, err := semver.NewConstraint(s)
	if err != nil {
		return nil, fmt.Errorf("invalid version constraint %q: %w", s, err)
	}
	return rangeConstraint{c: c, raw: s}, nil
}

// MustParseConstraint parses a constraint string and panics on failure.
func MustParseConstraint(s string) Constraint {
	c, err := ParseConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Any returns a constraint satisfied by every version, branches included.
func Any() Constraint { return anyConstraint{} }

// Exact returns a constraint satisfied only by versions equal to v.
func Exact(v Version) Constraint { return exactConstraint{v: v} }

type rangeConstraint struct {
	c   *semver.Constraints
	raw string
}

func (r rangeConstraint) Matches(v Version) bool {
	if v.IsBranch() {
		return false
	}
	return r.c.Check(v.sem)
}

func (r rangeConstraint) String() string { return r.raw }

type branchConstraint struct {
	branch string
}

func (b branchConstraint) Matches(v Version) bool {
	return v.IsBranch() && v.branch == b.branch
}

func (b branchConstraint) String() string { return BranchPrefix + b.branch }

type anyConstraint struct{}

func (anyConstraint) Matches(Version) bool { return true }
func (anyConstraint) String() string       { return "*" }

type exactConstraint struct {
	v Version
}

func (e exactConstraint) Matches(v Version) bool { return e.v.Equal(v) }
func (e exactConstraint) String() string         { return e.v.String() }
