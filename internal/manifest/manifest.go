// Package manifest reads and rewrites lode.json package descriptors.
//
// Only the fields lode itself consumes are modeled; everything else in the
// descriptor is owned by the build tool's manifest parser and is preserved
// byte-for-byte semantically when a descriptor is rewritten after install.
package manifest

import (
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
)

// FileName is the package descriptor file name, present directly in every
// package root directory.
const FileName = "lode.json"

// Manifest is a parsed package descriptor.
type Manifest struct {
	Name         string            `json:"name"`
	Version      string            `json:"version,omitempty"`
	Description  string            `json:"description,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
	SubPackages  []SubPackage      `json:"subPackages,omitempty"`
}

// SubPackage is a sub-package declaration: either a relative path to a
// directory holding its own descriptor, or an inline descriptor object.
type SubPackage struct {
	Path   string    // set for path declarations
	Inline *Manifest // set for inline declarations
}

// UnmarshalJSON accepts either a JSON string (path form) or an object
// (inline form).
func (s *SubPackage) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		return sonic.Unmarshal(data, &s.Path)
	}
	s.Inline = &Manifest{}
	return sonic.Unmarshal(data, s.Inline)
}

// MarshalJSON emits the same form the declaration was read in.
func (s SubPackage) MarshalJSON() ([]byte, error) {
	if s.Inline != nil {
		return sonic.Marshal(s.Inline)
	}
	return sonic.Marshal(s.Path)
}

// Load reads and parses the descriptor file at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor: %w", err)
	}
	var m Manifest
	if err := sonic.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing descriptor %s: %w", path, err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("descriptor %s has no name", path)
	}
	return &m, nil
}

// Rewrite forces the name and version fields of the descriptor at path and
// writes it back, preserving every other field the file carries. The name is
// lower-cased; the on-disk version becomes authoritative after install.
func Rewrite(path, name, version string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading descriptor: %w", err)
	}

	var raw map[string]any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing descriptor %s: %w", path, err)
	}
	raw["name"] = strings.ToLower(name)
	raw["version"] = version

	out, err := sonic.MarshalIndent(raw, "", "\t")
	if err != nil {
		return fmt.Errorf("encoding descriptor: %w", err)
	}
	if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing descriptor %s: %w", path, err)
	}
	return nil
}
