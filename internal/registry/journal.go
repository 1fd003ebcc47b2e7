package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
)

// JournalFile is the name of the per-package install journal, written to the
// package root at the end of install and replayed by uninstall.
const JournalFile = "journal.json"

// EntryType discriminates journal entries.
type EntryType string

const (
	EntryRegularFile EntryType = "RegularFile"
	EntryDirectory   EntryType = "Directory"
)

// JournalEntry records one filesystem object created during install. Paths
// are relative to the package root, slash-separated.
type JournalEntry struct {
	Type         EntryType `json:"type"`
	RelativePath string    `json:"relativePath"`
}

// Journal is the ordered, append-only log of filesystem actions taken while
// installing a package. Entries appear in creation order; uninstall derives
// its own deletion order from them.
type Journal struct {
	entries []JournalEntry
}

// AddFile appends a regular-file entry.
func (j *Journal) AddFile(relativePath string) {
	j.entries = append(j.entries, JournalEntry{Type: EntryRegularFile, RelativePath: filepath.ToSlash(relativePath)})
}

// AddDirectory appends a directory entry.
func (j *Journal) AddDirectory(relativePath string) {
	j.entries = append(j.entries, JournalEntry{Type: EntryDirectory, RelativePath: filepath.ToSlash(relativePath)})
}

// Entries returns the journal contents in append order.
func (j *Journal) Entries() []JournalEntry { return j.entries }

// Save serializes the journal as a JSON array to path. Called exactly once,
// after the final self entry has been appended.
func (j *Journal) Save(path string) error {
	data, err := sonic.MarshalIndent(j.entries, "", "\t")
	if err != nil {
		return fmt.Errorf("encoding journal: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing journal %s: %w", path, err)
	}
	return nil
}

// LoadJournal reads a journal back in full. The file is never mutated after
// install, so a single read suffices.
func LoadJournal(path string) (*Journal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []JournalEntry
	if err := sonic.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: journal %s: %v", ErrInvalidFormat, path, err)
	}
	return &Journal{entries: entries}, nil
}
