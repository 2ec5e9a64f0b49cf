package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
)

// FileStore persists the session identifier in a state file scoped by
// profile name, so separate driver profiles on one machine never clobber
// each other's in-progress flow.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store under dir for the given profile
func NewFileStore(dir, profile string) *FileStore {
	if profile == "" {
		profile = "default"
	}
	return &FileStore{
		path: filepath.Join(dir, slug.Make(profile)+".session"),
	}
}

// SaveSessionID writes the identifier atomically (temp file then rename)
// so a crash mid-write never leaves a torn state file
func (s *FileStore) SaveSessionID(id string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(id+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}

// LoadSessionID reads the persisted identifier, returning "" when none exists
func (s *FileStore) LoadSessionID() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read state file: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

// ClearSessionID removes the state file
func (s *FileStore) ClearSessionID() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove state file: %w", err)
	}
	return nil
}
