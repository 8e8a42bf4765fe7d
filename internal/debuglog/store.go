package debuglog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	stateEnabled  = "enabled"
	stateDisabled = "disabled"
)

// FlagStore persists the logging flag as a small text file holding
// "enabled" or "disabled".
type FlagStore struct {
	path string
}

// NewFlagStore creates a store backed by the file at path
func NewFlagStore(path string) *FlagStore {
	return &FlagStore{path: path}
}

// Path returns the backing file path
func (s *FlagStore) Path() string {
	return s.path
}

// Load reads the persisted flag. A missing file means disabled.
func (s *FlagStore) Load() (bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read log state file: %w", err)
	}
	return strings.TrimSpace(string(data)) == stateEnabled, nil
}

// Save rewrites the flag file
func (s *FlagStore) Save(enabled bool) error {
	value := stateDisabled
	if enabled {
		value = stateEnabled
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log state directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, []byte(value), 0644); err != nil {
		return fmt.Errorf("failed to write log state file: %w", err)
	}
	return nil
}
