package cxlicense

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store reads and writes the license file at a fixed path.
// The file is a single pretty-printed JSON object. The store assumes a
// single writing process; there is no cross-process locking.
type Store struct {
	path string
}

// NewStore creates a store for the license file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultLicensePath returns the conventional per-user license location,
// e.g. ~/.config/cx-terminal/license.json on Linux.
func DefaultLicensePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: resolve config dir: %v", ErrIO, err)
	}
	return filepath.Join(dir, "cx-terminal", "license.json"), nil
}

// Path returns the license file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and parses the license file. It returns ErrNotFound when the
// file does not exist and ErrInvalidFormat when it cannot be parsed.
func (s *Store) Load() (*License, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	var lic License
	if err := json.Unmarshal(data, &lic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if lic.Metadata == nil {
		lic.Metadata = make(map[string]string)
	}
	return &lic, nil
}

// Save persists the license, creating parent directories as needed.
// The record is written to a temporary file in the same directory and
// renamed over the target, so a crash mid-write cannot leave a truncated
// license behind.
func (s *Store) Save(lic *License) error {
	data, err := json.MarshalIndent(lic, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	tmp, err := os.CreateTemp(dir, ".license-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

// Delete removes the license file. Deleting a file that does not exist is
// not an error.
func (s *Store) Delete() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}
