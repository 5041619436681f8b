// Package state persists the trader state across restarts. Writes are
// atomic (write to a temp file, then rename) so a crash can never
// leave a half-written state file behind.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/smartdca/kraken-smart-dca/internal/window"
)

// Store reads and writes the trader state JSON file.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the persisted trader state. A missing, unreadable or
// corrupt file yields the zero state rather than an error: losing the
// pacing counters is recoverable, refusing to start is not.
func (s *Store) Load() window.TraderState {
	var st window.TraderState

	data, err := os.ReadFile(s.path)
	if err != nil {
		return window.TraderState{}
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return window.TraderState{}
	}
	return st
}

// Save writes the trader state atomically. The state is only
// considered committed once the rename succeeds.
func (s *Store) Save(st window.TraderState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal trader state: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".trader-state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("commit state file: %w", err)
	}
	return nil
}
