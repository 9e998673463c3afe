// Package snapshot persists the most recent full match collection between
// processing cycles.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matchscope/matchscope/internal/utils"
	"github.com/matchscope/matchscope/pkg/match"
)

// Store reads and writes the previous-matches snapshot file. The file holds
// the full collection as UTF-8 JSON, either as a bare array or wrapped under
// a matches/matchlista key (legacy shape).
type Store struct {
	path string
}

// NewStore creates a store for the given snapshot file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the snapshot file location.
func (s *Store) Path() string { return s.path }

// Load returns the previously persisted collection. A missing file or a
// corrupt payload is not an error: the store logs and returns an empty
// collection so the next comparison starts fresh.
func (s *Store) Load() []match.Match {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			utils.Log.Infof("No previous snapshot at %s, starting fresh", s.path)
		} else {
			utils.Log.Errorf("Failed to read snapshot %s: %v. Starting fresh.", s.path, err)
		}
		return nil
	}

	matches, err := match.Decode(data)
	if err != nil {
		utils.Log.Errorf("Failed to parse snapshot %s: %v. Starting fresh.", s.path, err)
		return nil
	}

	utils.Log.Debugf("Loaded %d previous matches from %s", len(matches), s.path)
	return matches
}

// Save replaces the snapshot with the given collection. The target directory
// is created if absent and the file is written via a temp file and rename so
// a crash mid-write cannot leave a truncated snapshot.
func (s *Store) Save(matches []match.Match) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(matches, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	utils.Log.Infof("Saved %d matches to %s", len(matches), s.path)
	return nil
}
