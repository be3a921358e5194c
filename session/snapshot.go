package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"session-hub/domain"
)

// FileSnapshot persists the identity snapshot as a single JSON file.
// Implements domain.SnapshotStore.
type FileSnapshot struct {
	mu   sync.Mutex
	path string
}

// NewFileSnapshot creates a snapshot store at the given path.
func NewFileSnapshot(path string) *FileSnapshot {
	return &FileSnapshot{path: path}
}

// Load reads the persisted snapshot. Returns domain.ErrSnapshotNotFound when
// no snapshot exists; a corrupt file is treated the same way (the snapshot
// is only a hint, a fresh confirmation round-trip replaces it).
func (s *FileSnapshot) Load() (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, domain.ErrSnapshotNotFound
	}
	return &user, nil
}

// Save writes the snapshot atomically (temp file + rename).
func (s *FileSnapshot) Save(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Clear removes the snapshot. Removing an absent snapshot is not an error.
func (s *FileSnapshot) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	return nil
}
