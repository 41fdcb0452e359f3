// Package filekv persists key/value entries as one JSON file per key.
package filekv

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// maxKeyBytes keeps hex-encoded file names under common 255 byte limits.
const maxKeyBytes = 120

type entry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store manages entry files on disk.
type Store struct {
	dir string
	mu  sync.RWMutex
	now func() time.Time
}

// NewStore creates a Store and ensures the directory exists.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: mkdir %s: %w", dir, err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

func (s *Store) path(key string) (string, error) {
	if len(key) > maxKeyBytes {
		return "", fmt.Errorf("file store: key too long (%d bytes, max %d)", len(key), maxKeyBytes)
	}
	return filepath.Join(s.dir, hex.EncodeToString([]byte(key))+".json"), nil
}

// Get reads the value stored under key.
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	p, err := s.path(key)
	if err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("file store: read %q: %w", key, err)
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return "", false, fmt.Errorf("file store: unmarshal %q: %w", key, err)
	}
	return e.Value, true, nil
}

// Set writes value under key, replacing the file atomically.
func (s *Store) Set(_ context.Context, key, value string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entry{Key: key, Value: value, UpdatedAt: s.now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("file store: marshal %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("file store: create temp: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		s.cleanupTemp(tmpPath)
		return fmt.Errorf("file store: write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		s.cleanupTemp(tmpPath)
		return fmt.Errorf("file store: close %q: %w", key, err)
	}
	if err := os.Rename(tmpPath, p); err != nil {
		s.cleanupTemp(tmpPath)
		return fmt.Errorf("file store: rename %q: %w", key, err)
	}
	return nil
}

// Remove deletes the entry for key. Removing a missing key is not an error.
func (s *Store) Remove(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("file store: remove %q: %w", key, err)
	}
	return nil
}

func (s *Store) cleanupTemp(path string) {
	if err := os.Remove(path); err != nil {
		slog.Debug("file store temp cleanup failed", "path", path, "error", err)
	}
}
