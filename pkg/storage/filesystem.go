// Package storage keeps rendered export artifacts on local disk.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage stores artifacts as flat files under a single root directory.
// Names resolving outside the root are rejected.
type LocalStorage struct {
	root string
}

// NewLocalStorage ensures the root directory exists and returns a handle.
func NewLocalStorage(root string) (*LocalStorage, error) {
	if root == "" {
		root = "exports"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory %s: %w", root, err)
	}
	return &LocalStorage{root: root}, nil
}

// Save writes an artifact, replacing any previous copy with the same name.
// It returns the absolute path of the stored file.
func (s *LocalStorage) Save(name string, data []byte) (string, error) {
	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write archive file %s: %w", name, err)
	}
	return path, nil
}

// Read returns the bytes of a stored artifact.
func (s *LocalStorage) Read(name string) ([]byte, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archive file %s: %w", name, err)
	}
	return data, nil
}

// CleanupOlderThan removes artifacts whose modification time predates
// now minus ttl and reports how many were removed.
func (s *LocalStorage) CleanupOlderThan(ttl time.Duration) (int, error) {
	cutoff := time.Now().Add(-ttl)
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0, fmt.Errorf("scan archive directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.root, entry.Name())); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove expired archive %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}

func (s *LocalStorage) resolve(name string) (string, error) {
	cleaned := filepath.Clean(name)
	if cleaned == "." || filepath.IsAbs(cleaned) ||
		cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid archive name %q", name)
	}
	return filepath.Join(s.root, cleaned), nil
}
