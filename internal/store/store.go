package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Extension is the container extension of finished recordings.
const Extension = ".m4a"

// FileInfo describes a finished recording on disk.
type FileInfo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages the recordings directory.
type Store struct {
	dir string
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("recordings directory is not set")
	}

	s := &Store{dir: dir}
	if err := s.EnsureDir(); err != nil {
		return nil, err
	}

	return s, nil
}

// Dir returns the recordings directory path.
func (s *Store) Dir() string {
	return s.dir
}

// EnsureDir creates the recordings directory if it does not exist.
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create recordings directory: %w", err)
	}
	return nil
}

// RecordingPath returns the absolute path for a recording file name.
func (s *Store) RecordingPath(name string) string {
	return filepath.Join(s.dir, name)
}

// List returns the finished recordings in the directory, newest first.
func (s *Store) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read recordings directory: %w", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if strings.ToLower(filepath.Ext(entry.Name())) != Extension {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Name:      entry.Name(),
			Path:      filepath.Join(s.dir, entry.Name()),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	// Newest first
	sort.Slice(files, func(i, j int) bool {
		return files[i].CreatedAt.After(files[j].CreatedAt)
	})

	return files, nil
}
