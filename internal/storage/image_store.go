package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

var (
	ErrFileNotFound = errors.New("file not found in image storage")
)

// ImageStore persists uploaded image files inside a single directory.
// Every incoming name is reduced to its base name before touching the
// filesystem, so a crafted name or slot reference can never resolve
// outside the directory. The filesystem is injected so tests can run
// against an in-memory one.
type ImageStore struct {
	fs  afero.Fs
	dir string
}

// NewImageStore creates the storage directory if needed and returns a
// store rooted at dir.
func NewImageStore(fs afero.Fs, dir string) (*ImageStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &ImageStore{fs: fs, dir: dir}, nil
}

// path resolves a stored name strictly inside the storage directory.
func (s *ImageStore) path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// Save writes content under a unique name derived from the original
// filename and returns the stored name. A nanosecond timestamp prefix
// keeps concurrent uploads of identically named files apart.
func (s *ImageStore) Save(originalName string, content io.Reader) (string, error) {
	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(originalName))

	f, err := s.fs.Create(s.path(name))
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		s.fs.Remove(s.path(name))
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	if err := f.Close(); err != nil {
		s.fs.Remove(s.path(name))
		return "", fmt.Errorf("failed to close image file: %w", err)
	}

	return name, nil
}

// Remove deletes a stored file. Returns ErrFileNotFound when the file
// does not exist so callers can distinguish a stale reference from an
// I/O failure.
func (s *ImageStore) Remove(name string) error {
	if err := s.fs.Remove(s.path(name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrFileNotFound
		}
		return fmt.Errorf("failed to remove image file: %w", err)
	}
	return nil
}

// Open returns a stored file for reading
func (s *ImageStore) Open(name string) (afero.File, error) {
	f, err := s.fs.Open(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	return f, nil
}

// Exists reports whether a stored file is present
func (s *ImageStore) Exists(name string) (bool, error) {
	ok, err := afero.Exists(s.fs, s.path(name))
	if err != nil {
		return false, fmt.Errorf("failed to stat image file: %w", err)
	}
	return ok, nil
}
