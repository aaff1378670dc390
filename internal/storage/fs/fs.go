package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/inkwell-dev/inkwell/internal/service"
)

// Storage keeps uploaded binaries in a flat uploads directory. New registry
// rows store the bare filename; rows from before the storage migration may
// hold a full path, so reads fall back from the stored path to the canonical
// by-filename location.
type Storage struct {
	rootPath string
}

// Ensure Storage implements the interface at compile time.
var _ service.MediaStorage = (*Storage)(nil)

func New(rootPath string) (*Storage, error) {
	// Clean to prevent path traversal like "uploads/../"
	p := filepath.Clean(rootPath)

	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory %s: %w", p, err)
	}

	return &Storage{rootPath: p}, nil
}

// Save writes the binary under the canonical location and returns the bare
// filename, which is what new registry rows record.
func (s *Storage) Save(data io.Reader, storedName string) (string, error) {
	storedName = filepath.Base(filepath.Clean(storedName))
	fullPath := filepath.Join(s.rootPath, storedName)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, data); err != nil {
		os.Remove(fullPath) // Best effort, ignore error here.
		return "", fmt.Errorf("failed to copy file data: %w", err)
	}

	return storedName, nil
}

// resolve returns the first existing location: the stored path as recorded,
// then the canonical by-filename location.
func (s *Storage) resolve(storedPath, storedName string) (string, bool) {
	for _, candidate := range s.candidates(storedPath, storedName) {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

func (s *Storage) candidates(storedPath, storedName string) []string {
	var paths []string
	if storedPath != "" {
		if filepath.IsAbs(storedPath) {
			// Legacy rows recorded the full path at upload time.
			paths = append(paths, filepath.Clean(storedPath))
		} else {
			paths = append(paths, filepath.Join(s.rootPath, filepath.Base(filepath.Clean(storedPath))))
		}
	}
	if storedName != "" {
		canonical := filepath.Join(s.rootPath, filepath.Base(filepath.Clean(storedName)))
		if len(paths) == 0 || paths[0] != canonical {
			paths = append(paths, canonical)
		}
	}
	return paths
}

func (s *Storage) Exists(storedPath, storedName string) bool {
	_, ok := s.resolve(storedPath, storedName)
	return ok
}

func (s *Storage) Open(storedPath, storedName string) (io.ReadCloser, error) {
	fullPath, ok := s.resolve(storedPath, storedName)
	if !ok {
		return nil, fmt.Errorf("binary not found: %s", storedName)
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete removes the binary at whichever location resolves. A file already
// gone is not an error.
func (s *Storage) Delete(storedPath, storedName string) error {
	fullPath, ok := s.resolve(storedPath, storedName)
	if !ok {
		return nil
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
