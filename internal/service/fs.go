package service

import "io"

// MediaStorage abstracts the binary store behind the file registry.
//
// Registry rows store a bare stored filename; historical rows may instead
// carry a full path from before the storage migration. Resolve handles both:
// it tries the stored path first, then falls back to the canonical
// by-filename location.
type MediaStorage interface {
	// Save persists the binary under the given stored filename and returns
	// the path to record in the registry (the bare filename).
	Save(data io.Reader, storedName string) (string, error)

	// Exists reports whether the binary resolves at either location.
	Exists(storedPath, storedName string) bool

	// Open opens the binary for streaming, resolving legacy paths.
	Open(storedPath, storedName string) (io.ReadCloser, error)

	// Delete removes the binary. A missing binary is not an error: registry
	// deletion must not be blocked by a file already gone from disk.
	Delete(storedPath, storedName string) error
}
