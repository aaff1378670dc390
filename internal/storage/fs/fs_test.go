package fs

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return s
}

func TestSaveAndOpen(t *testing.T) {
	s := newTestStorage(t)

	storedPath, err := s.Save(strings.NewReader("hello"), "abc123.txt")
	require.NoError(t, err)
	assert.Equal(t, "abc123.txt", storedPath, "new rows record the bare filename")

	reader, err := s.Open(storedPath, "abc123.txt")
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestSaveStripsDirectories(t *testing.T) {
	s := newTestStorage(t)

	storedPath, err := s.Save(strings.NewReader("x"), "../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "passwd", storedPath)
	assert.True(t, s.Exists("", "passwd"))
}

func TestExists(t *testing.T) {
	s := newTestStorage(t)

	assert.False(t, s.Exists("", "missing.bin"))

	_, err := s.Save(strings.NewReader("x"), "present.bin")
	require.NoError(t, err)
	assert.True(t, s.Exists("", "present.bin"))
	assert.True(t, s.Exists("present.bin", "present.bin"))
}

func TestLegacyPathFallback(t *testing.T) {
	s := newTestStorage(t)

	// A row that recorded an absolute path at upload time, pointing
	// somewhere that no longer exists: the canonical location still wins.
	_, err := s.Save(strings.NewReader("data"), "legacy.bin")
	require.NoError(t, err)

	assert.True(t, s.Exists("/old/server/uploads/legacy.bin", "legacy.bin"))

	reader, err := s.Open("/old/server/uploads/legacy.bin", "legacy.bin")
	require.NoError(t, err)
	defer reader.Close()
	content, _ := io.ReadAll(reader)
	assert.Equal(t, "data", string(content))
}

func TestLegacyAbsolutePathStillReadable(t *testing.T) {
	// A legacy row whose absolute path is valid but lives outside the
	// current uploads dir.
	legacyDir := t.TempDir()
	legacyFile := filepath.Join(legacyDir, "old.bin")
	require.NoError(t, os.WriteFile(legacyFile, []byte("legacy"), 0o644))

	s := newTestStorage(t)

	assert.True(t, s.Exists(legacyFile, "old.bin"))
	reader, err := s.Open(legacyFile, "old.bin")
	require.NoError(t, err)
	defer reader.Close()
	content, _ := io.ReadAll(reader)
	assert.Equal(t, "legacy", string(content))
}

func TestDelete(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Save(strings.NewReader("x"), "doomed.bin")
	require.NoError(t, err)

	require.NoError(t, s.Delete("", "doomed.bin"))
	assert.False(t, s.Exists("", "doomed.bin"))

	// Deleting a binary that is already gone is not an error.
	assert.NoError(t, s.Delete("", "doomed.bin"))
	assert.NoError(t, s.Delete("", "never-existed.bin"))
}

func TestOpenMissing(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Open("", "missing.bin")
	assert.Error(t, err)
}
