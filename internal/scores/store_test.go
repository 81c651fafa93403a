package scores

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "best.yaml"))

	best, err := s.Best()
	require.NoError(t, err)
	assert.Zero(t, best, "missing file reads as zero")

	require.NoError(t, s.Save(42))
	best, err = s.Best()
	require.NoError(t, err)
	assert.Equal(t, 42, best)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "best_seconds: 42\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestFileStore_Errors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "best.yaml")
	require.NoError(t, os.WriteFile(path, []byte("best_seconds: [nope"), 0o600))

	_, err := NewFileStore(path).Best()
	assert.ErrorIs(t, err, ErrCorruptRecord)

	require.NoError(t, os.WriteFile(path, []byte("best_seconds: -4\n"), 0o600))
	_, err = NewFileStore(path).Best()
	assert.ErrorIs(t, err, ErrCorruptRecord)

	assert.ErrorIs(t, NewFileStore(path).Save(-1), ErrNegativeTime)
	assert.Error(t, NewFileStore(filepath.Join(dir, "no", "such", "dir.yaml")).Save(3))
}

func TestMemoryStore(t *testing.T) {
	var m MemoryStore
	require.NoError(t, m.Save(7))
	best, err := m.Best()
	require.NoError(t, err)
	assert.Equal(t, 7, best)
	assert.ErrorIs(t, m.Save(-1), ErrNegativeTime)
}
