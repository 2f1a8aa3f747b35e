package control

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryLock_Exclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	first, err := TryLock(path)
	require.NoError(t, err)

	// flock locks belong to the open file description, so a second open in
	// the same process conflicts too.
	_, err = TryLock(path)
	assert.ErrorIs(t, err, ErrBusy)

	require.NoError(t, first.Release())

	again, err := TryLock(path)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestGeneration_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	l, err := TryLock(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), l.Generation())
	assert.Equal(t, uint64(1), l.Bump())
	assert.Equal(t, uint64(2), l.Bump())
	require.NoError(t, l.Release())

	l, err = TryLock(path)
	require.NoError(t, err)
	defer func() { _ = l.Release() }()
	assert.Equal(t, uint64(2), l.Generation())
	assert.Equal(t, path, l.Path())
}

func TestTryLock_BadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("not a control file"), 0o644))

	_, err := TryLock(path)
	assert.ErrorContains(t, err, "invalid magic")
}
