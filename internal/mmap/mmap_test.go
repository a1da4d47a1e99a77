package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, []byte("loopgo"), 0o600))

	m, err := Open(path)
	require.NoError(t, err)

	assert.Equal(t, []byte("loopgo"), m.Bytes())
	assert.Equal(t, 6, m.Size())
	assert.NoError(t, m.Advise(AccessSequential))

	require.NoError(t, m.Close())
	assert.Nil(t, m.Bytes())
	assert.NoError(t, m.Close())
	assert.ErrorIs(t, m.Advise(AccessRandom), ErrClosed)
}

func TestOpenEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	m, err := Open(path)
	require.NoError(t, err)
	defer m.Close()

	assert.Empty(t, m.Bytes())
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
