package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("PutOpen", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "db/a.bin", []byte("hello world")))

		b, err := s.Open(ctx, "db/a.bin")
		require.NoError(t, err)
		defer b.Close()

		assert.Equal(t, int64(11), b.Size())

		p := make([]byte, 5)
		n, err := b.ReadAt(ctx, p, 6)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, "world", string(p))

		_, err = b.ReadAt(ctx, make([]byte, 4), 9)
		assert.ErrorIs(t, err, io.EOF)

		rc, err := b.ReadRange(ctx, 0, 5)
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, "hello", string(data))
	})

	t.Run("CreateVisibleOnClose", func(t *testing.T) {
		w, err := s.Create(ctx, "db/b.bin")
		require.NoError(t, err)
		_, err = w.Write([]byte("part1"))
		require.NoError(t, err)
		_, err = w.Write([]byte("part2"))
		require.NoError(t, err)
		require.NoError(t, w.Sync())
		require.NoError(t, w.Close())

		data, err := ReadAll(ctx, s, "db/b.bin")
		require.NoError(t, err)
		assert.Equal(t, "part1part2", string(data))
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "patterns/brief.yml", []byte("x")))

		names, err := s.List(ctx, "db/")
		require.NoError(t, err)
		assert.Equal(t, []string{"db/a.bin", "db/b.bin"}, names)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := s.Open(ctx, "missing")
		assert.True(t, IsNotFound(err))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "db/a.bin"))
		require.NoError(t, s.Delete(ctx, "db/a.bin"))

		_, err := s.Open(ctx, "db/a.bin")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("EmptyBlob", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "empty", nil))

		data, err := ReadAll(ctx, s, "empty")
		require.NoError(t, err)
		assert.Empty(t, data)
	})
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	testStore(t, NewLocalStore(t.TempDir()))
}

func TestMemoryStoreIsolatesCallerBuffers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	buf := []byte("abc")
	require.NoError(t, s.Put(ctx, "k", buf))
	buf[0] = 'x'

	data, err := ReadAll(ctx, s, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestMemoryStoreOpenBlobKeepsVersion(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "db.snap", []byte("v1")))
	b, err := s.Open(ctx, "db.snap")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, s.Put(ctx, "db.snap", []byte("v2-longer")))
	assert.Equal(t, int64(2), b.Size())

	data, err := ReadAll(ctx, s, "db.snap")
	require.NoError(t, err)
	assert.Equal(t, "v2-longer", string(data))
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStoreWriterClosed(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	w, err := s.Create(ctx, "patterns/brief.yml")
	require.NoError(t, err)
	_, err = w.Write([]byte("x1: [1]"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = w.Write([]byte("more"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	assert.ErrorIs(t, w.Close(), io.ErrClosedPipe)

	data, err := ReadAll(ctx, s, "patterns/brief.yml")
	require.NoError(t, err)
	assert.Equal(t, "x1: [1]", string(data))
}
