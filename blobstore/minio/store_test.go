package minio

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/hupe1980/loopgo/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStore_Integration requires a running MinIO instance.
func TestStore_Integration(t *testing.T) {
	endpoint := os.Getenv("LOOPGO_MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	bucket := "loopgo-test"
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "it/")

	require.NoError(t, store.Put(ctx, "db/a.snap", []byte("hello minio")))

	b, err := store.Open(ctx, "db/a.snap")
	require.NoError(t, err)
	assert.Equal(t, int64(11), b.Size())

	p := make([]byte, 5)
	n, err := b.ReadAt(ctx, p, 6)
	require.NoError(t, err)
	assert.Equal(t, "minio", string(p[:n]))

	w, err := store.Create(ctx, "db/b.snap")
	require.NoError(t, err)
	_, err = io.WriteString(w, "streamed")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := blobstore.ReadAll(ctx, store, "db/b.snap")
	require.NoError(t, err)
	assert.Equal(t, "streamed", string(data))

	names, err := store.List(ctx, "db/")
	require.NoError(t, err)
	assert.Equal(t, []string{"db/a.snap", "db/b.snap"}, names)

	require.NoError(t, store.Delete(ctx, "db/a.snap"))
	require.NoError(t, store.Delete(ctx, "db/b.snap"))

	_, err = store.Open(ctx, "db/a.snap")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
