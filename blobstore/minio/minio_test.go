package minio

import (
	"context"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightjacket/pef"
	"github.com/lightjacket/pef/blobstore"
)

// TestStore_Integration requires a running MinIO instance. Skip if not
// available.
func TestStore_Integration(t *testing.T) {
	endpoint := "localhost:9000"
	accessKey := "minioadmin"
	secretKey := "minioadmin"
	bucket := "test-pef"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "test-prefix/")

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "blob.bin", data))
	defer func() { _ = store.Delete(ctx, "blob.bin") }()

	got, err := store.Get(ctx, "blob.bin")
	require.NoError(t, err)
	require.Equal(t, data, got)

	_, err = store.Get(ctx, "absent.bin")
	require.ErrorIs(t, err, blobstore.ErrNotFound)

	// Temporary upload keys never show up in listings.
	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "blob.bin")
	for _, name := range names {
		assert.NotContains(t, name, ".tmp-")
	}

	// Round-trip an encoded set through the helpers.
	e, err := pef.Encode([]uint64{2, 3, 5, 7, 11})
	require.NoError(t, err)
	require.NoError(t, blobstore.Save(ctx, store, "sets/primes", e))
	defer func() { _ = store.Delete(ctx, "sets/primes") }()

	back, err := blobstore.Load(ctx, store, "sets/primes")
	require.NoError(t, err)
	assert.Equal(t, e.Bytes(), back.Bytes())

	require.NoError(t, store.Delete(ctx, "blob.bin"))
	_, err = store.Get(ctx, "blob.bin")
	require.ErrorIs(t, err, blobstore.ErrNotFound)

	// Deleting a missing blob is not an error.
	assert.NoError(t, store.Delete(ctx, "blob.bin"))
}
