package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfmconsole/cfm/internal/config"
)

// runStorageContract checks the behaviour every blob store must share.
func runStorageContract(t *testing.T, s Storage) {
	ctx := context.Background()

	t.Run("put measures actual bytes", func(t *testing.T) {
		payload := bytes.Repeat([]byte{0xAB}, 60)

		id, n, err := s.Put(ctx, bytes.NewReader(payload))
		require.NoError(t, err)
		require.NotEmpty(t, id)
		assert.Equal(t, int64(60), n)

		rc, err := s.Open(ctx, id)
		require.NoError(t, err)
		defer rc.Close()
		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("empty blob", func(t *testing.T) {
		id, n, err := s.Put(ctx, strings.NewReader(""))
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)

		rc, err := s.Open(ctx, id)
		require.NoError(t, err)
		rc.Close()
	})

	t.Run("distinct ids", func(t *testing.T) {
		a, _, err := s.Put(ctx, strings.NewReader("same"))
		require.NoError(t, err)
		b, _, err := s.Put(ctx, strings.NewReader("same"))
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("delete", func(t *testing.T) {
		id, _, err := s.Put(ctx, strings.NewReader("bye"))
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, id))
		_, err = s.Open(ctx, id)
		assert.ErrorIs(t, err, ErrBlobNotFound)
		assert.ErrorIs(t, s.Delete(ctx, id), ErrBlobNotFound)
	})

	t.Run("missing blob", func(t *testing.T) {
		_, err := s.Open(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, ErrBlobNotFound)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err := s.Put(cctx, strings.NewReader("late"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNew_SelectsDriver(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, &config.Config{BlobDriver: "fs", BlobPath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FSStorage{}, s)
	require.NoError(t, s.Close())

	s, err = New(ctx, &config.Config{BlobDriver: "badger", BlobPath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &BadgerStorage{}, s)
	require.NoError(t, s.Close())

	_, err = New(ctx, &config.Config{BlobDriver: "tape"})
	assert.Error(t, err)
}
