package service

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfmconsole/cfm/internal/apperr"
)

func bytesReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}

func TestShare(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedServer(t, "s1")
	env.seedServer(t, "s2")

	res, err := env.fileService.Upload(ctx, UploadRequest{UploaderID: "u1", Items: []UploadItem{item("pack.zip", "zip")}})
	require.NoError(t, err)
	fileID := res.Created[0].ID

	share, created, err := env.shareService.Share(ctx, fileID, "s2", "u1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "s2", share.ServerID)

	t.Run("re-share is idempotent", func(t *testing.T) {
		again, created, err := env.shareService.Share(ctx, fileID, "s2", "u2")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, share.ID, again.ID)
		assert.Equal(t, "u1", again.AuthorizerID)
	})

	t.Run("servers sorted", func(t *testing.T) {
		_, _, err := env.shareService.Share(ctx, fileID, "s1", "u1")
		require.NoError(t, err)

		servers, err := env.shareService.ServersForFile(ctx, fileID)
		require.NoError(t, err)
		assert.Equal(t, []string{"s1", "s2"}, servers)
	})

	t.Run("required fields", func(t *testing.T) {
		_, _, err := env.shareService.Share(ctx, "", "s1", "u1")
		requireKind(t, err, apperr.KindValidation)
		_, _, err = env.shareService.Share(ctx, fileID, "", "u1")
		requireKind(t, err, apperr.KindValidation)
		_, _, err = env.shareService.Share(ctx, fileID, "s1", "")
		requireKind(t, err, apperr.KindValidation)
	})

	t.Run("missing file or server", func(t *testing.T) {
		_, _, err := env.shareService.Share(ctx, "missing", "s1", "u1")
		requireKind(t, err, apperr.KindNotFound)
		_, _, err = env.shareService.Share(ctx, fileID, "missing", "u1")
		requireKind(t, err, apperr.KindNotFound)
		_, err = env.shareService.ServersForFile(ctx, "missing")
		requireKind(t, err, apperr.KindNotFound)
	})

	t.Run("directories cannot be shared", func(t *testing.T) {
		dir, err := env.fileService.CreateDirectory(ctx, "/", "maps", "u1")
		require.NoError(t, err)
		_, _, err = env.shareService.Share(ctx, dir.ID, "s1", "u1")
		requireKind(t, err, apperr.KindValidation)
	})
}
