package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfmconsole/cfm/internal/config"
	"github.com/cfmconsole/cfm/internal/storage"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		AppName:         "cfm",
		AppEnv:          "development",
		DBDriver:        "sqlite",
		DBConnection:    filepath.Join(dir, "cfm.db"),
		JWTSecret:       "test-secret",
		JWTExpiry:       time.Hour,
		BlobDriver:      "fs",
		BlobPath:        filepath.Join(dir, "blobs"),
		MaxUploadSize:   1 << 20,
		S3PresignExpiry: time.Minute,
	}
}

func TestNew(t *testing.T) {
	cfg := testConfig(t)

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &storage.FSStorage{}, a.Blobs)

	views, err := a.FileService.List(context.Background(), "/")
	require.NoError(t, err)
	assert.Empty(t, views)

	require.NoError(t, a.Close())
}

func TestNew_Badger(t *testing.T) {
	cfg := testConfig(t)
	cfg.BlobDriver = "badger"

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &storage.BadgerStorage{}, a.Blobs)
	require.NoError(t, a.Close())
}

func TestNew_Errors(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBDriver = "oracle"
	_, err := New(context.Background(), cfg)
	require.Error(t, err)

	cfg = testConfig(t)
	cfg.BlobDriver = "tape"
	_, err = New(context.Background(), cfg)
	require.ErrorContains(t, err, "failed to initialize storage")
}
