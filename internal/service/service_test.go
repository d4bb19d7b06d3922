package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/cfmconsole/cfm/internal/apperr"
	"github.com/cfmconsole/cfm/internal/db"
	"github.com/cfmconsole/cfm/internal/model"
	"github.com/cfmconsole/cfm/internal/repository"
	"github.com/cfmconsole/cfm/internal/storage"
)

const testMaxUpload = 1 << 20

type testEnv struct {
	db      *sqlx.DB
	base    string
	files   repository.FileRepository
	shares  repository.ShareRepository
	servers repository.ServerRepository
	users   repository.UserRepository
	blobs   *countingStorage

	fileService   *FileService
	shareService  *ShareService
	authService   *AuthService
	userService   *UserService
	serverService *ServerService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	conn, err := db.Init(ctx, db.DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.RunMigrations(ctx, conn.DB, db.DriverSQLite))

	base := t.TempDir()
	fsStore, err := storage.NewFSStorage(ctx, base)
	require.NoError(t, err)

	env := &testEnv{
		db:      conn,
		base:    base,
		files:   repository.NewFileRepository(conn),
		shares:  repository.NewShareRepository(conn),
		servers: repository.NewServerRepository(conn),
		users:   repository.NewUserRepository(conn),
		blobs:   &countingStorage{Storage: fsStore},
	}
	env.fileService = NewFileService(env.files, env.shares, env.blobs, testMaxUpload)
	env.shareService = NewShareService(env.files, env.servers, env.shares)
	env.authService = NewAuthService(env.users, "test-secret", time.Hour)
	env.userService = NewUserService(env.users, env.authService)
	env.serverService = NewServerService(env.servers)
	return env
}

func (e *testEnv) seedServer(t *testing.T, id string) {
	t.Helper()
	err := e.servers.Create(context.Background(), &model.Server{
		ID:        id,
		Name:      "server " + id,
		Host:      "10.0.0.1",
		Port:      25565,
		Status:    model.ServerStatusOnline,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

// countingStorage records calls made to the wrapped store and
// optionally fails Put or advertises directory support.
type countingStorage struct {
	storage.Storage

	mu      sync.Mutex
	puts    int
	deletes int
	putErr  error
}

func (c *countingStorage) Put(ctx context.Context, r io.Reader) (string, int64, error) {
	c.mu.Lock()
	c.puts++
	putErr := c.putErr
	c.mu.Unlock()

	if putErr != nil {
		return "", 0, putErr
	}
	return c.Storage.Put(ctx, r)
}

func (c *countingStorage) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	c.deletes++
	c.mu.Unlock()
	return c.Storage.Delete(ctx, id)
}

func (c *countingStorage) EnsureDir(ctx context.Context, fullPath string) error {
	if maker, ok := c.Storage.(storage.DirectoryMaker); ok {
		return maker.EnsureDir(ctx, fullPath)
	}
	return nil
}

func (c *countingStorage) putCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.puts
}

// failingCreateRepo rejects every insert.
type failingCreateRepo struct {
	repository.FileRepository
	err error
}

func (f *failingCreateRepo) Create(ctx context.Context, file *model.File) error {
	return f.err
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	var e *apperr.Error
	require.True(t, errors.As(err, &e), "expected *apperr.Error, got %T: %v", err, err)
	require.Equal(t, kind, e.Kind, "error: %v", err)
}
