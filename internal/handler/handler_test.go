package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/cfmconsole/cfm/internal/ctxkeys"
	"github.com/cfmconsole/cfm/internal/db"
	"github.com/cfmconsole/cfm/internal/model"
	"github.com/cfmconsole/cfm/internal/repository"
	"github.com/cfmconsole/cfm/internal/service"
	"github.com/cfmconsole/cfm/internal/storage"
)

const editorID = "editor-1"

type testEnv struct {
	db  *sqlx.DB
	mux *http.ServeMux

	files   *service.FileService
	shares  *service.ShareService
	auth    *service.AuthService
	users   *service.UserService
	servers *service.ServerService
}

// signingStorage adds presigned URLs to a store that lacks them.
type signingStorage struct {
	storage.Storage
}

func (s signingStorage) PresignedURL(_ context.Context, id string, expiry time.Duration) (string, error) {
	return "https://blobs.example/" + id + "?expires=" + expiry.String(), nil
}

func newTestEnv(t *testing.T, sign bool) *testEnv {
	t.Helper()
	ctx := context.Background()

	conn, err := db.Init(ctx, db.DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.RunMigrations(ctx, conn.DB, db.DriverSQLite))

	fsStore, err := storage.NewFSStorage(ctx, t.TempDir())
	require.NoError(t, err)
	var blobs storage.Storage = fsStore
	if sign {
		blobs = signingStorage{Storage: fsStore}
	}

	fileRepo := repository.NewFileRepository(conn)
	shareRepo := repository.NewShareRepository(conn)
	serverRepo := repository.NewServerRepository(conn)
	userRepo := repository.NewUserRepository(conn)

	env := &testEnv{db: conn, mux: http.NewServeMux()}
	env.files = service.NewFileService(fileRepo, shareRepo, blobs, 1<<20)
	env.shares = service.NewShareService(fileRepo, serverRepo, shareRepo)
	env.auth = service.NewAuthService(userRepo, "test-secret", time.Hour)
	env.users = service.NewUserService(userRepo, env.auth)
	env.servers = service.NewServerService(serverRepo)

	files := NewFileHandler(env.files, 5*time.Minute)
	share := NewShareHandler(env.shares)
	auth := NewAuthHandler(env.auth)
	users := NewUserHandler(env.users)
	servers := NewServerHandler(env.servers)
	health := NewHealthHandler(conn)

	env.mux.HandleFunc("POST /files", files.Upload)
	env.mux.HandleFunc("GET /files", files.List)
	env.mux.HandleFunc("POST /files/create-directory", files.CreateDirectory)
	env.mux.HandleFunc("GET /files/{id}/download", files.Download)
	env.mux.HandleFunc("POST /files/file-access", share.Share)
	env.mux.HandleFunc("GET /files/file-access", share.Servers)
	env.mux.HandleFunc("POST /auth/login", auth.Login)
	env.mux.HandleFunc("GET /users", users.List)
	env.mux.HandleFunc("POST /users", users.Create)
	env.mux.HandleFunc("GET /servers", servers.List)
	env.mux.HandleFunc("POST /servers", servers.Create)
	env.mux.HandleFunc("GET /healthz", health.Check)
	return env
}

// do serves req, optionally as the given identity, and returns the recorder.
func (e *testEnv) do(req *http.Request, identity *model.Identity) *httptest.ResponseRecorder {
	if identity != nil {
		req = req.WithContext(ctxkeys.WithIdentity(req.Context(), identity))
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type part struct {
	field, name, body string
}

func multipartRequest(t *testing.T, fields map[string]string, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(p.body))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	require.NoError(t, json.NewDecoder(strings.NewReader(rec.Body.String())).Decode(v))
}

type errorEnvelope struct {
	OK    bool `json:"ok"`
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, kind string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	var body errorEnvelope
	decode(t, rec, &body)
	require.False(t, body.OK)
	require.Equal(t, kind, body.Error.Kind)
}

func (e *testEnv) mkdir(t *testing.T, parent, name string) {
	t.Helper()
	_, err := e.files.CreateDirectory(context.Background(), parent, name, editorID)
	require.NoError(t, err)
}

func (e *testEnv) upload(t *testing.T, path, name, body string) string {
	t.Helper()
	res, err := e.files.Upload(context.Background(), service.UploadRequest{
		Path:       path,
		UploaderID: editorID,
		Items:      []service.UploadItem{{Name: name, DeclaredSize: int64(len(body)), Body: strings.NewReader(body)}},
	})
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	return res.Created[0].ID
}

func (e *testEnv) server(t *testing.T, name string) string {
	t.Helper()
	s, err := e.servers.Create(context.Background(), service.CreateServerInput{
		Name: name,
		Host: "10.0.0.1",
		Port: 25565,
	})
	require.NoError(t, err)
	return s.ID
}
