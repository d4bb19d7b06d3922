package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfmconsole/cfm/internal/app"
	"github.com/cfmconsole/cfm/internal/config"
	"github.com/cfmconsole/cfm/internal/model"
	"github.com/cfmconsole/cfm/internal/service"
)

const password = "correct horse battery"

func newServer(t *testing.T) (*app.App, *httptest.Server) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		AppName:         "cfm",
		AppEnv:          "development",
		DBDriver:        "sqlite",
		DBConnection:    filepath.Join(dir, "cfm.db"),
		JWTSecret:       "test-secret",
		JWTExpiry:       time.Hour,
		CORSOrigin:      "https://console.example",
		BlobDriver:      "fs",
		BlobPath:        filepath.Join(dir, "blobs"),
		MaxUploadSize:   1 << 20,
		S3PresignExpiry: time.Minute,
	}

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	srv := httptest.NewServer(SetupRoutes(a))
	t.Cleanup(func() {
		srv.Close()
		_ = a.Close()
	})
	return a, srv
}

func seedUser(t *testing.T, a *app.App, email, role string) {
	t.Helper()
	_, err := a.UserService.Create(context.Background(), service.CreateUserInput{
		Email:    email,
		Password: password,
		Role:     role,
	})
	require.NoError(t, err)
}

func login(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := http.Post(srv.URL+"/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func call(t *testing.T, method, url, token, contentType string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func uploadBody(t *testing.T, name, content string) (string, []byte) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return mw.FormDataContentType(), buf.Bytes()
}

func TestRoleGates(t *testing.T) {
	a, srv := newServer(t)
	seedUser(t, a, "viewer@example.com", model.RoleViewer)
	seedUser(t, a, "editor@example.com", model.RoleEditor)
	viewer := login(t, srv, "viewer@example.com")
	editor := login(t, srv, "editor@example.com")

	resp := call(t, http.MethodGet, srv.URL+"/files", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = call(t, http.MethodGet, srv.URL+"/files", "not-a-token", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = call(t, http.MethodGet, srv.URL+"/files", viewer, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ct, body := uploadBody(t, "a.txt", "a")
	resp = call(t, http.MethodPost, srv.URL+"/files", viewer, ct, body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, http.MethodPost, srv.URL+"/files", editor, ct, body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, http.MethodGet, srv.URL+"/users", editor, "", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, http.MethodGet, srv.URL+"/servers", viewer, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, http.MethodPost, srv.URL+"/servers", editor, "application/json", []byte(`{"name":"x","host":"10.0.0.1","port":25565}`))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestEndToEnd(t *testing.T) {
	a, srv := newServer(t)
	seedUser(t, a, "admin@example.com", model.RoleAdmin)
	admin := login(t, srv, "admin@example.com")

	resp := call(t, http.MethodPost, srv.URL+"/servers", admin, "application/json", []byte(`{"name":"lobby","host":"10.0.0.1","port":25565,"status":"online"}`))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Server model.Server `json:"server"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	resp = call(t, http.MethodPost, srv.URL+"/files/create-directory", admin, "application/json", []byte(`{"name":"maps","path":"/"}`))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("path", "/maps"))
	fw, err := mw.CreateFormFile("file", "world.zip")
	require.NoError(t, err)
	_, err = fw.Write([]byte("zipdata"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp = call(t, http.MethodPost, srv.URL+"/files", admin, mw.FormDataContentType(), buf.Bytes())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var uploaded struct {
		OK            bool                   `json:"ok"`
		UploadedFiles []service.CreatedEntry `json:"uploadedFiles"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&uploaded))
	require.True(t, uploaded.OK)
	require.Len(t, uploaded.UploadedFiles, 1)
	fileID := uploaded.UploadedFiles[0].ID

	share, _ := json.Marshal(map[string]string{"fileId": fileID, "serverId": created.Server.ID})
	resp = call(t, http.MethodPost, srv.URL+"/files/file-access", admin, "application/json", share)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, http.MethodGet, srv.URL+"/files?path=/maps/", admin, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listing struct {
		Files []model.FileView `json:"files"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	require.Len(t, listing.Files, 1)
	assert.Equal(t, "world.zip", listing.Files[0].Name)
	assert.Equal(t, "/maps", listing.Files[0].Path)
	assert.Equal(t, []string{created.Server.ID}, listing.Files[0].SharedWith)
	assert.Equal(t, model.SyncStatusSynced, listing.Files[0].SyncStatus)

	resp = call(t, http.MethodGet, srv.URL+"/files/"+fileID+"/download", admin, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var content bytes.Buffer
	_, err = content.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "zipdata", content.String())
}

func TestMiddlewareStack(t *testing.T) {
	_, srv := newServer(t)

	resp := call(t, http.MethodGet, srv.URL+"/healthz", "", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "https://console.example", resp.Header.Get("Access-Control-Allow-Origin"))

	resp = call(t, http.MethodGet, srv.URL+"/nope", "", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body struct {
		OK    bool `json:"ok"`
		Error struct {
			Kind string `json:"kind"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "not_found", body.Error.Kind)
}

func TestLoginRateLimit(t *testing.T) {
	_, srv := newServer(t)

	bad := []byte(`{"email":"nobody@example.com","password":"wrong password here"}`)
	for range 5 {
		resp := call(t, http.MethodPost, srv.URL+"/auth/login", "", "application/json", bad)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp := call(t, http.MethodPost, srv.URL+"/auth/login", "", "application/json", bad)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
