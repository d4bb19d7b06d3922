package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfmconsole/cfm/internal/apperr"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestError_MapsKindToStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/files", nil)

	Error(rec, req, apperr.Conflict("an entry with this name already exists"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, map[string]any{"kind": "conflict", "message": "an entry with this name already exists"}, body["error"])
}

func TestError_HidesStorageCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/files", nil)

	Error(rec, req, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "storage_error", errBody["kind"])
	assert.NotContains(t, errBody["message"], "password")
}
