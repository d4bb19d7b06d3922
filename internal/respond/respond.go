// Package respond writes the JSON envelopes shared by handlers and
// middleware: {"ok": true, ...} on success and
// {"ok": false, "error": {"kind", "message"}} on failure.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cfmconsole/cfm/internal/apperr"
)

type ErrorBody struct {
	Kind    apperr.Kind `json:"kind"`
	Message string      `json:"message"`
}

type errorEnvelope struct {
	OK    bool      `json:"ok"`
	Error ErrorBody `json:"error"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

// Error maps err to its status code and writes the error envelope.
// Storage failures are logged with their cause, which is never sent to the
// client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
	}
	JSON(w, status, errorEnvelope{
		OK:    false,
		Error: ErrorBody{Kind: kind, Message: apperr.Message(err)},
	})
}

// Status writes an error envelope with an explicit status, for failures
// that have no apperr kind such as rate limiting.
func Status(w http.ResponseWriter, status int, kind apperr.Kind, message string) {
	JSON(w, status, errorEnvelope{
		OK:    false,
		Error: ErrorBody{Kind: kind, Message: message},
	})
}
