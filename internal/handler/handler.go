// Package handler exposes the file-management services as a JSON API.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/cfmconsole/cfm/internal/apperr"
	"github.com/cfmconsole/cfm/internal/ctxkeys"
	"github.com/cfmconsole/cfm/internal/respond"
)

// maxJSONBody bounds request bodies of the non-upload endpoints.
const maxJSONBody = 1 << 20

type okResponse struct {
	OK bool `json:"ok"`
}

// decodeJSON reads a single JSON object from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperr.Validation("request body too large")
		case errors.Is(err, io.EOF):
			return apperr.Validation("request body is empty")
		default:
			return apperr.Validation("malformed JSON body")
		}
	}
	return nil
}

// actorID picks the acting user: the explicit id sent by the client, or the
// authenticated caller when the client sent none.
func actorID(r *http.Request, explicit ...string) string {
	for _, id := range explicit {
		if id != "" {
			return id
		}
	}
	if identity := ctxkeys.Identity(r.Context()); identity != nil {
		return identity.UserID
	}
	return ""
}

// NotFound answers unmatched routes with the JSON error envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, r, apperr.NotFound("route not found"))
}
