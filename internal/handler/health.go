package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/cfmconsole/cfm/internal/apperr"
	"github.com/cfmconsole/cfm/internal/respond"
)

// Pinger is satisfied by *sqlx.DB and *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type healthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *healthHandler {
	return &healthHandler{db: db}
}

func (h *healthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		respond.Error(w, r, apperr.Storage("database unavailable", err))
		return
	}
	respond.JSON(w, http.StatusOK, okResponse{OK: true})
}
