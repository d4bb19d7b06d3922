package handler

import (
	"net/http"

	"github.com/cfmconsole/cfm/internal/respond"
	"github.com/cfmconsole/cfm/internal/service"
)

type shareHandler struct {
	shareService *service.ShareService
}

func NewShareHandler(shareService *service.ShareService) *shareHandler {
	return &shareHandler{shareService: shareService}
}

type shareRequest struct {
	FileID   string `json:"fileId"`
	ServerID string `json:"serverId"`
	UserID   string `json:"userId"`
}

type shareResponse struct {
	OK            bool `json:"ok"`
	AlreadyShared bool `json:"alreadyShared,omitempty"`
}

// Share grants a server access to a file. Repeating a grant is not an error.
func (h *shareHandler) Share(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	_, created, err := h.shareService.Share(r.Context(), req.FileID, req.ServerID, actorID(r, req.UserID))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if !created {
		respond.JSON(w, http.StatusOK, shareResponse{OK: true, AlreadyShared: true})
		return
	}
	respond.JSON(w, http.StatusCreated, shareResponse{OK: true})
}

type serversResponse struct {
	OK      bool     `json:"ok"`
	Servers []string `json:"servers"`
}

func (h *shareHandler) Servers(w http.ResponseWriter, r *http.Request) {
	servers, err := h.shareService.ServersForFile(r.Context(), r.URL.Query().Get("fileId"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, serversResponse{OK: true, Servers: servers})
}
