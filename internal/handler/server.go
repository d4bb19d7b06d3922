package handler

import (
	"net/http"

	"github.com/cfmconsole/cfm/internal/model"
	"github.com/cfmconsole/cfm/internal/respond"
	"github.com/cfmconsole/cfm/internal/service"
)

type serverHandler struct {
	serverService *service.ServerService
}

func NewServerHandler(serverService *service.ServerService) *serverHandler {
	return &serverHandler{serverService: serverService}
}

type serverListResponse struct {
	OK      bool            `json:"ok"`
	Servers []*model.Server `json:"servers"`
}

type serverResponse struct {
	OK     bool          `json:"ok"`
	Server *model.Server `json:"server"`
}

func (h *serverHandler) List(w http.ResponseWriter, r *http.Request) {
	servers, err := h.serverService.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, serverListResponse{OK: true, Servers: servers})
}

func (h *serverHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateServerInput
	if err := decodeJSON(w, r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}

	server, err := h.serverService.Create(r.Context(), in)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, serverResponse{OK: true, Server: server})
}
