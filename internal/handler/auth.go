package handler

import (
	"net/http"

	"github.com/cfmconsole/cfm/internal/model"
	"github.com/cfmconsole/cfm/internal/respond"
	"github.com/cfmconsole/cfm/internal/service"
)

type authHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *authHandler {
	return &authHandler{authService: authService}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	OK    bool        `json:"ok"`
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	token, user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, loginResponse{OK: true, Token: token, User: user})
}
