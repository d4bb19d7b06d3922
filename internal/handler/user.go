package handler

import (
	"net/http"

	"github.com/cfmconsole/cfm/internal/model"
	"github.com/cfmconsole/cfm/internal/respond"
	"github.com/cfmconsole/cfm/internal/service"
)

type userHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *userHandler {
	return &userHandler{userService: userService}
}

type usersResponse struct {
	OK    bool          `json:"ok"`
	Users []*model.User `json:"users"`
}

type userResponse struct {
	OK   bool        `json:"ok"`
	User *model.User `json:"user"`
}

func (h *userHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, usersResponse{OK: true, Users: users})
}

func (h *userHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateUserInput
	if err := decodeJSON(w, r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}

	user, err := h.userService.Create(r.Context(), in)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, userResponse{OK: true, User: user})
}
