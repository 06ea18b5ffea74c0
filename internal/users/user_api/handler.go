package user_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-events/internal/logger"
	"ms-events/internal/models"
	"ms-events/internal/users"
	"ms-events/internal/utils"
)

type Handler struct {
	UserService *users.UserService
	Logger      *logger.Logger
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.NewUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteBadRequest(w, "invalid user body: "+err.Error())
		return
	}

	user, err := h.UserService.Create(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateUser: %v", err))
		utils.WriteError(w, "could not create user", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateUser: user=%d email=%s", user.ID, user.Email))
	utils.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	from, size, err := utils.ParseFromSize(r)
	if err != nil {
		utils.WriteError(w, "invalid pagination", err)
		return
	}
	ids, err := utils.ParseIDList(r.URL.Query().Get("ids"))
	if err != nil {
		utils.WriteError(w, "invalid ids filter", err)
		return
	}

	list, err := h.UserService.List(r.Context(), ids, from, size)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListUsers: %v", err))
		utils.WriteError(w, "could not list users", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.ParseID(chi.URLParam(r, "userId"))
	if err != nil {
		utils.WriteError(w, "invalid user id", err)
		return
	}

	if err := h.UserService.Delete(r.Context(), userID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteUser: %v", err))
		utils.WriteError(w, "could not delete user", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("DeleteUser: user=%d", userID))
	w.WriteHeader(http.StatusNoContent)
}
