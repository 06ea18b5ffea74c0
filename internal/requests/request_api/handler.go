package request_api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-events/internal/logger"
	"ms-events/internal/requests"
	"ms-events/internal/utils"
)

type Handler struct {
	RequestService *requests.RequestService
	Logger         *logger.Logger
}

func (h *Handler) GetOwnRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.ParseID(chi.URLParam(r, "userId"))
	if err != nil {
		utils.WriteError(w, "invalid user id", err)
		return
	}

	dtos, err := h.RequestService.GetOwn(r.Context(), userID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetOwnRequests: %v", err))
		utils.WriteError(w, "could not list requests", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.ParseID(chi.URLParam(r, "userId"))
	if err != nil {
		utils.WriteError(w, "invalid user id", err)
		return
	}
	eventID, err := utils.ParseID(r.URL.Query().Get("eventId"))
	if err != nil {
		utils.WriteError(w, "invalid event id", err)
		return
	}

	dto, err := h.RequestService.Create(r.Context(), userID, eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateRequest: %v", err))
		utils.WriteError(w, "could not create request", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateRequest: user=%d event=%d status=%s", userID, eventID, dto.Status))
	utils.WriteJSON(w, http.StatusCreated, dto)
}

func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.ParseID(chi.URLParam(r, "userId"))
	if err != nil {
		utils.WriteError(w, "invalid user id", err)
		return
	}
	requestID, err := utils.ParseID(chi.URLParam(r, "requestId"))
	if err != nil {
		utils.WriteError(w, "invalid request id", err)
		return
	}

	dto, err := h.RequestService.Cancel(r.Context(), userID, requestID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CancelRequest: %v", err))
		utils.WriteError(w, "could not cancel request", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CancelRequest: user=%d request=%d", userID, requestID))
	utils.WriteJSON(w, http.StatusOK, dto)
}
