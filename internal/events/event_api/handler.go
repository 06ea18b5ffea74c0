package event_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"ms-events/internal/apperror"
	"ms-events/internal/events"
	"ms-events/internal/logger"
	"ms-events/internal/models"
	"ms-events/internal/utils"
)

type Handler struct {
	EventService *events.EventService
	Logger       *logger.Logger
}

// ---------------- PRIVATE ----------------

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.ParseID(chi.URLParam(r, "userId"))
	if err != nil {
		utils.WriteError(w, "invalid user id", err)
		return
	}

	var req models.NewEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteBadRequest(w, "invalid event body: "+err.Error())
		return
	}

	dto, err := h.EventService.Create(r.Context(), userID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateEvent: %v", err))
		utils.WriteError(w, "could not create event", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateEvent: user=%d event=%d", userID, dto.ID))
	utils.WriteJSON(w, http.StatusCreated, dto)
}

func (h *Handler) GetOwnEvents(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.ParseID(chi.URLParam(r, "userId"))
	if err != nil {
		utils.WriteError(w, "invalid user id", err)
		return
	}
	from, size, err := utils.ParseFromSize(r)
	if err != nil {
		utils.WriteError(w, "invalid pagination", err)
		return
	}

	dtos, err := h.EventService.GetOwn(r.Context(), userID, from, size)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetOwnEvents: %v", err))
		utils.WriteError(w, "could not list events", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetOwnEvent(w http.ResponseWriter, r *http.Request) {
	userID, eventID, err := pathUserEvent(r)
	if err != nil {
		utils.WriteError(w, "invalid path parameters", err)
		return
	}

	dto, err := h.EventService.GetOwnByID(r.Context(), userID, eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetOwnEvent: %v", err))
		utils.WriteError(w, "could not fetch event", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, dto)
}

func (h *Handler) UpdateOwnEvent(w http.ResponseWriter, r *http.Request) {
	userID, eventID, err := pathUserEvent(r)
	if err != nil {
		utils.WriteError(w, "invalid path parameters", err)
		return
	}

	var req models.UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteBadRequest(w, "invalid event body: "+err.Error())
		return
	}

	dto, err := h.EventService.UpdateByOwner(r.Context(), userID, eventID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateOwnEvent: %v", err))
		utils.WriteError(w, "could not update event", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("UpdateOwnEvent: user=%d event=%d state=%s", userID, eventID, dto.State))
	utils.WriteJSON(w, http.StatusOK, dto)
}

func (h *Handler) GetEventRequests(w http.ResponseWriter, r *http.Request) {
	userID, eventID, err := pathUserEvent(r)
	if err != nil {
		utils.WriteError(w, "invalid path parameters", err)
		return
	}

	dtos, err := h.EventService.GetOwnEventRequests(r.Context(), userID, eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetEventRequests: %v", err))
		utils.WriteError(w, "could not list requests", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) UpdateEventRequests(w http.ResponseWriter, r *http.Request) {
	userID, eventID, err := pathUserEvent(r)
	if err != nil {
		utils.WriteError(w, "invalid path parameters", err)
		return
	}

	var update models.RequestStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		utils.WriteBadRequest(w, "invalid status update body: "+err.Error())
		return
	}

	result, err := h.EventService.UpdateRequestStatuses(r.Context(), userID, eventID, update)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateEventRequests: %v", err))
		utils.WriteError(w, "could not update request statuses", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("UpdateEventRequests: event=%d confirmed=%d rejected=%d",
		eventID, len(result.ConfirmedRequests), len(result.RejectedRequests)))
	utils.WriteJSON(w, http.StatusOK, result)
}

// ---------------- ADMIN ----------------

func (h *Handler) AdminSearchEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	from, size, err := utils.ParseFromSize(r)
	if err != nil {
		utils.WriteError(w, "invalid pagination", err)
		return
	}

	filter := events.AdminFilter{From: from, Size: size}
	if filter.Users, err = utils.ParseIDList(query.Get("users")); err != nil {
		utils.WriteError(w, "invalid users filter", err)
		return
	}
	if filter.Categories, err = utils.ParseIDList(query.Get("categories")); err != nil {
		utils.WriteError(w, "invalid categories filter", err)
		return
	}
	if raw := query.Get("states"); raw != "" {
		filter.States = strings.Split(raw, ",")
	}
	if filter.RangeStart, err = optionalDateTime(query.Get("rangeStart")); err != nil {
		utils.WriteError(w, "invalid range start", err)
		return
	}
	if filter.RangeEnd, err = optionalDateTime(query.Get("rangeEnd")); err != nil {
		utils.WriteError(w, "invalid range end", err)
		return
	}

	dtos, err := h.EventService.AdminSearch(r.Context(), filter)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("AdminSearchEvents: %v", err))
		utils.WriteError(w, "could not search events", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) AdminUpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := utils.ParseID(chi.URLParam(r, "eventId"))
	if err != nil {
		utils.WriteError(w, "invalid event id", err)
		return
	}

	var req models.UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteBadRequest(w, "invalid event body: "+err.Error())
		return
	}

	dto, err := h.EventService.UpdateByAdmin(r.Context(), eventID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("AdminUpdateEvent: %v", err))
		utils.WriteError(w, "could not update event", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("AdminUpdateEvent: event=%d state=%s", eventID, dto.State))
	utils.WriteJSON(w, http.StatusOK, dto)
}

// ---------------- PUBLIC ----------------

func (h *Handler) SearchEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	from, size, err := utils.ParseFromSize(r)
	if err != nil {
		utils.WriteError(w, "invalid pagination", err)
		return
	}

	filter := events.PublicFilter{Text: query.Get("text")}
	if filter.Categories, err = utils.ParseIDList(query.Get("categories")); err != nil {
		utils.WriteError(w, "invalid categories filter", err)
		return
	}
	if raw := query.Get("paid"); raw != "" {
		paid, err := strconv.ParseBool(raw)
		if err != nil {
			utils.WriteError(w, "invalid paid flag",
				apperror.Newf(apperror.Validation, "malformed paid flag: %s", raw))
			return
		}
		filter.Paid = &paid
	}
	if filter.RangeStart, err = optionalDateTime(query.Get("rangeStart")); err != nil {
		utils.WriteError(w, "invalid range start", err)
		return
	}
	if filter.RangeEnd, err = optionalDateTime(query.Get("rangeEnd")); err != nil {
		utils.WriteError(w, "invalid range end", err)
		return
	}
	if raw := query.Get("onlyAvailable"); raw != "" {
		filter.OnlyAvailable, err = strconv.ParseBool(raw)
		if err != nil {
			utils.WriteError(w, "invalid onlyAvailable flag",
				apperror.Newf(apperror.Validation, "malformed onlyAvailable flag: %s", raw))
			return
		}
	}

	sortMode := query.Get("sort")
	if sortMode == "" {
		sortMode = events.SortEventDate
	}

	dtos, err := h.EventService.PublicSearch(r.Context(), filter, sortMode, from, size)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("SearchEvents: %v", err))
		utils.WriteError(w, "could not search events", err)
		return
	}

	h.EventService.RecordHit(r.Context(), "/events", utils.RemoteIP(r))
	utils.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetPublicEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, "invalid event id", err)
		return
	}

	dto, err := h.EventService.GetPublicByID(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetPublicEvent: %v", err))
		utils.WriteError(w, "could not fetch event", err)
		return
	}

	h.EventService.RecordHit(r.Context(), r.URL.Path, utils.RemoteIP(r))
	utils.WriteJSON(w, http.StatusOK, dto)
}

func pathUserEvent(r *http.Request) (int64, int64, error) {
	userID, err := utils.ParseID(chi.URLParam(r, "userId"))
	if err != nil {
		return 0, 0, err
	}
	eventID, err := utils.ParseID(chi.URLParam(r, "eventId"))
	if err != nil {
		return 0, 0, err
	}
	return userID, eventID, nil
}

func optionalDateTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := models.ParseDateTime(s)
	if err != nil {
		return nil, apperror.Newf(apperror.InvalidDateTime, "malformed datetime: %s", s)
	}
	return &t, nil
}
