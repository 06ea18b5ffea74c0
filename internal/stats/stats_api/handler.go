package stats_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"ms-events/internal/apperror"
	"ms-events/internal/logger"
	"ms-events/internal/models"
	"ms-events/internal/stats"
	"ms-events/internal/utils"
)

type Handler struct {
	StatsService *stats.StatsService
	Logger       *logger.Logger
}

func (h *Handler) RecordHit(w http.ResponseWriter, r *http.Request) {
	var dto models.EndpointHitDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("API", fmt.Sprintf("RecordHit: failed to decode request body: %v", err))
		utils.WriteBadRequest(w, "invalid hit body: "+err.Error())
		return
	}

	if err := h.StatsService.RecordHit(r.Context(), dto); err != nil {
		h.Logger.Error("API", fmt.Sprintf("RecordHit: %v", err))
		utils.WriteError(w, "could not record hit", err)
		return
	}

	h.Logger.Debug("API", fmt.Sprintf("RecordHit: app=%s uri=%s", dto.App, dto.URI))
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	startStr := query.Get("start")
	endStr := query.Get("end")
	if startStr == "" || endStr == "" {
		utils.WriteError(w, "invalid stats query",
			apperror.New(apperror.Validation, "start and end are required"))
		return
	}

	start, err := models.ParseDateTime(startStr)
	if err != nil {
		utils.WriteError(w, "invalid stats query",
			apperror.Newf(apperror.InvalidDateTime, "malformed start: %s", startStr))
		return
	}
	end, err := models.ParseDateTime(endStr)
	if err != nil {
		utils.WriteError(w, "invalid stats query",
			apperror.Newf(apperror.InvalidDateTime, "malformed end: %s", endStr))
		return
	}

	var uris []string
	if raw := query.Get("uris"); raw != "" {
		for _, u := range strings.Split(raw, ",") {
			if u = strings.TrimSpace(u); u != "" {
				uris = append(uris, u)
			}
		}
	}

	unique := false
	if raw := query.Get("unique"); raw != "" {
		unique, err = strconv.ParseBool(raw)
		if err != nil {
			utils.WriteError(w, "invalid stats query",
				apperror.Newf(apperror.Validation, "malformed unique flag: %s", raw))
			return
		}
	}

	result, err := h.StatsService.GetStats(r.Context(), start, end, uris, unique)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetStats: %v", err))
		utils.WriteError(w, "could not aggregate stats", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, result)
}
