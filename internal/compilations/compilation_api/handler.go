package compilation_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ms-events/internal/apperror"
	"ms-events/internal/compilations"
	"ms-events/internal/logger"
	"ms-events/internal/models"
	"ms-events/internal/utils"
)

type Handler struct {
	CompilationService *compilations.CompilationService
	Logger             *logger.Logger
}

func (h *Handler) CreateCompilation(w http.ResponseWriter, r *http.Request) {
	var req models.NewCompilationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteBadRequest(w, "invalid compilation body: "+err.Error())
		return
	}

	dto, err := h.CompilationService.Create(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateCompilation: %v", err))
		utils.WriteError(w, "could not create compilation", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateCompilation: compilation=%d", dto.ID))
	utils.WriteJSON(w, http.StatusCreated, dto)
}

func (h *Handler) UpdateCompilation(w http.ResponseWriter, r *http.Request) {
	compID, err := utils.ParseID(chi.URLParam(r, "compId"))
	if err != nil {
		utils.WriteError(w, "invalid compilation id", err)
		return
	}

	var req models.UpdateCompilationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteBadRequest(w, "invalid compilation body: "+err.Error())
		return
	}

	dto, err := h.CompilationService.Update(r.Context(), compID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateCompilation: %v", err))
		utils.WriteError(w, "could not update compilation", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, dto)
}

func (h *Handler) DeleteCompilation(w http.ResponseWriter, r *http.Request) {
	compID, err := utils.ParseID(chi.URLParam(r, "compId"))
	if err != nil {
		utils.WriteError(w, "invalid compilation id", err)
		return
	}

	if err := h.CompilationService.Delete(r.Context(), compID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteCompilation: %v", err))
		utils.WriteError(w, "could not delete compilation", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("DeleteCompilation: compilation=%d", compID))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListCompilations(w http.ResponseWriter, r *http.Request) {
	from, size, err := utils.ParseFromSize(r)
	if err != nil {
		utils.WriteError(w, "invalid pagination", err)
		return
	}

	var pinned *bool
	if raw := r.URL.Query().Get("pinned"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			utils.WriteError(w, "invalid pinned flag",
				apperror.Newf(apperror.Validation, "malformed pinned flag: %s", raw))
			return
		}
		pinned = &v
	}

	dtos, err := h.CompilationService.List(r.Context(), pinned, from, size)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListCompilations: %v", err))
		utils.WriteError(w, "could not list compilations", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetCompilation(w http.ResponseWriter, r *http.Request) {
	compID, err := utils.ParseID(chi.URLParam(r, "compId"))
	if err != nil {
		utils.WriteError(w, "invalid compilation id", err)
		return
	}

	dto, err := h.CompilationService.GetByID(r.Context(), compID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetCompilation: %v", err))
		utils.WriteError(w, "could not fetch compilation", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, dto)
}
