package category_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-events/internal/categories"
	"ms-events/internal/logger"
	"ms-events/internal/models"
	"ms-events/internal/utils"
)

type Handler struct {
	CategoryService *categories.CategoryService
	Logger          *logger.Logger
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.NewCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteBadRequest(w, "invalid category body: "+err.Error())
		return
	}

	category, err := h.CategoryService.Create(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateCategory: %v", err))
		utils.WriteError(w, "could not create category", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateCategory: category=%d name=%s", category.ID, category.Name))
	utils.WriteJSON(w, http.StatusCreated, category)
}

func (h *Handler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	catID, err := utils.ParseID(chi.URLParam(r, "catId"))
	if err != nil {
		utils.WriteError(w, "invalid category id", err)
		return
	}

	var req models.NewCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteBadRequest(w, "invalid category body: "+err.Error())
		return
	}

	category, err := h.CategoryService.Rename(r.Context(), catID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("RenameCategory: %v", err))
		utils.WriteError(w, "could not rename category", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, category)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	catID, err := utils.ParseID(chi.URLParam(r, "catId"))
	if err != nil {
		utils.WriteError(w, "invalid category id", err)
		return
	}

	if err := h.CategoryService.Delete(r.Context(), catID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteCategory: %v", err))
		utils.WriteError(w, "could not delete category", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("DeleteCategory: category=%d", catID))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	from, size, err := utils.ParseFromSize(r)
	if err != nil {
		utils.WriteError(w, "invalid pagination", err)
		return
	}

	list, err := h.CategoryService.List(r.Context(), from, size)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListCategories: %v", err))
		utils.WriteError(w, "could not list categories", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	catID, err := utils.ParseID(chi.URLParam(r, "catId"))
	if err != nil {
		utils.WriteError(w, "invalid category id", err)
		return
	}

	category, err := h.CategoryService.GetByID(r.Context(), catID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetCategory: %v", err))
		utils.WriteError(w, "could not fetch category", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, category)
}
