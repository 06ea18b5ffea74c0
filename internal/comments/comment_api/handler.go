package comment_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-events/internal/comments"
	"ms-events/internal/logger"
	"ms-events/internal/models"
	"ms-events/internal/utils"
)

type Handler struct {
	CommentService *comments.CommentService
	Logger         *logger.Logger
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
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

	var req models.NewCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteBadRequest(w, "invalid comment body: "+err.Error())
		return
	}

	dto, err := h.CommentService.Create(r.Context(), userID, eventID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateComment: %v", err))
		utils.WriteError(w, "could not create comment", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateComment: user=%d event=%d comment=%d", userID, eventID, dto.ID))
	utils.WriteJSON(w, http.StatusCreated, dto)
}

func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	userID, commentID, err := pathUserComment(r)
	if err != nil {
		utils.WriteError(w, "invalid path parameters", err)
		return
	}
	eventID, err := utils.ParseID(r.URL.Query().Get("eventId"))
	if err != nil {
		utils.WriteError(w, "invalid event id", err)
		return
	}

	var req models.NewCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteBadRequest(w, "invalid comment body: "+err.Error())
		return
	}

	dto, err := h.CommentService.Update(r.Context(), userID, commentID, eventID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateComment: %v", err))
		utils.WriteError(w, "could not update comment", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, dto)
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, commentID, err := pathUserComment(r)
	if err != nil {
		utils.WriteError(w, "invalid path parameters", err)
		return
	}
	eventID, err := utils.ParseID(r.URL.Query().Get("eventId"))
	if err != nil {
		utils.WriteError(w, "invalid event id", err)
		return
	}

	if err := h.CommentService.Delete(r.Context(), userID, commentID, eventID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteComment: %v", err))
		utils.WriteError(w, "could not delete comment", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("DeleteComment: user=%d comment=%d", userID, commentID))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) LikeComment(w http.ResponseWriter, r *http.Request) {
	userID, commentID, err := pathUserComment(r)
	if err != nil {
		utils.WriteError(w, "invalid path parameters", err)
		return
	}

	if err := h.CommentService.Like(r.Context(), userID, commentID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("LikeComment: %v", err))
		utils.WriteError(w, "could not like comment", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) UnlikeComment(w http.ResponseWriter, r *http.Request) {
	userID, commentID, err := pathUserComment(r)
	if err != nil {
		utils.WriteError(w, "invalid path parameters", err)
		return
	}

	if err := h.CommentService.Unlike(r.Context(), userID, commentID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UnlikeComment: %v", err))
		utils.WriteError(w, "could not remove like", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	eventID, err := utils.ParseID(chi.URLParam(r, "eventId"))
	if err != nil {
		utils.WriteError(w, "invalid event id", err)
		return
	}
	from, size, err := utils.ParseFromSize(r)
	if err != nil {
		utils.WriteError(w, "invalid pagination", err)
		return
	}

	sortMode := r.URL.Query().Get("sort")
	if sortMode == "" {
		sortMode = models.CommentSortNew
	}

	dtos, err := h.CommentService.ListByEvent(r.Context(), eventID, sortMode, from, size)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListComments: %v", err))
		utils.WriteError(w, "could not list comments", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, dtos)
}

func pathUserComment(r *http.Request) (int64, int64, error) {
	userID, err := utils.ParseID(chi.URLParam(r, "userId"))
	if err != nil {
		return 0, 0, err
	}
	commentID, err := utils.ParseID(chi.URLParam(r, "commentId"))
	if err != nil {
		return 0, 0, err
	}
	return userID, commentID, nil
}
