package comments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ms-events/internal/apperror"
	"ms-events/internal/logger"
	"ms-events/internal/models"
)

type DBLayer interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id int64) (*models.Comment, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id int64) error
	ListByEvent(ctx context.Context, eventID int64, sort string, from, size int) ([]models.Comment, map[int64]int64, error)
	CountLikes(ctx context.Context, commentID int64) (int64, error)
	AddLike(ctx context.Context, commentID, userID int64) error
	RemoveLike(ctx context.Context, commentID, userID int64) (bool, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	EventExists(ctx context.Context, id int64) (bool, error)
}

type CommentService struct {
	DB     DBLayer
	Logger *logger.Logger
}

func NewCommentService(db DBLayer, log *logger.Logger) *CommentService {
	return &CommentService{DB: db, Logger: log}
}

func (s *CommentService) Create(ctx context.Context, userID, eventID int64, req models.NewCommentRequest) (models.CommentDto, error) {
	if strings.TrimSpace(req.Text) == "" {
		return models.CommentDto{}, apperror.New(apperror.Validation, "comment text must not be blank")
	}
	if err := s.checkUserAndEvent(ctx, userID, eventID); err != nil {
		return models.CommentDto{}, err
	}

	comment := &models.Comment{
		AuthorID:  userID,
		EventID:   eventID,
		Text:      req.Text,
		CreatedOn: time.Now(),
	}
	if err := s.DB.CreateComment(ctx, comment); err != nil {
		return models.CommentDto{}, fmt.Errorf("failed to create comment: %w", err)
	}

	created, err := s.DB.GetCommentByID(ctx, comment.ID)
	if err != nil {
		return models.CommentDto{}, fmt.Errorf("failed to reload comment %d: %w", comment.ID, err)
	}
	return models.ToCommentDto(created, 0), nil
}

func (s *CommentService) Update(ctx context.Context, userID, commentID, eventID int64, req models.NewCommentRequest) (models.CommentDto, error) {
	if strings.TrimSpace(req.Text) == "" {
		return models.CommentDto{}, apperror.New(apperror.Validation, "comment text must not be blank")
	}

	comment, err := s.getAuthoredComment(ctx, userID, commentID, eventID)
	if err != nil {
		return models.CommentDto{}, err
	}

	comment.Text = req.Text
	comment.Edited = true
	if err := s.DB.UpdateComment(ctx, comment); err != nil {
		return models.CommentDto{}, fmt.Errorf("failed to update comment %d: %w", commentID, err)
	}

	likes, err := s.DB.CountLikes(ctx, commentID)
	if err != nil {
		return models.CommentDto{}, fmt.Errorf("failed to count likes of comment %d: %w", commentID, err)
	}
	return models.ToCommentDto(comment, likes), nil
}

func (s *CommentService) Delete(ctx context.Context, userID, commentID, eventID int64) error {
	if _, err := s.getAuthoredComment(ctx, userID, commentID, eventID); err != nil {
		return err
	}
	if err := s.DB.DeleteComment(ctx, commentID); err != nil {
		return fmt.Errorf("failed to delete comment %d: %w", commentID, err)
	}
	return nil
}

func (s *CommentService) Like(ctx context.Context, userID, commentID int64) error {
	exists, err := s.DB.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return apperror.Newf(apperror.NotFound, "user %d not found", userID)
	}
	if _, err := s.DB.GetCommentByID(ctx, commentID); err != nil {
		return err
	}
	return s.DB.AddLike(ctx, commentID, userID)
}

func (s *CommentService) Unlike(ctx context.Context, userID, commentID int64) error {
	if _, err := s.DB.GetCommentByID(ctx, commentID); err != nil {
		return err
	}
	removed, err := s.DB.RemoveLike(ctx, commentID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove like from comment %d: %w", commentID, err)
	}
	if !removed {
		return apperror.Newf(apperror.NotFound, "user %d has not liked comment %d", userID, commentID)
	}
	return nil
}

func (s *CommentService) ListByEvent(ctx context.Context, eventID int64, sort string, from, size int) ([]models.CommentDto, error) {
	if sort != models.CommentSortLikes && sort != models.CommentSortNew {
		return nil, apperror.Newf(apperror.InvalidSort, "unsupported sort: %s", sort)
	}
	exists, err := s.DB.EventExists(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to check event: %w", err)
	}
	if !exists {
		return nil, apperror.Newf(apperror.NotFound, "event %d not found", eventID)
	}

	comments, likes, err := s.DB.ListByEvent(ctx, eventID, sort, from, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments of event %d: %w", eventID, err)
	}

	dtos := make([]models.CommentDto, 0, len(comments))
	for i := range comments {
		dtos = append(dtos, models.ToCommentDto(&comments[i], likes[comments[i].ID]))
	}
	return dtos, nil
}

func (s *CommentService) getAuthoredComment(ctx context.Context, userID, commentID, eventID int64) (*models.Comment, error) {
	comment, err := s.DB.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.EventID != eventID {
		return nil, apperror.Newf(apperror.Validation, "comment %d does not belong to event %d", commentID, eventID)
	}
	if comment.AuthorID != userID {
		return nil, apperror.Newf(apperror.Validation, "user %d is not the author of comment %d", userID, commentID)
	}
	return comment, nil
}

func (s *CommentService) checkUserAndEvent(ctx context.Context, userID, eventID int64) error {
	exists, err := s.DB.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return apperror.Newf(apperror.NotFound, "user %d not found", userID)
	}
	exists, err = s.DB.EventExists(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to check event: %w", err)
	}
	if !exists {
		return apperror.Newf(apperror.NotFound, "event %d not found", eventID)
	}
	return nil
}
