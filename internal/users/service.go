package users

import (
	"context"
	"fmt"
	"strings"

	"ms-events/internal/apperror"
	"ms-events/internal/models"
)

type DBLayer interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUsers(ctx context.Context, ids []int64, from, size int) ([]models.User, error)
	DeleteUser(ctx context.Context, id int64) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type UserService struct {
	DB DBLayer
}

func NewUserService(db DBLayer) *UserService {
	return &UserService{DB: db}
}

func (s *UserService) Create(ctx context.Context, req models.NewUserRequest) (*models.User, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return nil, apperror.New(apperror.Validation, "user name and email must not be blank")
	}
	taken, err := s.DB.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, apperror.Newf(apperror.ConflictData, "email %s is already registered", req.Email)
	}

	user := &models.User{Name: req.Name, Email: req.Email}
	if err := s.DB.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, ids []int64, from, size int) ([]models.User, error) {
	list, err := s.DB.GetUsers(ctx, ids, from, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return list, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.DB.DeleteUser(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	if !deleted {
		return apperror.Newf(apperror.NotFound, "user %d not found", id)
	}
	return nil
}
