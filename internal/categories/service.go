package categories

import (
	"context"
	"fmt"
	"strings"

	"ms-events/internal/apperror"
	"ms-events/internal/models"
)

type DBLayer interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategoryByID(ctx context.Context, id int64) (*models.Category, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context, from, size int) ([]models.Category, error)
	NameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	InUse(ctx context.Context, id int64) (bool, error)
}

type CategoryService struct {
	DB DBLayer
}

func NewCategoryService(db DBLayer) *CategoryService {
	return &CategoryService{DB: db}
}

func (s *CategoryService) Create(ctx context.Context, req models.NewCategoryRequest) (*models.Category, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperror.New(apperror.Validation, "category name must not be blank")
	}
	taken, err := s.DB.NameExists(ctx, req.Name, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check name: %w", err)
	}
	if taken {
		return nil, apperror.Newf(apperror.ConflictData, "category name %q is already used", req.Name)
	}

	category := &models.Category{Name: req.Name}
	if err := s.DB.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *CategoryService) Rename(ctx context.Context, id int64, req models.NewCategoryRequest) (*models.Category, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperror.New(apperror.Validation, "category name must not be blank")
	}

	category, err := s.DB.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.DB.NameExists(ctx, req.Name, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check name: %w", err)
	}
	if taken {
		return nil, apperror.Newf(apperror.ConflictData, "category name %q is already used", req.Name)
	}

	category.Name = req.Name
	if err := s.DB.UpdateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category %d: %w", id, err)
	}
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if _, err := s.DB.GetCategoryByID(ctx, id); err != nil {
		return err
	}
	used, err := s.DB.InUse(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check category usage: %w", err)
	}
	if used {
		return apperror.Newf(apperror.ConflictData, "category %d is still referenced by events", id)
	}
	if err := s.DB.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	return nil
}

func (s *CategoryService) List(ctx context.Context, from, size int) ([]models.Category, error) {
	list, err := s.DB.ListCategories(ctx, from, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return list, nil
}

func (s *CategoryService) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	return s.DB.GetCategoryByID(ctx, id)
}
