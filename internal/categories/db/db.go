package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ms-events/internal/apperror"
	"ms-events/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateCategory(ctx context.Context, category *models.Category) error {
	_, err := d.Bun.NewInsert().
		Model(category).
		Exec(ctx)
	return err
}

func (d *DB) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	err := d.Bun.NewSelect().
		Model(&category).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Newf(apperror.NotFound, "category %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (d *DB) UpdateCategory(ctx context.Context, category *models.Category) error {
	_, err := d.Bun.NewUpdate().
		Model(category).
		Column("name").
		Where("id = ?", category.ID).
		Exec(ctx)
	return err
}

func (d *DB) DeleteCategory(ctx context.Context, id int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Category)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (d *DB) ListCategories(ctx context.Context, from, size int) ([]models.Category, error) {
	var list []models.Category
	err := d.Bun.NewSelect().
		Model(&list).
		Order("id ASC").
		Offset(from).
		Limit(size).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	q := d.Bun.NewSelect().
		Model((*models.Category)(nil)).
		Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}
	return q.Exists(ctx)
}

func (d *DB) InUse(ctx context.Context, id int64) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Event)(nil)).
		Where("category_id = ?", id).
		Exists(ctx)
}
