package db

import (
	"context"

	"github.com/uptrace/bun"

	"ms-events/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateUser(ctx context.Context, user *models.User) error {
	_, err := d.Bun.NewInsert().
		Model(user).
		Exec(ctx)
	return err
}

func (d *DB) GetUsers(ctx context.Context, ids []int64, from, size int) ([]models.User, error) {
	var list []models.User
	q := d.Bun.NewSelect().
		Model(&list)
	if len(ids) > 0 {
		q = q.Where("id IN (?)", bun.In(ids))
	}
	err := q.Order("id ASC").
		Offset(from).
		Limit(size).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) DeleteUser(ctx context.Context, id int64) (bool, error) {
	res, err := d.Bun.NewDelete().
		Model((*models.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (d *DB) EmailExists(ctx context.Context, email string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.User)(nil)).
		Where("email = ?", email).
		Exists(ctx)
}
