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

func (d *DB) CreateCompilation(ctx context.Context, compilation *models.Compilation, eventIDs []int64) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().
			Model(compilation).
			Exec(ctx); err != nil {
			return err
		}
		return insertJoinRows(ctx, tx, compilation.ID, eventIDs)
	})
}

func (d *DB) GetCompilationByID(ctx context.Context, id int64) (*models.Compilation, error) {
	var compilation models.Compilation
	err := d.Bun.NewSelect().
		Model(&compilation).
		Relation("Events").
		Relation("Events.Category").
		Relation("Events.Initiator").
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Newf(apperror.NotFound, "compilation %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &compilation, nil
}

// UpdateCompilation saves title and pinned and, when eventIDs is non-nil,
// replaces the whole event set.
func (d *DB) UpdateCompilation(ctx context.Context, compilation *models.Compilation, eventIDs *[]int64) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model(compilation).
			Column("title", "pinned").
			Where("id = ?", compilation.ID).
			Exec(ctx); err != nil {
			return err
		}
		if eventIDs == nil {
			return nil
		}
		if _, err := tx.NewDelete().
			Model((*models.CompilationEvent)(nil)).
			Where("compilation_id = ?", compilation.ID).
			Exec(ctx); err != nil {
			return err
		}
		return insertJoinRows(ctx, tx, compilation.ID, *eventIDs)
	})
}

func (d *DB) DeleteCompilation(ctx context.Context, id int64) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.CompilationEvent)(nil)).
			Where("compilation_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model((*models.Compilation)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
}

func (d *DB) ListCompilations(ctx context.Context, pinned *bool, from, size int) ([]models.Compilation, error) {
	var list []models.Compilation
	q := d.Bun.NewSelect().
		Model(&list).
		Relation("Events").
		Relation("Events.Category").
		Relation("Events.Initiator")
	if pinned != nil {
		q = q.Where("?TableAlias.pinned = ?", *pinned)
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

func (d *DB) TitleExists(ctx context.Context, title string, excludeID int64) (bool, error) {
	q := d.Bun.NewSelect().
		Model((*models.Compilation)(nil)).
		Where("title = ?", title)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}
	return q.Exists(ctx)
}

func (d *DB) CountEvents(ctx context.Context, ids []int64) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Event)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Count(ctx)
}

func insertJoinRows(ctx context.Context, tx bun.Tx, compilationID int64, eventIDs []int64) error {
	if len(eventIDs) == 0 {
		return nil
	}
	rows := make([]models.CompilationEvent, 0, len(eventIDs))
	for _, eventID := range eventIDs {
		rows = append(rows, models.CompilationEvent{CompilationID: compilationID, EventID: eventID})
	}
	_, err := tx.NewInsert().
		Model(&rows).
		Exec(ctx)
	return err
}
