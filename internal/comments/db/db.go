package db

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/uptrace/bun"

	"ms-events/internal/apperror"
	"ms-events/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	_, err := d.Bun.NewInsert().
		Model(comment).
		Exec(ctx)
	return err
}

func (d *DB) GetCommentByID(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	err := d.Bun.NewSelect().
		Model(&comment).
		Relation("Author").
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Newf(apperror.NotFound, "comment %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (d *DB) UpdateComment(ctx context.Context, comment *models.Comment) error {
	_, err := d.Bun.NewUpdate().
		Model(comment).
		Column("text", "edited").
		Where("id = ?", comment.ID).
		Exec(ctx)
	return err
}

func (d *DB) DeleteComment(ctx context.Context, id int64) error {
	if _, err := d.Bun.NewDelete().
		Model((*models.CommentLike)(nil)).
		Where("comment_id = ?", id).
		Exec(ctx); err != nil {
		return err
	}
	_, err := d.Bun.NewDelete().
		Model((*models.Comment)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// ListByEvent returns the event's comments sorted by the requested mode with
// their like counts. Pagination runs after sorting so the LIKES order is
// stable across pages.
func (d *DB) ListByEvent(ctx context.Context, eventID int64, sortMode string, from, size int) ([]models.Comment, map[int64]int64, error) {
	var comments []models.Comment
	err := d.Bun.NewSelect().
		Model(&comments).
		Relation("Author").
		Where("?TableAlias.event_id = ?", eventID).
		Order("created_on DESC").
		Scan(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(comments) == 0 {
		return []models.Comment{}, map[int64]int64{}, nil
	}

	ids := make([]int64, 0, len(comments))
	for i := range comments {
		ids = append(ids, comments[i].ID)
	}

	var counts []struct {
		CommentID int64 `bun:"comment_id"`
		Likes     int64 `bun:"likes"`
	}
	err = d.Bun.NewSelect().
		Model((*models.CommentLike)(nil)).
		Column("comment_id").
		ColumnExpr("count(*) AS likes").
		Where("comment_id IN (?)", bun.In(ids)).
		Group("comment_id").
		Scan(ctx, &counts)
	if err != nil {
		return nil, nil, err
	}

	likes := make(map[int64]int64, len(counts))
	for _, c := range counts {
		likes[c.CommentID] = c.Likes
	}

	if sortMode == models.CommentSortLikes {
		sort.SliceStable(comments, func(i, j int) bool {
			return likes[comments[i].ID] > likes[comments[j].ID]
		})
	}

	if from >= len(comments) {
		return []models.Comment{}, likes, nil
	}
	end := from + size
	if end > len(comments) {
		end = len(comments)
	}
	return comments[from:end], likes, nil
}

func (d *DB) CountLikes(ctx context.Context, commentID int64) (int64, error) {
	n, err := d.Bun.NewSelect().
		Model((*models.CommentLike)(nil)).
		Where("comment_id = ?", commentID).
		Count(ctx)
	return int64(n), err
}

func (d *DB) AddLike(ctx context.Context, commentID, userID int64) error {
	exists, err := d.Bun.NewSelect().
		Model((*models.CommentLike)(nil)).
		Where("comment_id = ?", commentID).
		Where("user_id = ?", userID).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return apperror.Newf(apperror.ConflictData, "user %d already liked comment %d", userID, commentID)
	}
	_, err = d.Bun.NewInsert().
		Model(&models.CommentLike{CommentID: commentID, UserID: userID}).
		Exec(ctx)
	return err
}

func (d *DB) RemoveLike(ctx context.Context, commentID, userID int64) (bool, error) {
	res, err := d.Bun.NewDelete().
		Model((*models.CommentLike)(nil)).
		Where("comment_id = ?", commentID).
		Where("user_id = ?", userID).
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

func (d *DB) UserExists(ctx context.Context, id int64) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.User)(nil)).
		Where("id = ?", id).
		Exists(ctx)
}

func (d *DB) EventExists(ctx context.Context, id int64) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exists(ctx)
}
