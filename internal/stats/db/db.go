package db

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"ms-events/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// SaveHit inserts one recorded endpoint hit.
func (d *DB) SaveHit(ctx context.Context, hit *models.EndpointHit) error {
	_, err := d.Bun.NewInsert().Model(hit).Exec(ctx)
	return err
}

// GetStats aggregates hit counts per (app, uri) over [start, end], most viewed
// first. With unique set, each ip counts once per uri.
func (d *DB) GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]models.ViewStats, error) {
	var stats []models.ViewStats

	q := d.Bun.NewSelect().
		Model((*models.EndpointHit)(nil)).
		Column("app", "uri").
		Where("created >= ?", start).
		Where("created <= ?", end).
		Group("app", "uri").
		OrderExpr("hits DESC")

	if unique {
		q = q.ColumnExpr("count(DISTINCT ip) AS hits")
	} else {
		q = q.ColumnExpr("count(*) AS hits")
	}

	if len(uris) > 0 {
		q = q.Where("uri IN (?)", bun.In(uris))
	}

	if err := q.Scan(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}
