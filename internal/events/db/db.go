package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"ms-events/internal/apperror"
	"ms-events/internal/events"
	"ms-events/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewInsert().
		Model(event).
		Exec(ctx)
	return err
}

func (d *DB) GetEventByID(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Relation("Category").
		Relation("Initiator").
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Newf(apperror.NotFound, "event %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) GetEventsByInitiator(ctx context.Context, initiatorID int64, from, size int) ([]models.Event, error) {
	var list []models.Event
	err := d.Bun.NewSelect().
		Model(&list).
		Relation("Category").
		Relation("Initiator").
		Where("?TableAlias.initiator_id = ?", initiatorID).
		Order("created_on ASC").
		Offset(from).
		Limit(size).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) UpdateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewUpdate().
		Model(event).
		Column("annotation", "category_id", "description", "event_date",
			"lat", "lon", "paid", "participant_limit", "request_moderation",
			"state", "published_on", "title").
		Where("id = ?", event.ID).
		Exec(ctx)
	return err
}

func (d *DB) AdminSearch(ctx context.Context, filter events.AdminFilter) ([]models.Event, error) {
	var list []models.Event
	q := d.Bun.NewSelect().
		Model(&list).
		Relation("Category").
		Relation("Initiator")
	if len(filter.Users) > 0 {
		q = q.Where("?TableAlias.initiator_id IN (?)", bun.In(filter.Users))
	}
	if len(filter.States) > 0 {
		q = q.Where("?TableAlias.state IN (?)", bun.In(filter.States))
	}
	if len(filter.Categories) > 0 {
		q = q.Where("?TableAlias.category_id IN (?)", bun.In(filter.Categories))
	}
	if filter.RangeStart != nil {
		q = q.Where("?TableAlias.event_date >= ?", *filter.RangeStart)
	}
	if filter.RangeEnd != nil {
		q = q.Where("?TableAlias.event_date <= ?", *filter.RangeEnd)
	}
	err := q.Order("created_on ASC").
		Offset(filter.From).
		Limit(filter.Size).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) PublicSearch(ctx context.Context, filter events.PublicFilter) ([]models.Event, error) {
	var list []models.Event
	q := d.Bun.NewSelect().
		Model(&list).
		Relation("Category").
		Relation("Initiator").
		Where("?TableAlias.state = ?", models.EventStatePublished)
	if filter.Text != "" {
		pattern := "%" + strings.ToLower(filter.Text) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("LOWER(?TableAlias.annotation) LIKE ?", pattern).
				WhereOr("LOWER(?TableAlias.description) LIKE ?", pattern)
		})
	}
	if len(filter.Categories) > 0 {
		q = q.Where("?TableAlias.category_id IN (?)", bun.In(filter.Categories))
	}
	if filter.Paid != nil {
		q = q.Where("?TableAlias.paid = ?", *filter.Paid)
	}
	if filter.RangeStart != nil {
		q = q.Where("?TableAlias.event_date >= ?", *filter.RangeStart)
	}
	if filter.RangeEnd != nil {
		q = q.Where("?TableAlias.event_date <= ?", *filter.RangeEnd)
	}
	if filter.OnlyAvailable {
		q = q.Where("(?TableAlias.participant_limit = 0 OR ?TableAlias.confirmed_requests < ?TableAlias.participant_limit)")
	}
	err := q.Order("event_date ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) GetRequestsByEvent(ctx context.Context, eventID int64) ([]models.ParticipationRequest, error) {
	var list []models.ParticipationRequest
	err := d.Bun.NewSelect().
		Model(&list).
		Where("event_id = ?", eventID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) UserExists(ctx context.Context, id int64) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.User)(nil)).
		Where("id = ?", id).
		Exists(ctx)
}

func (d *DB) CategoryExists(ctx context.Context, id int64) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Category)(nil)).
		Where("id = ?", id).
		Exists(ctx)
}

// InTx runs fn inside one transaction. The Tx view it hands out locks the
// event row on read so the confirmed counter cannot be raced.
func (d *DB) InTx(ctx context.Context, fn func(tx events.Tx) error) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(&txLayer{tx: tx, pg: d.Bun.Dialect().Name() == dialect.PG})
	})
}

type txLayer struct {
	tx bun.Tx
	pg bool
}

func (t *txLayer) GetEventForUpdate(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	q := t.tx.NewSelect().
		Model(&event).
		Where("id = ?", id)
	// sqlite, used by the tests, has no row locks.
	if t.pg {
		q = q.For("UPDATE")
	}
	err := q.Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Newf(apperror.NotFound, "event %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (t *txLayer) GetRequestsByIDs(ctx context.Context, eventID int64, ids []int64) ([]models.ParticipationRequest, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []models.ParticipationRequest
	err := t.tx.NewSelect().
		Model(&list).
		Where("event_id = ?", eventID).
		Where("id IN (?)", bun.In(ids)).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (t *txLayer) UpdateRequestStatus(ctx context.Context, ids []int64, status string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := t.tx.NewUpdate().
		Model((*models.ParticipationRequest)(nil)).
		Set("status = ?", status).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	return err
}

func (t *txLayer) UpdateEventConfirmed(ctx context.Context, eventID int64, confirmed int) error {
	_, err := t.tx.NewUpdate().
		Model((*models.Event)(nil)).
		Set("confirmed_requests = ?", confirmed).
		Where("id = ?", eventID).
		Exec(ctx)
	return err
}
