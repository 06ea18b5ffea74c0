package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"ms-events/internal/apperror"
	"ms-events/internal/models"
	"ms-events/internal/requests"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetRequestsByRequester(ctx context.Context, requesterID int64) ([]models.ParticipationRequest, error) {
	var list []models.ParticipationRequest
	err := d.Bun.NewSelect().
		Model(&list).
		Where("requester_id = ?", requesterID).
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

func (d *DB) InTx(ctx context.Context, fn func(tx requests.Tx) error) error {
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

func (t *txLayer) RequestExists(ctx context.Context, eventID, requesterID int64) (bool, error) {
	return t.tx.NewSelect().
		Model((*models.ParticipationRequest)(nil)).
		Where("event_id = ?", eventID).
		Where("requester_id = ?", requesterID).
		Exists(ctx)
}

func (t *txLayer) GetRequestOfUser(ctx context.Context, requestID, requesterID int64) (*models.ParticipationRequest, error) {
	var request models.ParticipationRequest
	err := t.tx.NewSelect().
		Model(&request).
		Where("id = ?", requestID).
		Where("requester_id = ?", requesterID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Newf(apperror.NotFound, "request %d of user %d not found", requestID, requesterID)
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (t *txLayer) InsertRequest(ctx context.Context, request *models.ParticipationRequest) error {
	_, err := t.tx.NewInsert().
		Model(request).
		Exec(ctx)
	return err
}

func (t *txLayer) UpdateRequestStatus(ctx context.Context, requestID int64, status string) error {
	_, err := t.tx.NewUpdate().
		Model((*models.ParticipationRequest)(nil)).
		Set("status = ?", status).
		Where("id = ?", requestID).
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
