package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-events/internal/apperror"
	"ms-events/internal/events"
	"ms-events/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	err = bunDB.ResetModel(context.Background(),
		(*models.User)(nil),
		(*models.Category)(nil),
		(*models.Event)(nil),
		(*models.ParticipationRequest)(nil),
	)
	require.NoError(t, err)

	t.Cleanup(func() { bunDB.Close() })
	return &DB{Bun: bunDB}
}

func seedUserAndCategory(t *testing.T, d *DB) (int64, int64) {
	t.Helper()
	ctx := context.Background()

	user := &models.User{Name: "initiator", Email: "initiator@example.com"}
	_, err := d.Bun.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)

	category := &models.Category{Name: "concerts"}
	_, err = d.Bun.NewInsert().Model(category).Exec(ctx)
	require.NoError(t, err)

	return user.ID, category.ID
}

func seedEvent(t *testing.T, d *DB, userID, categoryID int64, state, annotation string) *models.Event {
	t.Helper()

	event := &models.Event{
		Annotation:        annotation,
		CategoryID:        categoryID,
		CreatedOn:         time.Now(),
		Description:       "description",
		EventDate:         time.Now().Add(48 * time.Hour),
		InitiatorID:       userID,
		RequestModeration: true,
		State:             state,
		Title:             "title",
	}
	require.NoError(t, d.CreateEvent(context.Background(), event))
	return event
}

func TestGetEventByIDNotFound(t *testing.T) {
	d := setupTestDB(t)

	_, err := d.GetEventByID(context.Background(), 42)

	assert.True(t, apperror.IsKind(err, apperror.NotFound))
}

func TestGetEventByIDLoadsRelations(t *testing.T) {
	d := setupTestDB(t)
	userID, categoryID := seedUserAndCategory(t, d)
	seeded := seedEvent(t, d, userID, categoryID, models.EventStatePending, "annotation")

	event, err := d.GetEventByID(context.Background(), seeded.ID)

	assert.NoError(t, err)
	assert.Equal(t, "initiator", event.Initiator.Name)
	assert.Equal(t, "concerts", event.Category.Name)
}

func TestPublicSearchFiltersByStateAndText(t *testing.T) {
	d := setupTestDB(t)
	userID, categoryID := seedUserAndCategory(t, d)
	published := seedEvent(t, d, userID, categoryID, models.EventStatePublished, "Jazz night downtown")
	seedEvent(t, d, userID, categoryID, models.EventStatePending, "Jazz workshop")
	seedEvent(t, d, userID, categoryID, models.EventStatePublished, "Rock festival")

	list, err := d.PublicSearch(context.Background(), events.PublicFilter{Text: "jazz"})

	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, published.ID, list[0].ID)
}

func TestPublicSearchOnlyAvailable(t *testing.T) {
	d := setupTestDB(t)
	userID, categoryID := seedUserAndCategory(t, d)

	full := seedEvent(t, d, userID, categoryID, models.EventStatePublished, "full event")
	full.ParticipantLimit = 1
	full.ConfirmedRequests = 1
	require.NoError(t, d.UpdateEvent(context.Background(), full))

	open := seedEvent(t, d, userID, categoryID, models.EventStatePublished, "open event")

	list, err := d.PublicSearch(context.Background(), events.PublicFilter{OnlyAvailable: true})

	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, open.ID, list[0].ID)
}

func TestAdminSearchFilters(t *testing.T) {
	d := setupTestDB(t)
	userID, categoryID := seedUserAndCategory(t, d)
	pending := seedEvent(t, d, userID, categoryID, models.EventStatePending, "pending event")
	seedEvent(t, d, userID, categoryID, models.EventStateCanceled, "canceled event")

	list, err := d.AdminSearch(context.Background(), events.AdminFilter{
		Users:  []int64{userID},
		States: []string{models.EventStatePending},
		Size:   10,
	})

	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, pending.ID, list[0].ID)
}

func TestInTxRequestStatusUpdate(t *testing.T) {
	d := setupTestDB(t)
	userID, categoryID := seedUserAndCategory(t, d)
	event := seedEvent(t, d, userID, categoryID, models.EventStatePublished, "limited event")

	ctx := context.Background()
	request := &models.ParticipationRequest{
		Created:     time.Now(),
		EventID:     event.ID,
		RequesterID: userID,
		Status:      models.RequestStatusPending,
	}
	_, err := d.Bun.NewInsert().Model(request).Exec(ctx)
	require.NoError(t, err)

	err = d.InTx(ctx, func(tx events.Tx) error {
		locked, err := tx.GetEventForUpdate(ctx, event.ID)
		if err != nil {
			return err
		}
		requests, err := tx.GetRequestsByIDs(ctx, event.ID, []int64{request.ID})
		if err != nil {
			return err
		}
		assert.Len(t, requests, 1)

		if err := tx.UpdateRequestStatus(ctx, []int64{request.ID}, models.RequestStatusConfirmed); err != nil {
			return err
		}
		return tx.UpdateEventConfirmed(ctx, event.ID, locked.ConfirmedRequests+1)
	})
	assert.NoError(t, err)

	reloaded, err := d.GetEventByID(ctx, event.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, reloaded.ConfirmedRequests)

	requests, err := d.GetRequestsByEvent(ctx, event.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusConfirmed, requests[0].Status)
}
