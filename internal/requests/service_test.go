package requests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ms-events/internal/apperror"
	"ms-events/internal/logger"
	"ms-events/internal/models"
)

type fakeDB struct {
	events   map[int64]*models.Event
	requests map[int64]*models.ParticipationRequest
	users    map[int64]bool
	nextID   int64
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		events:   make(map[int64]*models.Event),
		requests: make(map[int64]*models.ParticipationRequest),
		users:    map[int64]bool{1: true, 2: true, 3: true},
	}
}

func (f *fakeDB) GetRequestsByRequester(ctx context.Context, requesterID int64) ([]models.ParticipationRequest, error) {
	var list []models.ParticipationRequest
	for _, r := range f.requests {
		if r.RequesterID == requesterID {
			list = append(list, *r)
		}
	}
	return list, nil
}

func (f *fakeDB) UserExists(ctx context.Context, id int64) (bool, error) {
	return f.users[id], nil
}

func (f *fakeDB) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return fn(f)
}

func (f *fakeDB) GetEventForUpdate(ctx context.Context, id int64) (*models.Event, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, apperror.Newf(apperror.NotFound, "event %d not found", id)
	}
	copied := *event
	return &copied, nil
}

func (f *fakeDB) RequestExists(ctx context.Context, eventID, requesterID int64) (bool, error) {
	for _, r := range f.requests {
		if r.EventID == eventID && r.RequesterID == requesterID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDB) GetRequestOfUser(ctx context.Context, requestID, requesterID int64) (*models.ParticipationRequest, error) {
	r, ok := f.requests[requestID]
	if !ok || r.RequesterID != requesterID {
		return nil, apperror.Newf(apperror.NotFound, "request %d of user %d not found", requestID, requesterID)
	}
	copied := *r
	return &copied, nil
}

func (f *fakeDB) InsertRequest(ctx context.Context, request *models.ParticipationRequest) error {
	f.nextID++
	request.ID = f.nextID
	copied := *request
	f.requests[request.ID] = &copied
	return nil
}

func (f *fakeDB) UpdateRequestStatus(ctx context.Context, requestID int64, status string) error {
	f.requests[requestID].Status = status
	return nil
}

func (f *fakeDB) UpdateEventConfirmed(ctx context.Context, eventID int64, confirmed int) error {
	f.events[eventID].ConfirmedRequests = confirmed
	return nil
}

type fakePublisher struct {
	statuses []string
}

func (f *fakePublisher) PublishRequestStatus(request *models.ParticipationRequest) error {
	f.statuses = append(f.statuses, request.Status)
	return nil
}

func newTestService(db *fakeDB) (*RequestService, *fakePublisher) {
	publisher := &fakePublisher{}
	log := logger.NewLogger("requests-test")
	return NewRequestService(db, publisher, log), publisher
}

func seedEvent(db *fakeDB, state string, limit, confirmed int, moderation bool) *models.Event {
	db.nextID++
	event := &models.Event{
		ID:                db.nextID,
		CategoryID:        1,
		ConfirmedRequests: confirmed,
		CreatedOn:         time.Now().Add(-time.Hour),
		EventDate:         time.Now().Add(48 * time.Hour),
		InitiatorID:       1,
		ParticipantLimit:  limit,
		RequestModeration: moderation,
		State:             state,
	}
	db.events[event.ID] = event
	return event
}

func TestCreateRequestPendingWithModeration(t *testing.T) {
	db := newFakeDB()
	service, publisher := newTestService(db)
	event := seedEvent(db, models.EventStatePublished, 10, 0, true)

	dto, err := service.Create(context.Background(), 2, event.ID)

	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, dto.Status)
	assert.Equal(t, 0, db.events[event.ID].ConfirmedRequests)
	assert.Equal(t, []string{models.RequestStatusPending}, publisher.statuses)
}

func TestCreateRequestAutoConfirmedWithoutModeration(t *testing.T) {
	db := newFakeDB()
	service, _ := newTestService(db)
	event := seedEvent(db, models.EventStatePublished, 10, 0, false)

	dto, err := service.Create(context.Background(), 2, event.ID)

	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusConfirmed, dto.Status)
	assert.Equal(t, 1, db.events[event.ID].ConfirmedRequests)
}

func TestCreateRequestRejectsDuplicate(t *testing.T) {
	db := newFakeDB()
	service, _ := newTestService(db)
	event := seedEvent(db, models.EventStatePublished, 10, 0, true)

	_, err := service.Create(context.Background(), 2, event.ID)
	assert.NoError(t, err)

	_, err = service.Create(context.Background(), 2, event.ID)
	assert.True(t, apperror.IsKind(err, apperror.Duplicate))
}

func TestCreateRequestRejectsInitiator(t *testing.T) {
	db := newFakeDB()
	service, _ := newTestService(db)
	event := seedEvent(db, models.EventStatePublished, 10, 0, true)

	_, err := service.Create(context.Background(), 1, event.ID)

	assert.True(t, apperror.IsKind(err, apperror.ConflictData))
}

func TestCreateRequestRejectsUnpublishedEvent(t *testing.T) {
	db := newFakeDB()
	service, _ := newTestService(db)
	event := seedEvent(db, models.EventStatePending, 10, 0, true)

	_, err := service.Create(context.Background(), 2, event.ID)

	assert.True(t, apperror.IsKind(err, apperror.ConflictData))
}

func TestCreateRequestRejectsFullEvent(t *testing.T) {
	db := newFakeDB()
	service, _ := newTestService(db)
	event := seedEvent(db, models.EventStatePublished, 1, 1, true)

	_, err := service.Create(context.Background(), 2, event.ID)

	assert.True(t, apperror.IsKind(err, apperror.ConflictData))
}

func TestCancelConfirmedRequestFreesSlotOnce(t *testing.T) {
	db := newFakeDB()
	service, _ := newTestService(db)
	event := seedEvent(db, models.EventStatePublished, 10, 0, false)

	dto, err := service.Create(context.Background(), 2, event.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, db.events[event.ID].ConfirmedRequests)

	canceled, err := service.Cancel(context.Background(), 2, dto.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusCanceled, canceled.Status)
	assert.Equal(t, 0, db.events[event.ID].ConfirmedRequests)

	// A second cancel must not decrement again.
	canceled, err = service.Cancel(context.Background(), 2, dto.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusCanceled, canceled.Status)
	assert.Equal(t, 0, db.events[event.ID].ConfirmedRequests)
}

func TestCancelForeignRequestFails(t *testing.T) {
	db := newFakeDB()
	service, _ := newTestService(db)
	event := seedEvent(db, models.EventStatePublished, 10, 0, true)

	dto, err := service.Create(context.Background(), 2, event.ID)
	assert.NoError(t, err)

	_, err = service.Cancel(context.Background(), 3, dto.ID)
	assert.True(t, apperror.IsKind(err, apperror.NotFound))
}
