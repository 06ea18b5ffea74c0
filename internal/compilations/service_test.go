package compilations

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
	compilations map[int64]*models.Compilation
	eventSets    map[int64][]int64
	knownEvents  map[int64]*models.Event
	nextID       int64
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		compilations: make(map[int64]*models.Compilation),
		eventSets:    make(map[int64][]int64),
		knownEvents:  make(map[int64]*models.Event),
	}
}

func (f *fakeDB) CreateCompilation(ctx context.Context, compilation *models.Compilation, eventIDs []int64) error {
	f.nextID++
	compilation.ID = f.nextID
	copied := *compilation
	f.compilations[compilation.ID] = &copied
	f.eventSets[compilation.ID] = append([]int64(nil), eventIDs...)
	return nil
}

func (f *fakeDB) GetCompilationByID(ctx context.Context, id int64) (*models.Compilation, error) {
	compilation, ok := f.compilations[id]
	if !ok {
		return nil, apperror.Newf(apperror.NotFound, "compilation %d not found", id)
	}
	copied := *compilation
	copied.Events = nil
	for _, eventID := range f.eventSets[id] {
		copied.Events = append(copied.Events, f.knownEvents[eventID])
	}
	return &copied, nil
}

func (f *fakeDB) UpdateCompilation(ctx context.Context, compilation *models.Compilation, eventIDs *[]int64) error {
	copied := *compilation
	copied.Events = nil
	f.compilations[compilation.ID] = &copied
	if eventIDs != nil {
		f.eventSets[compilation.ID] = append([]int64(nil), (*eventIDs)...)
	}
	return nil
}

func (f *fakeDB) DeleteCompilation(ctx context.Context, id int64) error {
	delete(f.compilations, id)
	delete(f.eventSets, id)
	return nil
}

func (f *fakeDB) ListCompilations(ctx context.Context, pinned *bool, from, size int) ([]models.Compilation, error) {
	var list []models.Compilation
	for id := range f.compilations {
		c, _ := f.GetCompilationByID(ctx, id)
		if pinned != nil && c.Pinned != *pinned {
			continue
		}
		list = append(list, *c)
	}
	return list, nil
}

func (f *fakeDB) TitleExists(ctx context.Context, title string, excludeID int64) (bool, error) {
	for _, c := range f.compilations {
		if c.Title == title && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDB) CountEvents(ctx context.Context, ids []int64) (int, error) {
	found := 0
	for _, id := range ids {
		if _, ok := f.knownEvents[id]; ok {
			found++
		}
	}
	return found, nil
}

type fakeStats struct {
	views map[string]int64
}

func (f *fakeStats) Views(ctx context.Context, start, end time.Time, uris []string, unique bool) (map[string]int64, error) {
	if f.views == nil {
		return map[string]int64{}, nil
	}
	return f.views, nil
}

func newTestService(db *fakeDB) *CompilationService {
	return NewCompilationService(db, &fakeStats{}, logger.NewLogger("compilations-test"))
}

func seedKnownEvent(db *fakeDB, id int64) {
	db.knownEvents[id] = &models.Event{
		ID:        id,
		CreatedOn: time.Now().Add(-time.Hour),
		EventDate: time.Now().Add(48 * time.Hour),
		State:     models.EventStatePublished,
		Category:  &models.Category{ID: 1, Name: "concerts"},
		Initiator: &models.User{ID: 1, Name: "initiator"},
	}
}

func TestCreateCompilationRejectsUnknownEvents(t *testing.T) {
	db := newFakeDB()
	service := newTestService(db)

	_, err := service.Create(context.Background(), models.NewCompilationRequest{
		Title:  "festivals",
		Events: []int64{99},
	})

	assert.True(t, apperror.IsKind(err, apperror.NotFound))
}

func TestCreateCompilationRejectsDuplicateTitle(t *testing.T) {
	db := newFakeDB()
	service := newTestService(db)

	_, err := service.Create(context.Background(), models.NewCompilationRequest{Title: "festivals"})
	assert.NoError(t, err)

	_, err = service.Create(context.Background(), models.NewCompilationRequest{Title: "festivals"})
	assert.True(t, apperror.IsKind(err, apperror.ConflictData))
}

func TestUpdateReplacesEventSet(t *testing.T) {
	db := newFakeDB()
	service := newTestService(db)
	seedKnownEvent(db, 1)
	seedKnownEvent(db, 2)

	created, err := service.Create(context.Background(), models.NewCompilationRequest{
		Title:  "festivals",
		Events: []int64{1},
	})
	assert.NoError(t, err)

	newSet := []int64{2}
	updated, err := service.Update(context.Background(), created.ID, models.UpdateCompilationRequest{Events: &newSet})
	assert.NoError(t, err)
	assert.Len(t, updated.Events, 1)
	assert.Equal(t, int64(2), updated.Events[0].ID)

	// A nil Events field leaves the set alone.
	pinned := true
	updated, err = service.Update(context.Background(), created.ID, models.UpdateCompilationRequest{Pinned: &pinned})
	assert.NoError(t, err)
	assert.True(t, updated.Pinned)
	assert.Len(t, updated.Events, 1)
}

func TestDeleteMissingCompilationIsNotFound(t *testing.T) {
	service := newTestService(newFakeDB())

	err := service.Delete(context.Background(), 42)

	assert.True(t, apperror.IsKind(err, apperror.NotFound))
}
