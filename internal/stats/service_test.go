package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ms-events/internal/apperror"
	"ms-events/internal/models"
)

type fakeDB struct {
	hits  []models.EndpointHit
	stats []models.ViewStats
}

func (f *fakeDB) SaveHit(ctx context.Context, hit *models.EndpointHit) error {
	f.hits = append(f.hits, *hit)
	return nil
}

func (f *fakeDB) GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]models.ViewStats, error) {
	return f.stats, nil
}

func TestRecordHitValidatesFields(t *testing.T) {
	service := NewStatsService(&fakeDB{})

	err := service.RecordHit(context.Background(), models.EndpointHitDto{
		App: "main-service",
		URI: "/events/1",
	})

	assert.True(t, apperror.IsKind(err, apperror.Validation))
}

func TestRecordHitDefaultsTimestamp(t *testing.T) {
	db := &fakeDB{}
	service := NewStatsService(db)

	err := service.RecordHit(context.Background(), models.EndpointHitDto{
		App: "main-service",
		URI: "/events/1",
		IP:  "10.0.0.1",
	})

	assert.NoError(t, err)
	assert.Len(t, db.hits, 1)
	assert.WithinDuration(t, time.Now(), db.hits[0].Created, time.Minute)
}

func TestGetStatsRejectsInvertedWindow(t *testing.T) {
	service := NewStatsService(&fakeDB{})
	now := time.Now()

	_, err := service.GetStats(context.Background(), now, now.Add(-time.Hour), nil, false)

	assert.True(t, apperror.IsKind(err, apperror.Validation))
}

func TestGetStatsNeverReturnsNil(t *testing.T) {
	service := NewStatsService(&fakeDB{})
	now := time.Now()

	stats, err := service.GetStats(context.Background(), now.Add(-time.Hour), now, nil, false)

	assert.NoError(t, err)
	assert.NotNil(t, stats)
	assert.Empty(t, stats)
}
