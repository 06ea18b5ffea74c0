package stats_api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"ms-events/internal/logger"
	"ms-events/internal/models"
	"ms-events/internal/stats"
)

type fakeDB struct {
	hits []models.EndpointHit
}

func (f *fakeDB) SaveHit(ctx context.Context, hit *models.EndpointHit) error {
	f.hits = append(f.hits, *hit)
	return nil
}

func (f *fakeDB) GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]models.ViewStats, error) {
	return []models.ViewStats{{App: "main-service", URI: "/events/1", Hits: 3}}, nil
}

func setupRouter() (*chi.Mux, *fakeDB) {
	db := &fakeDB{}
	handler := &Handler{
		StatsService: stats.NewStatsService(db),
		Logger:       logger.NewLogger("stats-api-test"),
	}
	r := chi.NewRouter()
	r.Post("/hit", handler.RecordHit)
	r.Get("/stats", handler.GetStats)
	return r, db
}

func TestRecordHitReturnsCreated(t *testing.T) {
	r, db := setupRouter()

	body := `{"app":"main-service","uri":"/events/1","ip":"10.0.0.1","timestamp":"2026-01-01 12:00:00"}`
	req := httptest.NewRequest(http.MethodPost, "/hit", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, db.hits, 1)
	assert.Equal(t, "/events/1", db.hits[0].URI)
}

func TestGetStatsRequiresWindow(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStatsRejectsMalformedDates(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/stats?start=2026-01-01T00:00:00&end=2026-01-02+00:00:00", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStatsReturnsAggregates(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet,
		"/stats?start=2026-01-01+00:00:00&end=2026-01-02+00:00:00&uris=/events/1&unique=true", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hits":3`)
}
