package stats

import (
	"context"
	"strings"
	"time"

	"ms-events/internal/apperror"
	"ms-events/internal/models"
)

type DBLayer interface {
	SaveHit(ctx context.Context, hit *models.EndpointHit) error
	GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]models.ViewStats, error)
}

// StatsService records endpoint hits and serves aggregated view counts.
type StatsService struct {
	DB DBLayer
}

func NewStatsService(db DBLayer) *StatsService {
	return &StatsService{DB: db}
}

func (s *StatsService) RecordHit(ctx context.Context, dto models.EndpointHitDto) error {
	if strings.TrimSpace(dto.App) == "" {
		return apperror.New(apperror.Validation, "app must not be blank")
	}
	if strings.TrimSpace(dto.URI) == "" {
		return apperror.New(apperror.Validation, "uri must not be blank")
	}
	if strings.TrimSpace(dto.IP) == "" {
		return apperror.New(apperror.Validation, "ip must not be blank")
	}

	created := dto.Timestamp.Time
	if created.IsZero() {
		created = time.Now()
	}

	hit := &models.EndpointHit{
		App:     dto.App,
		URI:     dto.URI,
		IP:      dto.IP,
		Created: created,
	}
	return s.DB.SaveHit(ctx, hit)
}

func (s *StatsService) GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]models.ViewStats, error) {
	if end.Before(start) {
		return nil, apperror.New(apperror.Validation, "end must not be before start")
	}
	stats, err := s.DB.GetStats(ctx, start, end, uris, unique)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []models.ViewStats{}
	}
	return stats, nil
}
