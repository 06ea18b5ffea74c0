package compilations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ms-events/internal/apperror"
	"ms-events/internal/logger"
	"ms-events/internal/models"
	"ms-events/internal/stats/client"
)

type DBLayer interface {
	CreateCompilation(ctx context.Context, compilation *models.Compilation, eventIDs []int64) error
	GetCompilationByID(ctx context.Context, id int64) (*models.Compilation, error)
	UpdateCompilation(ctx context.Context, compilation *models.Compilation, eventIDs *[]int64) error
	DeleteCompilation(ctx context.Context, id int64) error
	ListCompilations(ctx context.Context, pinned *bool, from, size int) ([]models.Compilation, error)
	TitleExists(ctx context.Context, title string, excludeID int64) (bool, error)
	CountEvents(ctx context.Context, ids []int64) (int, error)
}

// StatsClient provides view counts for the short event DTOs inside a
// compilation.
type StatsClient interface {
	Views(ctx context.Context, start, end time.Time, uris []string, unique bool) (map[string]int64, error)
}

type CompilationService struct {
	DB     DBLayer
	Stats  StatsClient
	Logger *logger.Logger
}

func NewCompilationService(db DBLayer, stats StatsClient, log *logger.Logger) *CompilationService {
	return &CompilationService{DB: db, Stats: stats, Logger: log}
}

func (s *CompilationService) Create(ctx context.Context, req models.NewCompilationRequest) (models.CompilationDto, error) {
	if strings.TrimSpace(req.Title) == "" {
		return models.CompilationDto{}, apperror.New(apperror.Validation, "compilation title must not be blank")
	}
	taken, err := s.DB.TitleExists(ctx, req.Title, 0)
	if err != nil {
		return models.CompilationDto{}, fmt.Errorf("failed to check title: %w", err)
	}
	if taken {
		return models.CompilationDto{}, apperror.Newf(apperror.ConflictData, "compilation title %q is already used", req.Title)
	}
	if err := s.checkEventIDs(ctx, req.Events); err != nil {
		return models.CompilationDto{}, err
	}

	compilation := &models.Compilation{Title: req.Title, Pinned: req.Pinned}
	if err := s.DB.CreateCompilation(ctx, compilation, req.Events); err != nil {
		return models.CompilationDto{}, fmt.Errorf("failed to create compilation: %w", err)
	}
	return s.GetByID(ctx, compilation.ID)
}

func (s *CompilationService) Update(ctx context.Context, id int64, req models.UpdateCompilationRequest) (models.CompilationDto, error) {
	compilation, err := s.DB.GetCompilationByID(ctx, id)
	if err != nil {
		return models.CompilationDto{}, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return models.CompilationDto{}, apperror.New(apperror.Validation, "compilation title must not be blank")
		}
		taken, err := s.DB.TitleExists(ctx, *req.Title, id)
		if err != nil {
			return models.CompilationDto{}, fmt.Errorf("failed to check title: %w", err)
		}
		if taken {
			return models.CompilationDto{}, apperror.Newf(apperror.ConflictData, "compilation title %q is already used", *req.Title)
		}
		compilation.Title = *req.Title
	}
	if req.Pinned != nil {
		compilation.Pinned = *req.Pinned
	}
	if req.Events != nil {
		if err := s.checkEventIDs(ctx, *req.Events); err != nil {
			return models.CompilationDto{}, err
		}
	}

	if err := s.DB.UpdateCompilation(ctx, compilation, req.Events); err != nil {
		return models.CompilationDto{}, fmt.Errorf("failed to update compilation %d: %w", id, err)
	}
	return s.GetByID(ctx, id)
}

func (s *CompilationService) Delete(ctx context.Context, id int64) error {
	if _, err := s.DB.GetCompilationByID(ctx, id); err != nil {
		return err
	}
	if err := s.DB.DeleteCompilation(ctx, id); err != nil {
		return fmt.Errorf("failed to delete compilation %d: %w", id, err)
	}
	return nil
}

func (s *CompilationService) GetByID(ctx context.Context, id int64) (models.CompilationDto, error) {
	compilation, err := s.DB.GetCompilationByID(ctx, id)
	if err != nil {
		return models.CompilationDto{}, err
	}
	return s.toDto(ctx, compilation), nil
}

func (s *CompilationService) List(ctx context.Context, pinned *bool, from, size int) ([]models.CompilationDto, error) {
	compilations, err := s.DB.ListCompilations(ctx, pinned, from, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list compilations: %w", err)
	}

	dtos := make([]models.CompilationDto, 0, len(compilations))
	for i := range compilations {
		dtos = append(dtos, s.toDto(ctx, &compilations[i]))
	}
	return dtos, nil
}

func (s *CompilationService) checkEventIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.DB.CountEvents(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to check events: %w", err)
	}
	if found != len(ids) {
		return apperror.New(apperror.NotFound, "some compilation events do not exist")
	}
	return nil
}

func (s *CompilationService) toDto(ctx context.Context, c *models.Compilation) models.CompilationDto {
	dto := models.CompilationDto{
		ID:     c.ID,
		Title:  c.Title,
		Pinned: c.Pinned,
		Events: []models.EventShortDto{},
	}
	if len(c.Events) == 0 {
		return dto
	}

	start := time.Now()
	uris := make([]string, 0, len(c.Events))
	for _, e := range c.Events {
		uris = append(uris, client.EventURI(e.ID))
		if e.PublishedOn != nil && e.PublishedOn.Before(start) {
			start = *e.PublishedOn
		} else if e.CreatedOn.Before(start) {
			start = e.CreatedOn
		}
	}
	views, err := s.Stats.Views(ctx, start, time.Now(), uris, true)
	if err != nil {
		s.Logger.Warn("STATS", fmt.Sprintf("view count fetch failed: %v", err))
		views = map[string]int64{}
	}

	for _, e := range c.Events {
		dto.Events = append(dto.Events, models.ToEventShortDto(e, views[client.EventURI(e.ID)]))
	}
	return dto
}
