package events

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ms-events/internal/apperror"
	"ms-events/internal/logger"
	"ms-events/internal/models"
	"ms-events/internal/stats/client"
)

// DBLayer is the storage surface the event service depends on.
type DBLayer interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, id int64) (*models.Event, error)
	GetEventsByInitiator(ctx context.Context, initiatorID int64, from, size int) ([]models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	AdminSearch(ctx context.Context, filter AdminFilter) ([]models.Event, error)
	PublicSearch(ctx context.Context, filter PublicFilter) ([]models.Event, error)
	GetRequestsByEvent(ctx context.Context, eventID int64) ([]models.ParticipationRequest, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	CategoryExists(ctx context.Context, id int64) (bool, error)
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the transactional view used for counter read-modify-writes. The
// event row stays locked until the callback returns.
type Tx interface {
	GetEventForUpdate(ctx context.Context, id int64) (*models.Event, error)
	GetRequestsByIDs(ctx context.Context, eventID int64, ids []int64) ([]models.ParticipationRequest, error)
	UpdateRequestStatus(ctx context.Context, ids []int64, status string) error
	UpdateEventConfirmed(ctx context.Context, eventID int64, confirmed int) error
}

// StatsClient records hits and fetches view counts from the stats service.
type StatsClient interface {
	Hit(ctx context.Context, uri, ip string) error
	Views(ctx context.Context, start, end time.Time, uris []string, unique bool) (map[string]int64, error)
}

// Publisher announces event lifecycle transitions. Failures are logged and
// never surface to the API caller.
type Publisher interface {
	PublishEventPublished(event *models.Event) error
	PublishEventCanceled(event *models.Event) error
	PublishRequestStatus(request *models.ParticipationRequest) error
}

// AdminFilter holds the admin search parameters. Nil slices and nil range
// bounds mean "no filter". Pagination happens in SQL.
type AdminFilter struct {
	Users      []int64
	States     []string
	Categories []int64
	RangeStart *time.Time
	RangeEnd   *time.Time
	From       int
	Size       int
}

// Public search sort modes.
const (
	SortEventDate = "EVENT_DATE"
	SortViews     = "VIEWS"
)

// PublicFilter holds the public search parameters. Pagination and the VIEWS
// sort happen in the service after view counts are attached, so the db layer
// returns the full filtered set ordered by event date.
type PublicFilter struct {
	Text          string
	Categories    []int64
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
}

type EventService struct {
	DB     DBLayer
	Stats  StatsClient
	Kafka  Publisher
	Logger *logger.Logger
}

func NewEventService(db DBLayer, stats StatsClient, publisher Publisher, log *logger.Logger) *EventService {
	return &EventService{DB: db, Stats: stats, Kafka: publisher, Logger: log}
}

// RequestStatusResult is the response of the bulk participation-request
// status update.
type RequestStatusResult struct {
	ConfirmedRequests []models.ParticipationRequestDto `json:"confirmedRequests"`
	RejectedRequests  []models.ParticipationRequestDto `json:"rejectedRequests"`
}

const (
	ownerEventLead = 2 * time.Hour
	adminEventLead = time.Hour
)

func (s *EventService) Create(ctx context.Context, userID int64, req models.NewEventRequest) (models.EventFullDto, error) {
	if req.Annotation == "" || req.Title == "" || req.Description == "" {
		return models.EventFullDto{}, apperror.New(apperror.Validation, "annotation, title and description must not be blank")
	}
	if time.Until(req.EventDate.Time) < ownerEventLead {
		return models.EventFullDto{}, apperror.Newf(apperror.Validation,
			"event date must be at least 2 hours in the future: %s", req.EventDate.Format(models.DateTimeLayout))
	}

	exists, err := s.DB.UserExists(ctx, userID)
	if err != nil {
		return models.EventFullDto{}, fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return models.EventFullDto{}, apperror.Newf(apperror.NotFound, "user %d not found", userID)
	}
	exists, err = s.DB.CategoryExists(ctx, req.Category)
	if err != nil {
		return models.EventFullDto{}, fmt.Errorf("failed to check category: %w", err)
	}
	if !exists {
		return models.EventFullDto{}, apperror.Newf(apperror.NotFound, "category %d not found", req.Category)
	}

	event := &models.Event{
		Annotation:        req.Annotation,
		CategoryID:        req.Category,
		CreatedOn:         time.Now(),
		Description:       req.Description,
		EventDate:         req.EventDate.Time,
		InitiatorID:       userID,
		Paid:              false,
		ParticipantLimit:  0,
		RequestModeration: true,
		State:             models.EventStatePending,
		Title:             req.Title,
	}
	if req.Location != nil {
		event.Lat = req.Location.Lat
		event.Lon = req.Location.Lon
	}
	if req.Paid != nil {
		event.Paid = *req.Paid
	}
	if req.ParticipantLimit != nil {
		if *req.ParticipantLimit < 0 {
			return models.EventFullDto{}, apperror.New(apperror.Validation, "participant limit must not be negative")
		}
		event.ParticipantLimit = *req.ParticipantLimit
	}
	if req.RequestModeration != nil {
		event.RequestModeration = *req.RequestModeration
	}

	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return models.EventFullDto{}, fmt.Errorf("failed to create event: %w", err)
	}

	created, err := s.DB.GetEventByID(ctx, event.ID)
	if err != nil {
		return models.EventFullDto{}, fmt.Errorf("failed to reload event %d: %w", event.ID, err)
	}
	return models.ToEventFullDto(created, 0), nil
}

func (s *EventService) GetOwn(ctx context.Context, userID int64, from, size int) ([]models.EventShortDto, error) {
	exists, err := s.DB.UserExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return nil, apperror.Newf(apperror.NotFound, "user %d not found", userID)
	}

	events, err := s.DB.GetEventsByInitiator(ctx, userID, from, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list events of user %d: %w", userID, err)
	}

	views := s.viewsFor(ctx, events)
	dtos := make([]models.EventShortDto, 0, len(events))
	for i := range events {
		dtos = append(dtos, models.ToEventShortDto(&events[i], views[events[i].ID]))
	}
	return dtos, nil
}

func (s *EventService) GetOwnByID(ctx context.Context, userID, eventID int64) (models.EventFullDto, error) {
	event, err := s.getOwnedEvent(ctx, userID, eventID)
	if err != nil {
		return models.EventFullDto{}, err
	}
	views := s.viewsFor(ctx, []models.Event{*event})
	return models.ToEventFullDto(event, views[event.ID]), nil
}

func (s *EventService) UpdateByOwner(ctx context.Context, userID, eventID int64, req models.UpdateEventRequest) (models.EventFullDto, error) {
	event, err := s.getOwnedEvent(ctx, userID, eventID)
	if err != nil {
		return models.EventFullDto{}, err
	}
	if event.State == models.EventStatePublished {
		return models.EventFullDto{}, apperror.Newf(apperror.ConflictData, "published event %d cannot be modified", eventID)
	}

	if err := s.applyUpdate(ctx, event, req, ownerEventLead, apperror.Validation); err != nil {
		return models.EventFullDto{}, err
	}

	switch req.StateAction {
	case "":
	case models.ActionSendToReview:
		event.State = models.EventStatePending
	case models.ActionCancelReview:
		event.State = models.EventStateCanceled
	default:
		return models.EventFullDto{}, apperror.Newf(apperror.Validation, "unknown state action: %s", req.StateAction)
	}

	if err := s.DB.UpdateEvent(ctx, event); err != nil {
		return models.EventFullDto{}, fmt.Errorf("failed to update event %d: %w", eventID, err)
	}
	views := s.viewsFor(ctx, []models.Event{*event})
	return models.ToEventFullDto(event, views[event.ID]), nil
}

func (s *EventService) GetOwnEventRequests(ctx context.Context, userID, eventID int64) ([]models.ParticipationRequestDto, error) {
	if _, err := s.getOwnedEvent(ctx, userID, eventID); err != nil {
		return nil, err
	}
	requests, err := s.DB.GetRequestsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests of event %d: %w", eventID, err)
	}
	return models.ToParticipationRequestDtos(requests), nil
}

// UpdateRequestStatuses confirms or rejects the given pending requests of the
// owner's event. The whole decision runs against the locked event row so that
// concurrent confirmations cannot exceed the participant limit.
func (s *EventService) UpdateRequestStatuses(ctx context.Context, userID, eventID int64, update models.RequestStatusUpdate) (RequestStatusResult, error) {
	if update.Status != models.RequestStatusConfirmed && update.Status != models.RequestStatusRejected {
		return RequestStatusResult{}, apperror.Newf(apperror.Validation, "unsupported target status: %s", update.Status)
	}

	result := RequestStatusResult{
		ConfirmedRequests: []models.ParticipationRequestDto{},
		RejectedRequests:  []models.ParticipationRequestDto{},
	}
	var changed []models.ParticipationRequest

	err := s.DB.InTx(ctx, func(tx Tx) error {
		event, err := tx.GetEventForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if event.InitiatorID != userID {
			return apperror.Newf(apperror.Validation, "user %d is not the initiator of event %d", userID, eventID)
		}

		// Confirmation is not needed at all for such events.
		if !event.RequestModeration || event.ParticipantLimit == 0 {
			return nil
		}
		if !event.Available() {
			return apperror.Newf(apperror.ConflictData, "participant limit of event %d is already reached", eventID)
		}

		requests, err := tx.GetRequestsByIDs(ctx, eventID, update.RequestIDs)
		if err != nil {
			return err
		}
		if len(requests) != len(update.RequestIDs) {
			return apperror.New(apperror.Validation, "some requests do not belong to the event")
		}
		for i := range requests {
			if requests[i].Status != models.RequestStatusPending {
				return apperror.Newf(apperror.ConflictData, "request %d is not pending", requests[i].ID)
			}
		}

		confirmed := event.ConfirmedRequests
		var confirmIDs, rejectIDs []int64
		for i := range requests {
			r := &requests[i]
			if update.Status == models.RequestStatusConfirmed && (event.ParticipantLimit == 0 || confirmed < event.ParticipantLimit) {
				r.Status = models.RequestStatusConfirmed
				confirmIDs = append(confirmIDs, r.ID)
				confirmed++
				result.ConfirmedRequests = append(result.ConfirmedRequests, models.ToParticipationRequestDto(r))
			} else {
				r.Status = models.RequestStatusCanceled
				rejectIDs = append(rejectIDs, r.ID)
				result.RejectedRequests = append(result.RejectedRequests, models.ToParticipationRequestDto(r))
			}
			changed = append(changed, *r)
		}

		if len(confirmIDs) > 0 {
			if err := tx.UpdateRequestStatus(ctx, confirmIDs, models.RequestStatusConfirmed); err != nil {
				return err
			}
			if err := tx.UpdateEventConfirmed(ctx, eventID, confirmed); err != nil {
				return err
			}
		}
		if len(rejectIDs) > 0 {
			if err := tx.UpdateRequestStatus(ctx, rejectIDs, models.RequestStatusCanceled); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return RequestStatusResult{}, err
	}

	for i := range changed {
		if err := s.Kafka.PublishRequestStatus(&changed[i]); err != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("request status notification failed: %v", err))
		}
	}
	return result, nil
}

func (s *EventService) AdminSearch(ctx context.Context, filter AdminFilter) ([]models.EventFullDto, error) {
	events, err := s.DB.AdminSearch(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("admin event search failed: %w", err)
	}

	views := s.viewsFor(ctx, events)
	dtos := make([]models.EventFullDto, 0, len(events))
	for i := range events {
		dtos = append(dtos, models.ToEventFullDto(&events[i], views[events[i].ID]))
	}
	return dtos, nil
}

func (s *EventService) UpdateByAdmin(ctx context.Context, eventID int64, req models.UpdateEventRequest) (models.EventFullDto, error) {
	event, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return models.EventFullDto{}, err
	}

	if err := s.applyUpdate(ctx, event, req, adminEventLead, apperror.InvalidDateTime); err != nil {
		return models.EventFullDto{}, err
	}

	var notify func(*models.Event) error
	switch req.StateAction {
	case "":
	case models.ActionPublishEvent:
		if event.State != models.EventStatePending {
			return models.EventFullDto{}, apperror.Newf(apperror.OperationFailed,
				"cannot publish event %d in state %s", eventID, event.State)
		}
		now := time.Now()
		event.State = models.EventStatePublished
		event.PublishedOn = &now
		notify = s.Kafka.PublishEventPublished
	case models.ActionRejectEvent:
		if event.State == models.EventStatePublished {
			return models.EventFullDto{}, apperror.Newf(apperror.OperationFailed,
				"cannot reject already published event %d", eventID)
		}
		event.State = models.EventStateCanceled
		notify = s.Kafka.PublishEventCanceled
	case models.ActionSendToReview:
		event.State = models.EventStatePending
	case models.ActionCancelReview:
		event.State = models.EventStateCanceled
	default:
		return models.EventFullDto{}, apperror.Newf(apperror.Validation, "unknown state action: %s", req.StateAction)
	}

	if err := s.DB.UpdateEvent(ctx, event); err != nil {
		return models.EventFullDto{}, fmt.Errorf("failed to update event %d: %w", eventID, err)
	}

	if notify != nil {
		if err := notify(event); err != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("event notification failed: %v", err))
		}
	}

	views := s.viewsFor(ctx, []models.Event{*event})
	return models.ToEventFullDto(event, views[event.ID]), nil
}

// PublicSearch returns published events matching the filter. Sorting by views
// and pagination happen here, after the batched stats call.
func (s *EventService) PublicSearch(ctx context.Context, filter PublicFilter, sort string, from, size int) ([]models.EventShortDto, error) {
	if sort != SortEventDate && sort != SortViews {
		return nil, apperror.Newf(apperror.InvalidSort, "unsupported sort: %s", sort)
	}
	if filter.RangeStart != nil && filter.RangeEnd != nil && filter.RangeEnd.Before(*filter.RangeStart) {
		return nil, apperror.New(apperror.Validation, "range end must not be before range start")
	}
	if filter.RangeStart == nil && filter.RangeEnd == nil {
		now := time.Now()
		filter.RangeStart = &now
	}

	events, err := s.DB.PublicSearch(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("public event search failed: %w", err)
	}

	views := s.viewsFor(ctx, events)
	dtos := make([]models.EventShortDto, 0, len(events))
	for i := range events {
		dtos = append(dtos, models.ToEventShortDto(&events[i], views[events[i].ID]))
	}

	if sort == SortViews {
		sortShortDtosByViews(dtos)
	}
	return paginateShortDtos(dtos, from, size), nil
}

func (s *EventService) GetPublicByID(ctx context.Context, eventID int64) (models.EventFullDto, error) {
	event, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return models.EventFullDto{}, err
	}
	if event.State != models.EventStatePublished {
		return models.EventFullDto{}, apperror.Newf(apperror.NotFound, "event %d not found", eventID)
	}
	views := s.viewsFor(ctx, []models.Event{*event})
	return models.ToEventFullDto(event, views[event.ID]), nil
}

// RecordHit reports a public view to the stats service. Telemetry must never
// fail a read, so errors are logged and dropped here.
func (s *EventService) RecordHit(ctx context.Context, uri, ip string) {
	if err := s.Stats.Hit(ctx, uri, ip); err != nil {
		s.Logger.Warn("STATS", fmt.Sprintf("hit recording failed for %s: %v", uri, err))
	}
}

func (s *EventService) getOwnedEvent(ctx context.Context, userID, eventID int64) (*models.Event, error) {
	event, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.InitiatorID != userID {
		return nil, apperror.Newf(apperror.Validation, "user %d is not the initiator of event %d", userID, eventID)
	}
	return event, nil
}

func (s *EventService) applyUpdate(ctx context.Context, event *models.Event, req models.UpdateEventRequest, lead time.Duration, dateKind apperror.Kind) error {
	if req.Annotation != nil && *req.Annotation != "" {
		event.Annotation = *req.Annotation
	}
	if req.Title != nil && *req.Title != "" {
		event.Title = *req.Title
	}
	if req.Description != nil && *req.Description != "" {
		event.Description = *req.Description
	}
	if req.Category != nil {
		exists, err := s.DB.CategoryExists(ctx, *req.Category)
		if err != nil {
			return fmt.Errorf("failed to check category: %w", err)
		}
		if !exists {
			return apperror.Newf(apperror.NotFound, "category %d not found", *req.Category)
		}
		event.CategoryID = *req.Category
		event.Category = nil
	}
	if req.EventDate != nil {
		if time.Until(req.EventDate.Time) < lead {
			return apperror.Newf(dateKind, "event date is too close: %s", req.EventDate.Format(models.DateTimeLayout))
		}
		event.EventDate = req.EventDate.Time
	}
	if req.Location != nil {
		event.Lat = req.Location.Lat
		event.Lon = req.Location.Lon
	}
	if req.Paid != nil {
		event.Paid = *req.Paid
	}
	if req.ParticipantLimit != nil {
		if *req.ParticipantLimit < 0 {
			return apperror.New(apperror.Validation, "participant limit must not be negative")
		}
		event.ParticipantLimit = *req.ParticipantLimit
	}
	if req.RequestModeration != nil {
		event.RequestModeration = *req.RequestModeration
	}
	return nil
}

// viewsFor fetches unique view counts for a batch of events in one stats
// call. Stats being down degrades every count to zero, it never fails the
// listing itself.
func (s *EventService) viewsFor(ctx context.Context, events []models.Event) map[int64]int64 {
	if len(events) == 0 {
		return map[int64]int64{}
	}

	start := time.Now()
	uris := make([]string, 0, len(events))
	byURI := make(map[string]int64, len(events))
	for i := range events {
		e := &events[i]
		uri := client.EventURI(e.ID)
		uris = append(uris, uri)
		byURI[uri] = e.ID
		if e.PublishedOn != nil && e.PublishedOn.Before(start) {
			start = *e.PublishedOn
		} else if e.CreatedOn.Before(start) {
			start = e.CreatedOn
		}
	}

	stats, err := s.Stats.Views(ctx, start, time.Now(), uris, true)
	if err != nil {
		s.Logger.Warn("STATS", fmt.Sprintf("view count fetch failed: %v", err))
		return map[int64]int64{}
	}

	views := make(map[int64]int64, len(stats))
	for uri, hits := range stats {
		views[byURI[uri]] = hits
	}
	return views
}

func sortShortDtosByViews(dtos []models.EventShortDto) {
	sort.SliceStable(dtos, func(i, j int) bool {
		return dtos[i].Views < dtos[j].Views
	})
}

func paginateShortDtos(dtos []models.EventShortDto, from, size int) []models.EventShortDto {
	if from >= len(dtos) {
		return []models.EventShortDto{}
	}
	end := from + size
	if end > len(dtos) {
		end = len(dtos)
	}
	return dtos[from:end]
}
