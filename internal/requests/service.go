package requests

import (
	"context"
	"fmt"
	"time"

	"ms-events/internal/apperror"
	"ms-events/internal/logger"
	"ms-events/internal/models"
)

type DBLayer interface {
	GetRequestsByRequester(ctx context.Context, requesterID int64) ([]models.ParticipationRequest, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx covers the request create and cancel paths. Both touch the confirmed
// counter, so the event row is read under a lock.
type Tx interface {
	GetEventForUpdate(ctx context.Context, id int64) (*models.Event, error)
	RequestExists(ctx context.Context, eventID, requesterID int64) (bool, error)
	GetRequestOfUser(ctx context.Context, requestID, requesterID int64) (*models.ParticipationRequest, error)
	InsertRequest(ctx context.Context, request *models.ParticipationRequest) error
	UpdateRequestStatus(ctx context.Context, requestID int64, status string) error
	UpdateEventConfirmed(ctx context.Context, eventID int64, confirmed int) error
}

type Publisher interface {
	PublishRequestStatus(request *models.ParticipationRequest) error
}

type RequestService struct {
	DB     DBLayer
	Kafka  Publisher
	Logger *logger.Logger
}

func NewRequestService(db DBLayer, publisher Publisher, log *logger.Logger) *RequestService {
	return &RequestService{DB: db, Kafka: publisher, Logger: log}
}

func (s *RequestService) GetOwn(ctx context.Context, userID int64) ([]models.ParticipationRequestDto, error) {
	exists, err := s.DB.UserExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return nil, apperror.Newf(apperror.NotFound, "user %d not found", userID)
	}

	requests, err := s.DB.GetRequestsByRequester(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests of user %d: %w", userID, err)
	}
	return models.ToParticipationRequestDtos(requests), nil
}

// Create files a participation request. The event row stays locked from the
// duplicate check through the counter increment, so two concurrent requests
// for the last slot cannot both be confirmed.
func (s *RequestService) Create(ctx context.Context, userID, eventID int64) (models.ParticipationRequestDto, error) {
	exists, err := s.DB.UserExists(ctx, userID)
	if err != nil {
		return models.ParticipationRequestDto{}, fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return models.ParticipationRequestDto{}, apperror.Newf(apperror.NotFound, "user %d not found", userID)
	}

	request := &models.ParticipationRequest{
		Created:     time.Now(),
		EventID:     eventID,
		RequesterID: userID,
		Status:      models.RequestStatusPending,
	}

	err = s.DB.InTx(ctx, func(tx Tx) error {
		event, err := tx.GetEventForUpdate(ctx, eventID)
		if err != nil {
			return err
		}

		duplicate, err := tx.RequestExists(ctx, eventID, userID)
		if err != nil {
			return err
		}
		if duplicate {
			return apperror.Newf(apperror.Duplicate, "user %d already requested event %d", userID, eventID)
		}
		if event.InitiatorID == userID {
			return apperror.New(apperror.ConflictData, "initiator cannot request own event")
		}
		if event.State != models.EventStatePublished {
			return apperror.Newf(apperror.ConflictData, "event %d is not published", eventID)
		}
		if !event.Available() {
			return apperror.Newf(apperror.ConflictData, "participant limit of event %d is reached", eventID)
		}

		if !event.RequestModeration || event.ParticipantLimit == 0 {
			request.Status = models.RequestStatusConfirmed
		}
		if err := tx.InsertRequest(ctx, request); err != nil {
			return err
		}
		if request.Status == models.RequestStatusConfirmed {
			return tx.UpdateEventConfirmed(ctx, eventID, event.ConfirmedRequests+1)
		}
		return nil
	})
	if err != nil {
		return models.ParticipationRequestDto{}, err
	}

	if err := s.Kafka.PublishRequestStatus(request); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("request status notification failed: %v", err))
	}
	return models.ToParticipationRequestDto(request), nil
}

// Cancel sets the caller's own request to CANCELED. A confirmed request
// frees its slot exactly once.
func (s *RequestService) Cancel(ctx context.Context, userID, requestID int64) (models.ParticipationRequestDto, error) {
	var canceled *models.ParticipationRequest

	err := s.DB.InTx(ctx, func(tx Tx) error {
		request, err := tx.GetRequestOfUser(ctx, requestID, userID)
		if err != nil {
			return err
		}

		if request.Status == models.RequestStatusConfirmed {
			event, err := tx.GetEventForUpdate(ctx, request.EventID)
			if err != nil {
				return err
			}
			if err := tx.UpdateEventConfirmed(ctx, event.ID, event.ConfirmedRequests-1); err != nil {
				return err
			}
		}

		request.Status = models.RequestStatusCanceled
		if err := tx.UpdateRequestStatus(ctx, requestID, models.RequestStatusCanceled); err != nil {
			return err
		}
		canceled = request
		return nil
	})
	if err != nil {
		return models.ParticipationRequestDto{}, err
	}

	if err := s.Kafka.PublishRequestStatus(canceled); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("request status notification failed: %v", err))
	}
	return models.ToParticipationRequestDto(canceled), nil
}
