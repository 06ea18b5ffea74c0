package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Participation request statuses.
const (
	RequestStatusPending   = "PENDING"
	RequestStatusConfirmed = "CONFIRMED"
	RequestStatusCanceled  = "CANCELED"
)

// RequestStatusRejected is a target value accepted in the bulk status update
// body only. Rejected requests are stored and returned as CANCELED.
const RequestStatusRejected = "REJECTED"

type ParticipationRequest struct {
	bun.BaseModel `bun:"table:participation_requests"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Created     time.Time `bun:"created,notnull"`
	EventID     int64     `bun:"event_id,notnull,unique:requester_event"`
	RequesterID int64     `bun:"requester_id,notnull,unique:requester_event"`
	Status      string    `bun:"status,notnull"`
}

type ParticipationRequestDto struct {
	ID        int64    `json:"id"`
	Created   DateTime `json:"created"`
	Event     int64    `json:"event"`
	Requester int64    `json:"requester"`
	Status    string   `json:"status"`
}

func ToParticipationRequestDto(r *ParticipationRequest) ParticipationRequestDto {
	return ParticipationRequestDto{
		ID:        r.ID,
		Created:   NewDateTime(r.Created),
		Event:     r.EventID,
		Requester: r.RequesterID,
		Status:    r.Status,
	}
}

func ToParticipationRequestDtos(requests []ParticipationRequest) []ParticipationRequestDto {
	dtos := make([]ParticipationRequestDto, 0, len(requests))
	for i := range requests {
		dtos = append(dtos, ToParticipationRequestDto(&requests[i]))
	}
	return dtos
}

// RequestStatusUpdate is the body of the bulk status update sent by an event
// owner: the target requests and the status (CONFIRMED or REJECTED) to apply.
type RequestStatusUpdate struct {
	RequestIDs []int64 `json:"requestIds"`
	Status     string  `json:"status"`
}
