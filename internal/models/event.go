package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Event lifecycle states.
const (
	EventStatePending   = "PENDING"
	EventStatePublished = "PUBLISHED"
	EventStateCanceled  = "CANCELED"
)

// State actions accepted on event update requests.
const (
	ActionSendToReview = "SEND_TO_REVIEW"
	ActionCancelReview = "CANCEL_REVIEW"
	ActionPublishEvent = "PUBLISH_EVENT"
	ActionRejectEvent  = "REJECT_EVENT"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID                int64      `bun:"id,pk,autoincrement"`
	Annotation        string     `bun:"annotation,notnull"`
	CategoryID        int64      `bun:"category_id,notnull"`
	ConfirmedRequests int        `bun:"confirmed_requests,notnull"`
	CreatedOn         time.Time  `bun:"created_on,notnull"`
	PublishedOn       *time.Time `bun:"published_on,nullzero"`
	Description       string     `bun:"description,notnull"`
	EventDate         time.Time  `bun:"event_date,notnull"`
	InitiatorID       int64      `bun:"initiator_id,notnull"`
	Lat               float64    `bun:"lat"`
	Lon               float64    `bun:"lon"`
	Paid              bool       `bun:"paid"`
	ParticipantLimit  int        `bun:"participant_limit,notnull"`
	RequestModeration bool       `bun:"request_moderation"`
	State             string     `bun:"state,notnull"`
	Title             string     `bun:"title,notnull"`

	Category  *Category `bun:"rel:belongs-to,join:category_id=id"`
	Initiator *User     `bun:"rel:belongs-to,join:initiator_id=id"`
}

// Available reports whether the event still has free participant slots.
// A zero limit means unlimited.
func (e *Event) Available() bool {
	return e.ParticipantLimit == 0 || e.ConfirmedRequests < e.ParticipantLimit
}

type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
