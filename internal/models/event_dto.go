package models

// NewEventRequest is the body of the private event-creation endpoint.
// Paid, ParticipantLimit and RequestModeration are pointers so that absent
// fields can be defaulted (false / 0 / true).
type NewEventRequest struct {
	Annotation        string    `json:"annotation"`
	Category          int64     `json:"category"`
	Description       string    `json:"description"`
	EventDate         DateTime  `json:"eventDate"`
	Location          *Location `json:"location"`
	Paid              *bool     `json:"paid"`
	ParticipantLimit  *int      `json:"participantLimit"`
	RequestModeration *bool     `json:"requestModeration"`
	Title             string    `json:"title"`
}

// UpdateEventRequest carries a partial event update from either the owner or
// an admin. Nil fields are left unchanged.
type UpdateEventRequest struct {
	Annotation        *string   `json:"annotation"`
	Category          *int64    `json:"category"`
	Description       *string   `json:"description"`
	EventDate         *DateTime `json:"eventDate"`
	Location          *Location `json:"location"`
	Paid              *bool     `json:"paid"`
	ParticipantLimit  *int      `json:"participantLimit"`
	RequestModeration *bool     `json:"requestModeration"`
	StateAction       string    `json:"stateAction"`
	Title             *string   `json:"title"`
}

type EventFullDto struct {
	ID                int64        `json:"id"`
	Annotation        string       `json:"annotation"`
	Category          Category     `json:"category"`
	ConfirmedRequests int          `json:"confirmedRequests"`
	CreatedOn         DateTime     `json:"createdOn"`
	Description       string       `json:"description"`
	EventDate         DateTime     `json:"eventDate"`
	Initiator         UserShortDto `json:"initiator"`
	Location          Location     `json:"location"`
	Paid              bool         `json:"paid"`
	ParticipantLimit  int          `json:"participantLimit"`
	PublishedOn       *DateTime    `json:"publishedOn,omitempty"`
	RequestModeration bool         `json:"requestModeration"`
	State             string       `json:"state"`
	Title             string       `json:"title"`
	Views             int64        `json:"views"`
}

type EventShortDto struct {
	ID                int64        `json:"id"`
	Annotation        string       `json:"annotation"`
	Category          Category     `json:"category"`
	ConfirmedRequests int          `json:"confirmedRequests"`
	EventDate         DateTime     `json:"eventDate"`
	Initiator         UserShortDto `json:"initiator"`
	Paid              bool         `json:"paid"`
	Title             string       `json:"title"`
	Views             int64        `json:"views"`
}

func ToEventFullDto(e *Event, views int64) EventFullDto {
	dto := EventFullDto{
		ID:                e.ID,
		Annotation:        e.Annotation,
		ConfirmedRequests: e.ConfirmedRequests,
		CreatedOn:         NewDateTime(e.CreatedOn),
		Description:       e.Description,
		EventDate:         NewDateTime(e.EventDate),
		Initiator:         ToUserShortDto(e.Initiator),
		Location:          Location{Lat: e.Lat, Lon: e.Lon},
		Paid:              e.Paid,
		ParticipantLimit:  e.ParticipantLimit,
		RequestModeration: e.RequestModeration,
		State:             e.State,
		Title:             e.Title,
		Views:             views,
	}
	if e.Category != nil {
		dto.Category = *e.Category
	} else {
		dto.Category = Category{ID: e.CategoryID}
	}
	if e.PublishedOn != nil {
		published := NewDateTime(*e.PublishedOn)
		dto.PublishedOn = &published
	}
	return dto
}

func ToEventShortDto(e *Event, views int64) EventShortDto {
	dto := EventShortDto{
		ID:                e.ID,
		Annotation:        e.Annotation,
		ConfirmedRequests: e.ConfirmedRequests,
		EventDate:         NewDateTime(e.EventDate),
		Initiator:         ToUserShortDto(e.Initiator),
		Paid:              e.Paid,
		Title:             e.Title,
		Views:             views,
	}
	if e.Category != nil {
		dto.Category = *e.Category
	} else {
		dto.Category = Category{ID: e.CategoryID}
	}
	return dto
}
