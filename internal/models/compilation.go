package models

import (
	"github.com/uptrace/bun"
)

type Compilation struct {
	bun.BaseModel `bun:"table:compilations"`

	ID     int64  `bun:"id,pk,autoincrement"`
	Title  string `bun:"title,notnull,unique"`
	Pinned bool   `bun:"pinned"`

	Events []*Event `bun:"m2m:compilation_events,join:Compilation=Event"`
}

// CompilationEvent is the join table between compilations and events.
// It must be registered with bun before the m2m relation is queried.
type CompilationEvent struct {
	bun.BaseModel `bun:"table:compilation_events"`

	CompilationID int64        `bun:"compilation_id,pk"`
	Compilation   *Compilation `bun:"rel:belongs-to,join:compilation_id=id"`
	EventID       int64        `bun:"event_id,pk"`
	Event         *Event       `bun:"rel:belongs-to,join:event_id=id"`
}

type NewCompilationRequest struct {
	Title  string  `json:"title"`
	Pinned bool    `json:"pinned"`
	Events []int64 `json:"events"`
}

// UpdateCompilationRequest carries a partial compilation update. A non-nil
// Events slice replaces the whole event set, including an empty one.
type UpdateCompilationRequest struct {
	Title  *string  `json:"title"`
	Pinned *bool    `json:"pinned"`
	Events *[]int64 `json:"events"`
}

type CompilationDto struct {
	ID     int64           `json:"id"`
	Title  string          `json:"title"`
	Pinned bool            `json:"pinned"`
	Events []EventShortDto `json:"events"`
}
