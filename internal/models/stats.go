package models

import (
	"time"

	"github.com/uptrace/bun"
)

// EndpointHit is one recorded view of a URI, stored by the stats service.
type EndpointHit struct {
	bun.BaseModel `bun:"table:endpoint_hits"`

	ID      int64     `bun:"id,pk,autoincrement"`
	App     string    `bun:"app,notnull"`
	URI     string    `bun:"uri,notnull"`
	IP      string    `bun:"ip,notnull"`
	Created time.Time `bun:"created,notnull"`
}

type EndpointHitDto struct {
	App       string   `json:"app"`
	URI       string   `json:"uri"`
	IP        string   `json:"ip"`
	Timestamp DateTime `json:"timestamp"`
}

// ViewStats is one aggregated row of the stats response: hit count per
// (app, uri), optionally deduplicated by IP.
type ViewStats struct {
	App  string `bun:"app" json:"app"`
	URI  string `bun:"uri" json:"uri"`
	Hits int64  `bun:"hits" json:"hits"`
}
