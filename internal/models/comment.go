package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Comment sort modes for the public listing.
const (
	CommentSortLikes = "LIKES"
	CommentSortNew   = "NEW"
)

type Comment struct {
	bun.BaseModel `bun:"table:comments"`

	ID        int64     `bun:"id,pk,autoincrement"`
	AuthorID  int64     `bun:"author_id,notnull"`
	EventID   int64     `bun:"event_id,notnull"`
	Text      string    `bun:"text,notnull"`
	CreatedOn time.Time `bun:"created_on,notnull"`
	Edited    bool      `bun:"edited"`

	Author *User `bun:"rel:belongs-to,join:author_id=id"`
}

type CommentLike struct {
	bun.BaseModel `bun:"table:comment_likes"`

	CommentID int64 `bun:"comment_id,pk"`
	UserID    int64 `bun:"user_id,pk"`
}

type NewCommentRequest struct {
	Text string `json:"text"`
}

type CommentDto struct {
	ID        int64        `json:"id"`
	Author    UserShortDto `json:"author"`
	EventID   int64        `json:"eventId"`
	Text      string       `json:"text"`
	CreatedOn DateTime     `json:"createdOn"`
	Edited    bool         `json:"edited"`
	Likes     int64        `json:"likes"`
}

func ToCommentDto(c *Comment, likes int64) CommentDto {
	return CommentDto{
		ID:        c.ID,
		Author:    ToUserShortDto(c.Author),
		EventID:   c.EventID,
		Text:      c.Text,
		CreatedOn: NewDateTime(c.CreatedOn),
		Edited:    c.Edited,
		Likes:     likes,
	}
}
