package models

import (
	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID    int64  `bun:"id,pk,autoincrement" json:"id"`
	Name  string `bun:"name,notnull" json:"name"`
	Email string `bun:"email,notnull,unique" json:"email"`
}

type NewUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserShortDto is the initiator/author representation embedded in event and
// comment responses.
type UserShortDto struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func ToUserShortDto(u *User) UserShortDto {
	if u == nil {
		return UserShortDto{}
	}
	return UserShortDto{ID: u.ID, Name: u.Name}
}
