package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Location is a user's one-time home location registration. It gates event
// browsing for non-admin users and has no update or delete path.
type Location struct {
	bun.BaseModel `bun:"table:locations"`

	UserID    string    `bun:"user_id,pk" json:"user_id"`
	Location  string    `bun:"location,notnull" json:"location"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}

type SetLocationRequest struct {
	Location string `json:"location"`
}
