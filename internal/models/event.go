package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	EventID        string    `bun:"event_id,pk" json:"event_id"`
	EventName      string    `bun:"eventname,notnull" json:"eventname"`
	EventDate      time.Time `bun:"eventdate,notnull" json:"eventdate"`
	EventTime      string    `bun:"eventtime,notnull" json:"eventtime"`
	EventLocation  string    `bun:"eventlocation,notnull" json:"eventlocation"`
	AmountRange    int       `bun:"amountrange,notnull" json:"amountrange"`
	TotalSeats     int       `bun:"totalseats,notnull" json:"totalseats"`
	AvailableSeats int       `bun:"availableseats,notnull" json:"availableseats"`
	BookedSeats    int       `bun:"bookedseats,notnull" json:"bookedseats"`
	OwnerID        string    `bun:"owner_id,notnull" json:"owner_id"`
	CreatedAt      time.Time `bun:"created_at,notnull" json:"created_at"`
}

// CreateEventRequest carries the caller-supplied event fields. Seat counters
// are intentionally absent: availableseats and bookedseats are always derived
// from totalseats on the server, never trusted from the client.
type CreateEventRequest struct {
	EventName     string `json:"eventname"`
	EventDate     string `json:"eventdate"`
	EventTime     string `json:"eventtime"`
	EventLocation string `json:"eventlocation"`
	AmountRange   int    `json:"amountrange"`
	TotalSeats    int    `json:"totalseats"`
}

// UpdateEventRequest holds the user-editable descriptive fields. Seat
// counters only ever change through booking operations.
type UpdateEventRequest struct {
	EventName     *string `json:"eventname,omitempty"`
	EventDate     *string `json:"eventdate,omitempty"`
	EventTime     *string `json:"eventtime,omitempty"`
	EventLocation *string `json:"eventlocation,omitempty"`
	AmountRange   *int    `json:"amountrange,omitempty"`
}
