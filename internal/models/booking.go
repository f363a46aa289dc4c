package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Booking is one user's seat reservation against an event. The descriptive
// event fields are denormalized at booking time so the reservation keeps the
// price and schedule it was sold at.
type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	BookingID     string    `bun:"booking_id,pk" json:"booking_id"`
	EventID       string    `bun:"event_id,notnull" json:"event_id"`
	EventName     string    `bun:"eventname,notnull" json:"eventname"`
	EventDate     time.Time `bun:"eventdate,notnull" json:"eventdate"`
	EventTime     string    `bun:"eventtime,notnull" json:"eventtime"`
	EventLocation string    `bun:"eventlocation,notnull" json:"eventlocation"`
	AmountRange   int       `bun:"amountrange,notnull" json:"amountrange"`
	UserID        string    `bun:"user_id,notnull" json:"user_id"`
	Username      string    `bun:"username,notnull" json:"username"`
	Email         string    `bun:"email,notnull" json:"email"`
	NumSeats      int       `bun:"numseats,notnull" json:"numseats"`
	AmountDue     int       `bun:"amountdue,notnull" json:"amountdue"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
}

type BookSeatsRequest struct {
	NumSeats int `json:"numseats"`
}

type BookingResponse struct {
	Booking *Booking `json:"booking"`
	QRCode  []byte   `json:"qr_code,omitempty"`
}
