package models

import (
	"errors"
	"fmt"
)

var (
	// Auth errors
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrNoActiveSession    = errors.New("no active session found for this token")
	ErrAccessDenied       = errors.New("access denied")

	// Event errors
	ErrEventNotFound    = errors.New("event not found")
	ErrInvalidDate      = errors.New("event date must be in the future")
	ErrEventHasBookings = errors.New("event has active bookings and cannot be deleted")

	// Booking errors
	ErrBookingNotFound = errors.New("booking not found")
	ErrFullyBooked     = errors.New("event is fully booked")
	ErrEventBusy       = errors.New("event is busy processing another booking, try again")

	// Location errors
	ErrLocationRequired   = errors.New("location must be set before browsing events")
	ErrLocationAlreadySet = errors.New("location already set for this user")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)

// CapacityError is returned when a booking asks for more seats than the
// event has left. It carries the remaining capacity so user-facing messages
// can cite the current availableseats value.
type CapacityError struct {
	Requested int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("not enough available seats: requested %d, only %d available", e.Requested, e.Available)
}

// Is lets errors.Is match any CapacityError against a zero template.
func (e *CapacityError) Is(target error) bool {
	_, ok := target.(*CapacityError)
	return ok
}
