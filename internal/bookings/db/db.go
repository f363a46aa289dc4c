package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"ms-booking/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("booking_id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (d *DB) GetBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("event_id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// applySeatDelta moves seats between availableseats and bookedseats in one
// conditional update. The WHERE guard re-validates remaining capacity at
// write time, so two bookers racing on the same stale read cannot both win:
// the loser affects zero rows and the transaction rolls back.
func applySeatDelta(ctx context.Context, tx bun.Tx, eventID string, delta int) error {
	res, err := tx.NewUpdate().
		Model((*models.Event)(nil)).
		Set("availableseats = availableseats - ?", delta).
		Set("bookedseats = bookedseats + ?", delta).
		Where("event_id = ?", eventID).
		Where("availableseats >= ?", delta).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to adjust seat counts: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return seatGuardError(ctx, tx, eventID, delta)
	}
	return nil
}

// seatGuardError turns a failed seat guard into the right capacity error,
// reading the event's current counters inside the same transaction.
func seatGuardError(ctx context.Context, tx bun.Tx, eventID string, requested int) error {
	var event models.Event
	err := tx.NewSelect().
		Model(&event).
		Where("event_id = ?", eventID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrEventNotFound
	}
	if err != nil {
		return err
	}
	if event.AvailableSeats == 0 {
		return models.ErrFullyBooked
	}
	return &models.CapacityError{Requested: requested, Available: event.AvailableSeats}
}

// CreateBookingWithSeats inserts the booking and claims its seats from the
// event as one transaction.
func (d *DB) CreateBookingWithSeats(ctx context.Context, booking models.Booking) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&booking).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return applySeatDelta(ctx, tx, booking.EventID, booking.NumSeats)
	})
}

// UpdateBookingWithSeats rewrites the booking's seat count and amount and
// applies the seat delta to the event as one transaction. A negative delta
// releases seats back to the pool.
func (d *DB) UpdateBookingWithSeats(ctx context.Context, booking models.Booking, delta int) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(&booking).
			Column("numseats", "amountdue").
			Where("booking_id = ?", booking.BookingID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return models.ErrBookingNotFound
		}
		return applySeatDelta(ctx, tx, booking.EventID, delta)
	})
}

// DeleteBookingWithSeats removes the booking and returns its seats to the
// event unconditionally, in one transaction with the deletion.
func (d *DB) DeleteBookingWithSeats(ctx context.Context, bookingID, eventID string, numSeats int) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*models.Booking)(nil)).
			Where("booking_id = ?", bookingID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete booking: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return models.ErrBookingNotFound
		}
		return applySeatDelta(ctx, tx, eventID, -numSeats)
	})
}
