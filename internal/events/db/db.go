package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ms-booking/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateEvent(ctx context.Context, event models.Event) error {
	_, err := d.Bun.NewInsert().Model(&event).Exec(ctx)
	return err
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

func (d *DB) GetEventsByOwner(ctx context.Context, ownerID string) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Where("owner_id = ?", ownerID).
		Order("eventdate ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) GetEventsByLocation(ctx context.Context, location string) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Where("eventlocation = ?", location).
		Order("eventdate ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// UpdateEvent persists the descriptive fields and price. Seat counters are
// deliberately not in the column list: they only move through booking
// operations.
func (d *DB) UpdateEvent(ctx context.Context, event models.Event) error {
	res, err := d.Bun.NewUpdate().
		Model(&event).
		Column("eventname", "eventdate", "eventtime", "eventlocation", "amountrange").
		Where("event_id = ?", event.EventID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrEventNotFound
	}
	return nil
}

func (d *DB) DeleteEvent(ctx context.Context, id string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("event_id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrEventNotFound
	}
	return nil
}

// CountBookingsForEvent reports how many bookings still reference an event.
// Deletion is blocked while this is non-zero.
func (d *DB) CountBookingsForEvent(ctx context.Context, eventID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Booking)(nil)).
		Where("event_id = ?", eventID).
		Count(ctx)
}
