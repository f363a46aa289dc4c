package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ms-booking/internal/events/db"
	"ms-booking/internal/models"
	"ms-booking/internal/utils"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	for _, model := range []interface{}{
		(*models.Event)(nil),
		(*models.Booking)(nil),
	} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(context.Background())
		if err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func testEvent(ownerID string) models.Event {
	return models.Event{
		EventID:        utils.GenerateID(),
		EventName:      "Tech Conference",
		EventDate:      time.Now().AddDate(0, 1, 0),
		EventTime:      "18:30:00",
		EventLocation:  "Colombo",
		AmountRange:    50,
		TotalSeats:     100,
		AvailableSeats: 100,
		BookedSeats:    0,
		OwnerID:        ownerID,
		CreatedAt:      time.Now(),
	}
}

func TestCreateAndGetEvent(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	event := testEvent("admin1")
	require.NoError(t, eventDB.CreateEvent(context.Background(), event))

	got, err := eventDB.GetEventByID(context.Background(), event.EventID)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, got.EventID)
	assert.Equal(t, "Tech Conference", got.EventName)
	assert.Equal(t, 100, got.AvailableSeats)

	// Unknown id maps to the not-found sentinel
	_, err = eventDB.GetEventByID(context.Background(), "ffffffffffffffffffffffff")
	assert.ErrorIs(t, err, models.ErrEventNotFound)
}

func TestGetEventsByOwnerAndLocation(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	colombo := testEvent("admin1")
	kandy := testEvent("admin2")
	kandy.EventLocation = "Kandy"
	require.NoError(t, eventDB.CreateEvent(context.Background(), colombo))
	require.NoError(t, eventDB.CreateEvent(context.Background(), kandy))

	byOwner, err := eventDB.GetEventsByOwner(context.Background(), "admin1")
	require.NoError(t, err)
	assert.Len(t, byOwner, 1)
	assert.Equal(t, colombo.EventID, byOwner[0].EventID)

	byLocation, err := eventDB.GetEventsByLocation(context.Background(), "Kandy")
	require.NoError(t, err)
	assert.Len(t, byLocation, 1)
	assert.Equal(t, kandy.EventID, byLocation[0].EventID)

	empty, err := eventDB.GetEventsByLocation(context.Background(), "Galle")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpdateEvent_LeavesSeatCountersAlone(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	event := testEvent("admin1")
	event.AvailableSeats = 60
	event.BookedSeats = 40
	require.NoError(t, eventDB.CreateEvent(context.Background(), event))

	// An update carrying bogus counters must not disturb the stored ones
	event.EventName = "Renamed Conference"
	event.AmountRange = 75
	event.AvailableSeats = 999
	event.BookedSeats = 0
	require.NoError(t, eventDB.UpdateEvent(context.Background(), event))

	got, err := eventDB.GetEventByID(context.Background(), event.EventID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Conference", got.EventName)
	assert.Equal(t, 75, got.AmountRange)
	assert.Equal(t, 60, got.AvailableSeats)
	assert.Equal(t, 40, got.BookedSeats)
}

func TestUpdateEvent_NotFound(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	event := testEvent("admin1")
	err := eventDB.UpdateEvent(context.Background(), event)
	assert.ErrorIs(t, err, models.ErrEventNotFound)
}

func TestDeleteEvent(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	event := testEvent("admin1")
	require.NoError(t, eventDB.CreateEvent(context.Background(), event))

	require.NoError(t, eventDB.DeleteEvent(context.Background(), event.EventID))

	_, err := eventDB.GetEventByID(context.Background(), event.EventID)
	assert.ErrorIs(t, err, models.ErrEventNotFound)

	err = eventDB.DeleteEvent(context.Background(), event.EventID)
	assert.ErrorIs(t, err, models.ErrEventNotFound)
}

func TestCountBookingsForEvent(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	event := testEvent("admin1")
	require.NoError(t, eventDB.CreateEvent(context.Background(), event))

	count, err := eventDB.CountBookingsForEvent(context.Background(), event.EventID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	booking := models.Booking{
		BookingID:     utils.GenerateID(),
		EventID:       event.EventID,
		EventName:     event.EventName,
		EventDate:     event.EventDate,
		EventTime:     event.EventTime,
		EventLocation: event.EventLocation,
		AmountRange:   event.AmountRange,
		UserID:        "user1",
		Username:      "alice",
		Email:         "alice@example.com",
		NumSeats:      2,
		AmountDue:     100,
		CreatedAt:     time.Now(),
	}
	_, err = bunDB.NewInsert().Model(&booking).Exec(context.Background())
	require.NoError(t, err)

	count, err = eventDB.CountBookingsForEvent(context.Background(), event.EventID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
