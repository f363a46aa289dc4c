package bookings_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ms-booking/internal/auth"
	"ms-booking/internal/bookings"
	"ms-booking/internal/bookings/db"
	"ms-booking/internal/bookings/qr"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/utils"
)

// setupTestService wires the booking service against an in-memory SQLite
// database shared with a user directory, the same shape main wires against
// Postgres.
func setupTestService(t *testing.T) (*bookings.Service, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	for _, model := range []interface{}{
		(*models.User)(nil),
		(*models.Event)(nil),
		(*models.Booking)(nil),
	} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(context.Background())
		if err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
	}

	svc := bookings.NewService(
		&db.DB{Bun: bunDB},
		nil, // no distributed lock in tests; the DB guard is the final word
		&auth.DB{Bun: bunDB},
		nil,
		qr.NewQRGenerator("test-qr-secret"),
		&logger.Logger{},
	)
	return svc, bunDB
}

func seedUser(t *testing.T, bunDB *bun.DB, username string) models.User {
	user := models.User{
		UserID:       utils.GenerateID(),
		Username:     username,
		PasswordHash: "irrelevant",
		Email:        username + "@example.com",
		Role:         models.RoleUser,
		CreatedAt:    time.Now(),
	}
	_, err := bunDB.NewInsert().Model(&user).Exec(context.Background())
	require.NoError(t, err)
	return user
}

func seedEvent(t *testing.T, bunDB *bun.DB, totalSeats, available, price int) models.Event {
	event := models.Event{
		EventID:        utils.GenerateID(),
		EventName:      "Tech Conference",
		EventDate:      time.Now().AddDate(0, 1, 0),
		EventTime:      "18:30:00",
		EventLocation:  "Colombo",
		AmountRange:    price,
		TotalSeats:     totalSeats,
		AvailableSeats: available,
		BookedSeats:    totalSeats - available,
		OwnerID:        "admin1",
		CreatedAt:      time.Now(),
	}
	_, err := bunDB.NewInsert().Model(&event).Exec(context.Background())
	require.NoError(t, err)
	return event
}

func fetchEvent(t *testing.T, bunDB *bun.DB, id string) models.Event {
	var event models.Event
	err := bunDB.NewSelect().
		Model(&event).
		Where("event_id = ?", id).
		Scan(context.Background())
	require.NoError(t, err)
	return event
}

func TestBook(t *testing.T) {
	svc, bunDB := setupTestService(t)
	defer bunDB.Close()

	user := seedUser(t, bunDB, "alice")
	event := seedEvent(t, bunDB, 100, 100, 50)

	resp, err := svc.Book(context.Background(), user.UserID, event.EventID, 40)
	require.NoError(t, err)
	require.NotNil(t, resp.Booking)

	assert.Equal(t, 40, resp.Booking.NumSeats)
	assert.Equal(t, 2000, resp.Booking.AmountDue) // 40 seats at 50 each
	assert.Equal(t, "alice", resp.Booking.Username)
	assert.Equal(t, event.EventName, resp.Booking.EventName)
	assert.NotEmpty(t, resp.QRCode)

	got := fetchEvent(t, bunDB, event.EventID)
	assert.Equal(t, 60, got.AvailableSeats)
	assert.Equal(t, 40, got.BookedSeats)
	assert.Equal(t, 100, got.TotalSeats)
}

func TestBook_InsufficientSeats(t *testing.T) {
	svc, bunDB := setupTestService(t)
	defer bunDB.Close()

	user := seedUser(t, bunDB, "alice")
	event := seedEvent(t, bunDB, 100, 100, 50)

	_, err := svc.Book(context.Background(), user.UserID, event.EventID, 40)
	require.NoError(t, err)

	// 60 seats left; asking for 70 fails and names the remaining capacity
	_, err = svc.Book(context.Background(), user.UserID, event.EventID, 70)
	var capErr *models.CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, 70, capErr.Requested)
	assert.Equal(t, 60, capErr.Available)

	// The failed attempt did not move any seats
	got := fetchEvent(t, bunDB, event.EventID)
	assert.Equal(t, 60, got.AvailableSeats)
	assert.Equal(t, 40, got.BookedSeats)
}

func TestBook_FullyBooked(t *testing.T) {
	svc, bunDB := setupTestService(t)
	defer bunDB.Close()

	user := seedUser(t, bunDB, "alice")
	event := seedEvent(t, bunDB, 100, 0, 50)

	_, err := svc.Book(context.Background(), user.UserID, event.EventID, 1)
	assert.ErrorIs(t, err, models.ErrFullyBooked)
}

func TestBook_Validation(t *testing.T) {
	svc, bunDB := setupTestService(t)
	defer bunDB.Close()

	user := seedUser(t, bunDB, "alice")
	event := seedEvent(t, bunDB, 100, 100, 50)

	_, err := svc.Book(context.Background(), user.UserID, event.EventID, 0)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.Book(context.Background(), user.UserID, event.EventID, -3)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.Book(context.Background(), user.UserID, "ffffffffffffffffffffffff", 2)
	assert.ErrorIs(t, err, models.ErrEventNotFound)
}

func TestUpdate(t *testing.T) {
	svc, bunDB := setupTestService(t)
	defer bunDB.Close()

	user := seedUser(t, bunDB, "alice")
	event := seedEvent(t, bunDB, 100, 100, 50)

	resp, err := svc.Book(context.Background(), user.UserID, event.EventID, 30)
	require.NoError(t, err)
	bookingID := resp.Booking.BookingID

	// Same seat count is a no-op: nothing changes, the event is not touched
	booking, changed, err := svc.Update(context.Background(), user.UserID, bookingID, 30)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 30, booking.NumSeats)

	got := fetchEvent(t, bunDB, event.EventID)
	assert.Equal(t, 70, got.AvailableSeats)

	// Shrinking releases seats and re-derives the amount at the booked rate
	booking, changed, err = svc.Update(context.Background(), user.UserID, bookingID, 10)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 10, booking.NumSeats)
	assert.Equal(t, 500, booking.AmountDue)

	got = fetchEvent(t, bunDB, event.EventID)
	assert.Equal(t, 90, got.AvailableSeats)
	assert.Equal(t, 10, got.BookedSeats)

	// Growing claims the extra seats
	booking, changed, err = svc.Update(context.Background(), user.UserID, bookingID, 50)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2500, booking.AmountDue)

	got = fetchEvent(t, bunDB, event.EventID)
	assert.Equal(t, 50, got.AvailableSeats)
	assert.Equal(t, 50, got.BookedSeats)
}

func TestUpdate_InsufficientSeatsForGrowth(t *testing.T) {
	svc, bunDB := setupTestService(t)
	defer bunDB.Close()

	user := seedUser(t, bunDB, "alice")
	event := seedEvent(t, bunDB, 100, 10, 50)

	resp, err := svc.Book(context.Background(), user.UserID, event.EventID, 5)
	require.NoError(t, err)
	// 5 seats left on the event

	_, _, err = svc.Update(context.Background(), user.UserID, resp.Booking.BookingID, 25)
	var capErr *models.CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, 5, capErr.Available)
}

func TestUpdate_OwnershipEnforced(t *testing.T) {
	svc, bunDB := setupTestService(t)
	defer bunDB.Close()

	alice := seedUser(t, bunDB, "alice")
	bob := seedUser(t, bunDB, "bob")
	event := seedEvent(t, bunDB, 100, 100, 50)

	resp, err := svc.Book(context.Background(), alice.UserID, event.EventID, 10)
	require.NoError(t, err)

	// Someone else's booking looks like a missing one
	_, _, err = svc.Update(context.Background(), bob.UserID, resp.Booking.BookingID, 5)
	assert.ErrorIs(t, err, models.ErrBookingNotFound)

	err = svc.Cancel(context.Background(), bob.UserID, resp.Booking.BookingID)
	assert.ErrorIs(t, err, models.ErrBookingNotFound)
}

func TestCancel(t *testing.T) {
	svc, bunDB := setupTestService(t)
	defer bunDB.Close()

	user := seedUser(t, bunDB, "alice")
	event := seedEvent(t, bunDB, 80, 50, 50)

	resp, err := svc.Book(context.Background(), user.UserID, event.EventID, 20)
	require.NoError(t, err)
	// 30 available, 50 booked now

	require.NoError(t, svc.Cancel(context.Background(), user.UserID, resp.Booking.BookingID))

	got := fetchEvent(t, bunDB, event.EventID)
	assert.Equal(t, 50, got.AvailableSeats)
	assert.Equal(t, 30, got.BookedSeats)

	list, err := svc.ListForUser(context.Background(), user.UserID)
	require.NoError(t, err)
	assert.Empty(t, list)

	// Cancelling again reports the booking gone
	err = svc.Cancel(context.Background(), user.UserID, resp.Booking.BookingID)
	assert.ErrorIs(t, err, models.ErrBookingNotFound)
}

func TestListForUser(t *testing.T) {
	svc, bunDB := setupTestService(t)
	defer bunDB.Close()

	alice := seedUser(t, bunDB, "alice")
	bob := seedUser(t, bunDB, "bob")
	event := seedEvent(t, bunDB, 100, 100, 50)

	_, err := svc.Book(context.Background(), alice.UserID, event.EventID, 2)
	require.NoError(t, err)
	_, err = svc.Book(context.Background(), bob.UserID, event.EventID, 3)
	require.NoError(t, err)

	list, err := svc.ListForUser(context.Background(), alice.UserID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, alice.UserID, list[0].UserID)
}

// Ten concurrent bookers of 20 seats each against a 100-seat event: exactly
// five can win, and the counters must come out whole no matter the
// interleaving.
func TestBook_ConcurrentNoOversell(t *testing.T) {
	svc, bunDB := setupTestService(t)
	defer bunDB.Close()

	user := seedUser(t, bunDB, "alice")
	event := seedEvent(t, bunDB, 100, 100, 50)

	const attempts = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Book(context.Background(), user.UserID, event.EventID, 20)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, successes)

	got := fetchEvent(t, bunDB, event.EventID)
	assert.Equal(t, 0, got.AvailableSeats)
	assert.Equal(t, 100, got.BookedSeats)
	assert.Equal(t, got.TotalSeats, got.AvailableSeats+got.BookedSeats)

	// The booked seats across all bookings add up to the event's counter
	list, err := svc.ListForUser(context.Background(), user.UserID)
	require.NoError(t, err)
	total := 0
	for _, b := range list {
		total += b.NumSeats
	}
	assert.Equal(t, 100, total)
}
