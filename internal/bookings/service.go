package bookings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-booking/internal/kafka"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/utils"
)

type DBLayer interface {
	GetBookingByID(ctx context.Context, id string) (*models.Booking, error)
	GetBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error)
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	CreateBookingWithSeats(ctx context.Context, booking models.Booking) error
	UpdateBookingWithSeats(ctx context.Context, booking models.Booking, delta int) error
	DeleteBookingWithSeats(ctx context.Context, bookingID, eventID string, numSeats int) error
}

// EventLock serializes booking attempts per event across instances.
type EventLock interface {
	LockEvent(eventID, ref string) (bool, error)
	UnlockEvent(eventID, ref string) error
}

// UserDirectory provides the booker identity denormalized into bookings.
type UserDirectory interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

type Publisher interface {
	Publish(topic, key string, value []byte) error
}

// QREncoder renders a booking confirmation. Generation is best effort; a
// failure never blocks the booking itself.
type QREncoder interface {
	GenerateEncryptedQR(booking models.Booking) ([]byte, error)
}

type Service struct {
	DB     DBLayer
	Lock   EventLock
	Users  UserDirectory
	Kafka  Publisher
	QR     QREncoder
	Logger *logger.Logger
}

func NewService(db DBLayer, lock EventLock, users UserDirectory, producer Publisher, qr QREncoder, log *logger.Logger) *Service {
	return &Service{DB: db, Lock: lock, Users: users, Kafka: producer, QR: qr, Logger: log}
}

const (
	lockAttempts = 10
	lockBackoff  = 50 * time.Millisecond
)

// acquireEventLock takes the per-event lock with a short bounded wait and
// returns the release function. Contention past the wait surfaces as a busy
// error rather than queuing indefinitely.
func (s *Service) acquireEventLock(eventID string) (func(), error) {
	if s.Lock == nil {
		return func() {}, nil
	}
	ref := uuid.NewString()
	for i := 0; i < lockAttempts; i++ {
		ok, err := s.Lock.LockEvent(eventID, ref)
		if err != nil {
			return nil, fmt.Errorf("redis lock error: %w", err)
		}
		if ok {
			return func() {
				if err := s.Lock.UnlockEvent(eventID, ref); err != nil {
					s.Logger.Warn("REDIS", fmt.Sprintf("Failed to unlock event %s: %v", eventID, err))
				}
			}, nil
		}
		time.Sleep(lockBackoff)
	}
	return nil, models.ErrEventBusy
}

// Book reserves numSeats on an event for the calling user. Capacity is
// checked up front for a friendly error and re-validated by the conditional
// update inside the transaction, so concurrent bookers cannot oversell.
func (s *Service) Book(ctx context.Context, userID, eventID string, numSeats int) (*models.BookingResponse, error) {
	if numSeats < 1 {
		return nil, fmt.Errorf("%w: numseats must be at least 1", models.ErrInvalidInput)
	}

	unlock, err := s.acquireEventLock(eventID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	event, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.AvailableSeats == 0 {
		return nil, models.ErrFullyBooked
	}
	if numSeats > event.AvailableSeats {
		return nil, &models.CapacityError{Requested: numSeats, Available: event.AvailableSeats}
	}

	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up booker: %w", err)
	}
	if user == nil {
		return nil, models.ErrAccessDenied
	}

	booking := models.Booking{
		BookingID:     utils.GenerateID(),
		EventID:       event.EventID,
		EventName:     event.EventName,
		EventDate:     event.EventDate,
		EventTime:     event.EventTime,
		EventLocation: event.EventLocation,
		AmountRange:   event.AmountRange,
		UserID:        user.UserID,
		Username:      user.Username,
		Email:         user.Email,
		NumSeats:      numSeats,
		AmountDue:     numSeats * event.AmountRange,
		CreatedAt:     time.Now(),
	}

	if err := s.DB.CreateBookingWithSeats(ctx, booking); err != nil {
		return nil, err
	}

	s.Logger.LogBooking("CREATE", booking.BookingID, fmt.Sprintf("%d seats on event %s for user %s", numSeats, eventID, user.Username))
	s.publishBookingEvent(kafka.TopicBookingCreated, booking)

	resp := &models.BookingResponse{Booking: &booking}
	if s.QR != nil {
		qrBytes, err := s.QR.GenerateEncryptedQR(booking)
		if err != nil {
			s.Logger.Warn("BOOKING", fmt.Sprintf("QR generation failed for booking %s: %v", booking.BookingID, err))
		} else {
			resp.QRCode = qrBytes
		}
	}
	return resp, nil
}

// Update changes the seat count on an existing booking. Asking for the same
// count is a no-op and leaves the event untouched; otherwise the delta is
// applied to the event and the amount re-derived at the snapshot rate.
func (s *Service) Update(ctx context.Context, userID, bookingID string, newNumSeats int) (*models.Booking, bool, error) {
	if newNumSeats < 1 {
		return nil, false, fmt.Errorf("%w: numseats must be at least 1", models.ErrInvalidInput)
	}

	booking, err := s.DB.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, false, err
	}
	if booking.UserID != userID {
		return nil, false, models.ErrBookingNotFound
	}

	if newNumSeats == booking.NumSeats {
		return booking, false, nil
	}

	unlock, err := s.acquireEventLock(booking.EventID)
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	event, err := s.DB.GetEventByID(ctx, booking.EventID)
	if err != nil {
		return nil, false, err
	}

	delta := newNumSeats - booking.NumSeats
	if delta > event.AvailableSeats {
		return nil, false, &models.CapacityError{Requested: delta, Available: event.AvailableSeats}
	}

	booking.NumSeats = newNumSeats
	booking.AmountDue = newNumSeats * booking.AmountRange

	if err := s.DB.UpdateBookingWithSeats(ctx, *booking, delta); err != nil {
		return nil, false, err
	}

	s.Logger.LogBooking("UPDATE", booking.BookingID, fmt.Sprintf("seats changed by %+d on event %s", delta, booking.EventID))
	s.publishBookingEvent(kafka.TopicBookingUpdated, *booking)
	return booking, true, nil
}

// Cancel deletes a booking and returns its seats to the event.
func (s *Service) Cancel(ctx context.Context, userID, bookingID string) error {
	booking, err := s.DB.GetBookingByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.UserID != userID {
		return models.ErrBookingNotFound
	}

	unlock, err := s.acquireEventLock(booking.EventID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.DB.DeleteBookingWithSeats(ctx, booking.BookingID, booking.EventID, booking.NumSeats); err != nil {
		return err
	}

	s.Logger.LogBooking("CANCEL", booking.BookingID, fmt.Sprintf("%d seats returned to event %s", booking.NumSeats, booking.EventID))
	s.publishBookingEvent(kafka.TopicBookingCancelled, *booking)
	return nil
}

// ListForUser returns the caller's own bookings.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.DB.GetBookingsByUser(ctx, userID)
}

func (s *Service) publishBookingEvent(topic string, booking models.Booking) {
	if s.Kafka == nil {
		return
	}
	payload, err := json.Marshal(booking)
	if err != nil {
		return
	}
	if err := s.Kafka.Publish(topic, booking.BookingID, payload); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("Failed to publish %s for booking %s: %v", topic, booking.BookingID, err))
	}
}
