package events

import (
	"context"
	"fmt"
	"time"

	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/utils"
)

type DBLayer interface {
	CreateEvent(ctx context.Context, event models.Event) error
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	GetEventsByOwner(ctx context.Context, ownerID string) ([]models.Event, error)
	GetEventsByLocation(ctx context.Context, location string) ([]models.Event, error)
	UpdateEvent(ctx context.Context, event models.Event) error
	DeleteEvent(ctx context.Context, id string) error
	CountBookingsForEvent(ctx context.Context, eventID string) (int, error)
}

// LocationDirectory is the read side of the user location registry. Event
// browsing for non-admin users is gated on having an entry here.
type LocationDirectory interface {
	GetLocation(ctx context.Context, userID string) (*models.Location, error)
}

type Service struct {
	DB        DBLayer
	Locations LocationDirectory
	Logger    *logger.Logger
}

func NewService(db DBLayer, locations LocationDirectory, log *logger.Logger) *Service {
	return &Service{DB: db, Locations: locations, Logger: log}
}

// Create validates and persists a new event. Seat counters are derived on
// the server: availableseats starts at totalseats and bookedseats at zero,
// whatever the caller sent.
func (s *Service) Create(ctx context.Context, ownerID string, req models.CreateEventRequest) (*models.Event, error) {
	if req.EventName == "" || req.EventLocation == "" {
		return nil, fmt.Errorf("%w: eventname and eventlocation are required", models.ErrInvalidInput)
	}
	if req.AmountRange < 1 {
		return nil, fmt.Errorf("%w: amountrange must be at least 1", models.ErrInvalidInput)
	}
	if req.TotalSeats < 10 {
		return nil, fmt.Errorf("%w: totalseats must be at least 10", models.ErrInvalidInput)
	}
	if !utils.ValidEventTime(req.EventTime) {
		return nil, fmt.Errorf("%w: eventtime must match HH:MM:SS", models.ErrInvalidInput)
	}

	date, err := utils.ParseEventDate(req.EventDate)
	if err != nil {
		return nil, fmt.Errorf("%w: eventdate is not a valid date", models.ErrInvalidInput)
	}
	if !date.After(time.Now()) {
		return nil, models.ErrInvalidDate
	}

	event := models.Event{
		EventID:        utils.GenerateID(),
		EventName:      req.EventName,
		EventDate:      date,
		EventTime:      req.EventTime,
		EventLocation:  req.EventLocation,
		AmountRange:    req.AmountRange,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.TotalSeats,
		BookedSeats:    0,
		OwnerID:        ownerID,
		CreatedAt:      time.Now(),
	}
	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.Logger.Info("EVENT", fmt.Sprintf("Created event %s (%s) with %d seats", event.EventID, event.EventName, event.TotalSeats))
	return &event, nil
}

// ListForAdmin returns the events owned by the calling admin.
func (s *Service) ListForAdmin(ctx context.Context, adminID string) ([]models.Event, error) {
	return s.DB.GetEventsByOwner(ctx, adminID)
}

// ListForUser returns the events at the caller's registered location. Users
// who never set a location cannot browse.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]models.Event, error) {
	loc, err := s.Locations.GetLocation(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up location: %w", err)
	}
	if loc == nil {
		return nil, models.ErrLocationRequired
	}
	return s.DB.GetEventsByLocation(ctx, loc.Location)
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.Event, error) {
	return s.DB.GetEventByID(ctx, id)
}

// Update merges the supplied descriptive fields onto the event. Absent and
// foreign events look the same to the caller.
func (s *Service) Update(ctx context.Context, adminID, id string, req models.UpdateEventRequest) (*models.Event, error) {
	event, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.OwnerID != adminID {
		return nil, models.ErrEventNotFound
	}

	if req.EventName != nil {
		event.EventName = *req.EventName
	}
	if req.EventDate != nil {
		date, err := utils.ParseEventDate(*req.EventDate)
		if err != nil {
			return nil, fmt.Errorf("%w: eventdate is not a valid date", models.ErrInvalidInput)
		}
		if !date.After(time.Now()) {
			return nil, models.ErrInvalidDate
		}
		event.EventDate = date
	}
	if req.EventTime != nil {
		if !utils.ValidEventTime(*req.EventTime) {
			return nil, fmt.Errorf("%w: eventtime must match HH:MM:SS", models.ErrInvalidInput)
		}
		event.EventTime = *req.EventTime
	}
	if req.EventLocation != nil {
		event.EventLocation = *req.EventLocation
	}
	if req.AmountRange != nil {
		if *req.AmountRange < 1 {
			return nil, fmt.Errorf("%w: amountrange must be at least 1", models.ErrInvalidInput)
		}
		event.AmountRange = *req.AmountRange
	}

	if err := s.DB.UpdateEvent(ctx, *event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	s.Logger.Info("EVENT", fmt.Sprintf("Updated event %s", event.EventID))
	return event, nil
}

// Delete removes an owned event. Events with live bookings are protected
// so bookings never end up referencing a deleted event.
func (s *Service) Delete(ctx context.Context, adminID, id string) error {
	event, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		return err
	}
	if event.OwnerID != adminID {
		return models.ErrEventNotFound
	}

	count, err := s.DB.CountBookingsForEvent(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count bookings: %w", err)
	}
	if count > 0 {
		return models.ErrEventHasBookings
	}

	if err := s.DB.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	s.Logger.Info("EVENT", fmt.Sprintf("Deleted event %s", id))
	return nil
}
