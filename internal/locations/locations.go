// Package locations is the one-time per-user location registry that gates
// event browsing for non-admin users.
package locations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"ms-booking/internal/logger"
	"ms-booking/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetLocation(ctx context.Context, userID string) (*models.Location, error) {
	var loc models.Location
	err := d.Bun.NewSelect().
		Model(&loc).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (d *DB) CreateLocation(ctx context.Context, loc models.Location) error {
	_, err := d.Bun.NewInsert().Model(&loc).Exec(ctx)
	return err
}

type DBLayer interface {
	GetLocation(ctx context.Context, userID string) (*models.Location, error)
	CreateLocation(ctx context.Context, loc models.Location) error
}

type Service struct {
	DB     DBLayer
	Logger *logger.Logger
}

func NewService(db DBLayer, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log}
}

// SetLocation registers a user's location once. There is no update path:
// a second attempt is rejected.
func (s *Service) SetLocation(ctx context.Context, userID, location string) (*models.Location, error) {
	if len(location) < 2 || len(location) > 60 {
		return nil, fmt.Errorf("%w: location must be between 2 and 60 characters", models.ErrInvalidInput)
	}

	existing, err := s.DB.GetLocation(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up location: %w", err)
	}
	if existing != nil {
		return nil, models.ErrLocationAlreadySet
	}

	loc := models.Location{
		UserID:    userID,
		Location:  location,
		CreatedAt: time.Now(),
	}
	if err := s.DB.CreateLocation(ctx, loc); err != nil {
		return nil, fmt.Errorf("failed to save location: %w", err)
	}

	s.Logger.Info("LOCATION", fmt.Sprintf("User %s registered location %q", userID, location))
	return &loc, nil
}

// GetLocation exposes the read side for the event browsing gate.
func (s *Service) GetLocation(ctx context.Context, userID string) (*models.Location, error) {
	return s.DB.GetLocation(ctx, userID)
}
