package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"ms-booking/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- USERS ----------------

func (d *DB) CreateUser(ctx context.Context, user models.User) error {
	_, err := d.Bun.NewInsert().Model(&user).Exec(ctx)
	return err
}

// GetUserByUsername returns nil, nil when the username is unknown so the
// service can collapse unknown-user and bad-password into one generic error.
func (d *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("username = ?", username).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ---------------- SESSION LOG ----------------

func (d *DB) GetSession(ctx context.Context, userID string) (*models.SessionLog, error) {
	var session models.SessionLog
	err := d.Bun.NewSelect().
		Model(&session).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpsertSession overwrites a user's session record in place, so a user never
// accumulates more than one row regardless of how often they log in.
func (d *DB) UpsertSession(ctx context.Context, session models.SessionLog) error {
	_, err := d.Bun.NewInsert().
		Model(&session).
		On("CONFLICT (user_id) DO UPDATE").
		Set("token = EXCLUDED.token").
		Set("login_time = EXCLUDED.login_time").
		Set("logout_time = EXCLUDED.logout_time").
		Exec(ctx)
	return err
}

// ClearSession nulls the stored token and stamps the logout time. The row is
// reset, not deleted: the log lives as long as the account does.
func (d *DB) ClearSession(ctx context.Context, userID string, logoutTime time.Time) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.SessionLog)(nil)).
		Set("token = NULL").
		Set("logout_time = ?", logoutTime).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}
