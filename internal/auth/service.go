package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"ms-booking/internal/kafka"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/utils"
)

type DBLayer interface {
	CreateUser(ctx context.Context, user models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetSession(ctx context.Context, userID string) (*models.SessionLog, error)
	UpsertSession(ctx context.Context, session models.SessionLog) error
	ClearSession(ctx context.Context, userID string, logoutTime time.Time) error
}

type TokenCache interface {
	Get(ctx context.Context, userID string) (string, error)
	Set(ctx context.Context, userID, token string, ttl time.Duration) error
	Delete(ctx context.Context, userID string) error
}

type Publisher interface {
	Publish(topic, key string, value []byte) error
}

type Service struct {
	DB     DBLayer
	Cache  TokenCache
	Kafka  Publisher
	Logger *logger.Logger

	secret   string
	tokenTTL time.Duration
}

func NewService(db DBLayer, cache TokenCache, producer Publisher, log *logger.Logger, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		DB:       db,
		Cache:    cache,
		Kafka:    producer,
		Logger:   log,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if req.Username == "" || req.Password == "" || req.Email == "" || !req.Role.Valid() {
		return nil, fmt.Errorf("%w: username, password, email and role are required", models.ErrInvalidInput)
	}

	existing, err := s.DB.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, models.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		UserID:       utils.GenerateID(),
		Username:     req.Username,
		PasswordHash: string(hash),
		Email:        req.Email,
		Role:         req.Role,
		CreatedAt:    time.Now(),
	}
	if err := s.DB.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.Logger.Info("AUTH", fmt.Sprintf("Registered user %s with role %s", user.Username, user.Role))
	return &user, nil
}

// Login verifies credentials, issues a fresh token and overwrites the user's
// session record in place. An unknown username and a wrong password surface
// as the same error so callers cannot probe which usernames exist.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (string, error) {
	user, err := s.DB.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return "", models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", models.ErrInvalidCredentials
	}

	token, err := IssueToken(s.secret, user.UserID, user.Role, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	session := models.SessionLog{
		UserID:     user.UserID,
		Token:      token,
		LoginTime:  time.Now(),
		LogoutTime: nil,
	}
	if err := s.DB.UpsertSession(ctx, session); err != nil {
		return "", fmt.Errorf("failed to record session: %w", err)
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, user.UserID, token, s.tokenTTL); err != nil {
			s.Logger.Warn("AUTH", fmt.Sprintf("Session cache write failed for user %s: %v", user.UserID, err))
		}
	}

	s.publishSessionEvent(kafka.TopicSessionLogin, user.UserID)
	s.Logger.Info("AUTH", fmt.Sprintf("User %s logged in", user.Username))
	return token, nil
}

// Logout clears the stored session token for the token's user. A second
// logout with the same token finds no active session and fails.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	userID, _, err := VerifyToken(s.secret, tokenString)
	if err != nil {
		return err
	}

	session, err := s.DB.GetSession(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if !session.Active() {
		return models.ErrNoActiveSession
	}

	if err := s.DB.ClearSession(ctx, userID, time.Now()); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	if s.Cache != nil {
		if err := s.Cache.Delete(ctx, userID); err != nil {
			s.Logger.Warn("AUTH", fmt.Sprintf("Session cache delete failed for user %s: %v", userID, err))
		}
	}

	s.publishSessionEvent(kafka.TopicSessionLogout, userID)
	s.Logger.Info("AUTH", fmt.Sprintf("User %s logged out", userID))
	return nil
}

// ActiveToken returns the currently honoured token for a user, consulting
// the cache first and falling back to the session table. Returns "" when no
// session is active.
func (s *Service) ActiveToken(ctx context.Context, userID string) (string, error) {
	if s.Cache != nil {
		token, err := s.Cache.Get(ctx, userID)
		if err != nil {
			s.Logger.Warn("AUTH", fmt.Sprintf("Session cache read failed for user %s: %v", userID, err))
		} else if token != "" {
			return token, nil
		}
	}

	session, err := s.DB.GetSession(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	if !session.Active() {
		return "", nil
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, userID, session.Token, s.tokenTTL); err != nil {
			s.Logger.Warn("AUTH", fmt.Sprintf("Session cache backfill failed for user %s: %v", userID, err))
		}
	}
	return session.Token, nil
}

func (s *Service) publishSessionEvent(topic, userID string) {
	if s.Kafka == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"user_id":   userID,
		"timestamp": time.Now().UTC(),
	})
	if err != nil {
		return
	}
	if err := s.Kafka.Publish(topic, userID, payload); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("Failed to publish %s event: %v", topic, err))
	}
}
