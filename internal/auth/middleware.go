package auth

import (
	"context"
	"fmt"
	"net/http"

	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/utils"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "role"
)

// SessionGate exposes the currently honoured token per user. The middleware
// cross-checks every presented JWT against it: a signature-valid, unexpired
// token is still rejected if it is not the stored one, which is what makes
// logout and a superseding login actually revoke older tokens.
type SessionGate interface {
	ActiveToken(ctx context.Context, userID string) (string, error)
}

// Middleware authenticates every request on the wrapped routes: structural
// bearer check, JWT verification, then the session cross-check. On success
// the user's id and role are placed in the request context.
func Middleware(secret string, sessions SessionGate, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				utils.WriteError(w, fmt.Errorf("%w: %v", models.ErrInvalidInput, err))
				return
			}

			userID, role, err := VerifyToken(secret, rawToken)
			if err != nil {
				log.LogSecurity("TOKEN_REJECTED", fmt.Sprintf("%s %s: %v", r.Method, r.URL.Path, err))
				utils.WriteError(w, err)
				return
			}

			activeToken, err := sessions.ActiveToken(r.Context(), userID)
			if err != nil {
				utils.WriteError(w, err)
				return
			}
			if activeToken == "" || activeToken != rawToken {
				log.LogSecurity("STALE_SESSION", fmt.Sprintf("user %s presented a token that is not the active session", userID))
				utils.WriteError(w, models.ErrNoActiveSession)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, roleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route group on a single role.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserRole(r.Context()) != role {
				utils.WriteError(w, models.ErrAccessDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserID extracts the authenticated user's id from the request context.
func UserID(ctx context.Context) string {
	if uid, ok := ctx.Value(userIDKey).(string); ok {
		return uid
	}
	return ""
}

// UserRole extracts the authenticated user's role from the request context.
func UserRole(ctx context.Context) models.Role {
	if role, ok := ctx.Value(roleKey).(models.Role); ok {
		return role
	}
	return ""
}
