package auth

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"ms-booking/internal/models"
)

// bearerPattern enforces the three-part dot-separated token shape before any
// cryptographic verification happens.
var bearerPattern = regexp.MustCompile(`^Bearer [A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+$`)

type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 JWT binding the user id and role with an expiry.
func IssueToken(secret string, userID string, role models.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyToken checks signature and expiry and returns the embedded identity.
func VerifyToken(secret, tokenString string) (userID string, role models.Role, err error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", "", models.ErrInvalidToken
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return "", "", models.ErrInvalidToken
	}
	return claims.Subject, claims.Role, nil
}

// ExtractTokenFromRequest pulls the raw JWT out of the Authorization header.
// The header must match "Bearer <b64>.<b64>.<b64>" exactly.
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header is missing")
	}
	if !bearerPattern.MatchString(authHeader) {
		return "", errors.New("authorization header format must be 'Bearer {token}'")
	}
	return authHeader[len("Bearer "):], nil
}
