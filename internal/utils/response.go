package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ms-booking/internal/models"
)

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func ErrorResponse(message, error string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     error,
		Timestamp: time.Now(),
	}
}

// WriteJSON writes a success envelope with the given status code.
func WriteJSON(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(SuccessResponse(message, data))
}

// WriteError maps a service error onto an HTTP status and writes the error
// envelope. Unrecognized errors are treated as persistence failures and
// surfaced with the underlying error text.
func WriteError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusFor(err))
	_ = json.NewEncoder(w).Encode(ErrorResponse(http.StatusText(StatusFor(err)), err.Error()))
}

// StatusFor resolves a service error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrInvalidDate),
		errors.Is(err, models.ErrUsernameTaken):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, models.ErrInvalidToken),
		errors.Is(err, models.ErrNoActiveSession):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrFullyBooked),
		errors.Is(err, models.ErrEventBusy),
		errors.Is(err, models.ErrLocationAlreadySet),
		errors.Is(err, models.ErrEventHasBookings),
		errors.Is(err, &models.CapacityError{}):
		return http.StatusConflict
	case errors.Is(err, models.ErrLocationRequired):
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}
