package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-booking/internal/auth"
	"ms-booking/internal/bookings"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/utils"
)

type Handler struct {
	BookingService *bookings.Service
	Logger         *logger.Logger
}

func NewHandler(service *bookings.Service, log *logger.Logger) *Handler {
	return &Handler{BookingService: service, Logger: log}
}

func (h *Handler) BookEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")
	if !utils.ValidID(eventID) {
		utils.WriteError(w, fmt.Errorf("%w: id must be a 24-character hex string", models.ErrInvalidInput))
		return
	}

	var req models.BookSeatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, fmt.Errorf("%w: %v", models.ErrInvalidInput, err))
		return
	}

	resp, err := h.BookingService.Book(r.Context(), auth.UserID(r.Context()), eventID, req.NumSeats)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("BookEvent: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, "event booked successfully", resp)
}

func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	list, err := h.BookingService.ListForUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListBookings: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, "bookings retrieved", list)
}

func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")
	if !utils.ValidID(bookingID) {
		utils.WriteError(w, fmt.Errorf("%w: id must be a 24-character hex string", models.ErrInvalidInput))
		return
	}

	var req models.BookSeatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, fmt.Errorf("%w: %v", models.ErrInvalidInput, err))
		return
	}

	booking, changed, err := h.BookingService.Update(r.Context(), auth.UserID(r.Context()), bookingID, req.NumSeats)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateBooking: %v", err))
		utils.WriteError(w, err)
		return
	}

	message := "booking updated successfully"
	if !changed {
		message = "no changes made to the booking"
	}
	utils.WriteJSON(w, http.StatusOK, message, booking)
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")
	if !utils.ValidID(bookingID) {
		utils.WriteError(w, fmt.Errorf("%w: id must be a 24-character hex string", models.ErrInvalidInput))
		return
	}

	if err := h.BookingService.Cancel(r.Context(), auth.UserID(r.Context()), bookingID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CancelBooking: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, "booking cancelled successfully", nil)
}
