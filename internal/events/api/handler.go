package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-booking/internal/auth"
	"ms-booking/internal/events"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/utils"
)

type Handler struct {
	EventService *events.Service
	Logger       *logger.Logger
}

func NewHandler(service *events.Service, log *logger.Logger) *Handler {
	return &Handler{EventService: service, Logger: log}
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, fmt.Errorf("%w: %v", models.ErrInvalidInput, err))
		return
	}

	event, err := h.EventService.Create(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateEvent: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, "event created successfully", event)
}

// ListEvents branches on role: admins see their own events, users see the
// events at their registered location.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	var (
		list []models.Event
		err  error
	)
	if auth.UserRole(r.Context()) == models.RoleAdmin {
		list, err = h.EventService.ListForAdmin(r.Context(), auth.UserID(r.Context()))
	} else {
		list, err = h.EventService.ListForUser(r.Context(), auth.UserID(r.Context()))
	}
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEvents: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, "events retrieved", list)
}

func (h *Handler) ListEventsForLocation(w http.ResponseWriter, r *http.Request) {
	list, err := h.EventService.ListForUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEventsForLocation: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, "events retrieved", list)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")
	if !utils.ValidID(eventID) {
		utils.WriteError(w, fmt.Errorf("%w: id must be a 24-character hex string", models.ErrInvalidInput))
		return
	}

	event, err := h.EventService.GetByID(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetEvent: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, "event retrieved", event)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")
	if !utils.ValidID(eventID) {
		utils.WriteError(w, fmt.Errorf("%w: id must be a 24-character hex string", models.ErrInvalidInput))
		return
	}

	var req models.UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, fmt.Errorf("%w: %v", models.ErrInvalidInput, err))
		return
	}

	event, err := h.EventService.Update(r.Context(), auth.UserID(r.Context()), eventID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateEvent: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, "event updated successfully", event)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")
	if !utils.ValidID(eventID) {
		utils.WriteError(w, fmt.Errorf("%w: id must be a 24-character hex string", models.ErrInvalidInput))
		return
	}

	if err := h.EventService.Delete(r.Context(), auth.UserID(r.Context()), eventID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteEvent: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, "event deleted successfully", nil)
}
