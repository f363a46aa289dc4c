package locations

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ms-booking/internal/auth"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/utils"
)

type Handler struct {
	Service *Service
	Logger  *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) SetLocation(w http.ResponseWriter, r *http.Request) {
	var req models.SetLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, fmt.Errorf("%w: %v", models.ErrInvalidInput, err))
		return
	}

	loc, err := h.Service.SetLocation(r.Context(), auth.UserID(r.Context()), req.Location)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("SetLocation: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, "location saved successfully", loc)
}
