package api

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
	AuthService *auth.Service
	Logger      *logger.Logger
}

func NewHandler(service *auth.Service, log *logger.Logger) *Handler {
	return &Handler{AuthService: service, Logger: log}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, fmt.Errorf("%w: %v", models.ErrInvalidInput, err))
		return
	}

	user, err := h.AuthService.Register(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Register: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, "user created successfully", map[string]string{
		"user_id": user.UserID,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, fmt.Errorf("%w: %v", models.ErrInvalidInput, err))
		return
	}

	token, err := h.AuthService.Login(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Login: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, "login successful", models.LoginResponse{Token: token})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	rawToken, err := auth.ExtractTokenFromRequest(r)
	if err != nil {
		utils.WriteError(w, fmt.Errorf("%w: %v", models.ErrInvalidInput, err))
		return
	}

	if err := h.AuthService.Logout(r.Context(), rawToken); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Logout: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, "user logged out successfully", nil)
}
