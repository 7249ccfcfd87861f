package handlers

import (
	"encoding/json"
	"net/http"

	"nomad-health-backend/internal/models"
	"nomad-health-backend/internal/services"
	"nomad-health-backend/pkg/httputil"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authSvc *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authSvc}
}

// HandleRegister handles POST /v1/auth/register.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Respond(w, r, http.StatusBadRequest, "param_error", nil)
		return
	}
	defer r.Body.Close()

	user, err := h.authService.Register(r.Context(), req)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.Respond(w, r, http.StatusOK, "register_success", user)
}

// HandleLogin handles POST /v1/auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Respond(w, r, http.StatusBadRequest, "param_error", nil)
		return
	}
	defer r.Body.Close()

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.Respond(w, r, http.StatusOK, "login_success", resp)
}
