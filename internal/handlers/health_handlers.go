package handlers

import (
	"encoding/json"
	"net/http"

	"nomad-health-backend/internal/auth"
	"nomad-health-backend/internal/models"
	"nomad-health-backend/internal/services"
	"nomad-health-backend/pkg/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type HealthReportHandler struct {
	healthService *services.HealthService
}

func NewHealthReportHandler(healthSvc *services.HealthService) *HealthReportHandler {
	return &HealthReportHandler{healthService: healthSvc}
}

func reportID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "reportID"))
	return id, err == nil
}

// HandleCreateReport handles POST /v1/health/reports.
func (h *HealthReportHandler) HandleCreateReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.Respond(w, r, http.StatusUnauthorized, "auth_failed", nil)
		return
	}

	var req models.CreateHealthReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Respond(w, r, http.StatusBadRequest, "param_error", nil)
		return
	}
	defer r.Body.Close()

	report, err := h.healthService.CreateReport(r.Context(), userID, req)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.Respond(w, r, http.StatusOK, "success", report)
}

// HandleListReports handles GET /v1/health/reports.
func (h *HealthReportHandler) HandleListReports(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.Respond(w, r, http.StatusUnauthorized, "auth_failed", nil)
		return
	}

	reports, err := h.healthService.ListReports(r.Context(), userID)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.Respond(w, r, http.StatusOK, "success", reports)
}

// HandleGetReport handles GET /v1/health/reports/{reportID}.
func (h *HealthReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.Respond(w, r, http.StatusUnauthorized, "auth_failed", nil)
		return
	}

	id, ok := reportID(r)
	if !ok {
		httputil.Respond(w, r, http.StatusBadRequest, "param_error", nil)
		return
	}

	report, err := h.healthService.GetReport(r.Context(), userID, id)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.Respond(w, r, http.StatusOK, "success", report)
}

// HandleUpdateReport handles PUT /v1/health/reports/{reportID}.
func (h *HealthReportHandler) HandleUpdateReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.Respond(w, r, http.StatusUnauthorized, "auth_failed", nil)
		return
	}

	id, ok := reportID(r)
	if !ok {
		httputil.Respond(w, r, http.StatusBadRequest, "param_error", nil)
		return
	}

	var req models.UpdateHealthReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Respond(w, r, http.StatusBadRequest, "param_error", nil)
		return
	}
	defer r.Body.Close()

	report, err := h.healthService.UpdateReport(r.Context(), userID, id, req)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.Respond(w, r, http.StatusOK, "update_success", report)
}

// HandleDeleteReport handles DELETE /v1/health/reports/{reportID}.
func (h *HealthReportHandler) HandleDeleteReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.Respond(w, r, http.StatusUnauthorized, "auth_failed", nil)
		return
	}

	id, ok := reportID(r)
	if !ok {
		httputil.Respond(w, r, http.StatusBadRequest, "param_error", nil)
		return
	}

	if err := h.healthService.DeleteReport(r.Context(), userID, id); err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.Respond(w, r, http.StatusOK, "delete_success", nil)
}
