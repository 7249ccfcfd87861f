package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"nomad-health-backend/internal/auth"
	"nomad-health-backend/internal/models"
	"nomad-health-backend/internal/services"
	"nomad-health-backend/pkg/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxAudioUpload caps one uploaded voice clip.
const maxAudioUpload = 16 << 20 // 16MB

type ConsultHandler struct {
	consultService *services.ConsultService
}

func NewConsultHandler(consultSvc *services.ConsultService) *ConsultHandler {
	return &ConsultHandler{consultService: consultSvc}
}

// sessionID extracts and validates the session ID path parameter.
func sessionID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	return id, err == nil
}

// HandleCreateSession handles POST /v1/consult/sessions.
func (h *ConsultHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.Respond(w, r, http.StatusUnauthorized, "auth_failed", nil)
		return
	}

	var req models.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Respond(w, r, http.StatusBadRequest, "param_error", nil)
		return
	}
	defer r.Body.Close()

	sess, err := h.consultService.CreateSession(r.Context(), userID, req)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.Respond(w, r, http.StatusOK, "success", sess)
}

// HandleListSessions handles GET /v1/consult/sessions with an optional
// status query parameter.
func (h *ConsultHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.Respond(w, r, http.StatusUnauthorized, "auth_failed", nil)
		return
	}

	sessions, err := h.consultService.ListSessions(r.Context(), userID, r.URL.Query().Get("status"))
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.Respond(w, r, http.StatusOK, "success", sessions)
}

// HandleGetSession handles GET /v1/consult/sessions/{sessionID}.
func (h *ConsultHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.Respond(w, r, http.StatusUnauthorized, "auth_failed", nil)
		return
	}

	id, ok := sessionID(r)
	if !ok {
		httputil.Respond(w, r, http.StatusBadRequest, "param_error", nil)
		return
	}

	sess, err := h.consultService.GetSession(r.Context(), userID, id)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.Respond(w, r, http.StatusOK, "success", sess)
}

// HandleUpdateSession handles PUT /v1/consult/sessions/{sessionID}.
func (h *ConsultHandler) HandleUpdateSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.Respond(w, r, http.StatusUnauthorized, "auth_failed", nil)
		return
	}

	id, ok := sessionID(r)
	if !ok {
		httputil.Respond(w, r, http.StatusBadRequest, "param_error", nil)
		return
	}

	var req models.UpdateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Respond(w, r, http.StatusBadRequest, "param_error", nil)
		return
	}
	defer r.Body.Close()

	sess, err := h.consultService.UpdateSession(r.Context(), userID, id, req)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.Respond(w, r, http.StatusOK, "update_success", sess)
}

// HandleSendMessage handles POST /v1/consult/sessions/{sessionID}/messages:
// one text consultation turn.
func (h *ConsultHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.Respond(w, r, http.StatusUnauthorized, "auth_failed", nil)
		return
	}

	id, ok := sessionID(r)
	if !ok {
		httputil.Respond(w, r, http.StatusBadRequest, "param_error", nil)
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Respond(w, r, http.StatusBadRequest, "param_error", nil)
		return
	}
	defer r.Body.Close()

	resp, err := h.consultService.SendMessage(r.Context(), userID, id, req)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.Respond(w, r, http.StatusOK, "success", resp)
}

// HandleUploadAudio handles POST /v1/consult/sessions/{sessionID}/audio:
// a multipart voice clip that is stored, transcribed and appended as a turn.
func (h *ConsultHandler) HandleUploadAudio(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.Respond(w, r, http.StatusUnauthorized, "auth_failed", nil)
		return
	}

	id, ok := sessionID(r)
	if !ok {
		httputil.Respond(w, r, http.StatusBadRequest, "param_error", nil)
		return
	}

	if err := r.ParseMultipartForm(maxAudioUpload); err != nil {
		httputil.Respond(w, r, http.StatusBadRequest, "param_error", nil)
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		httputil.Respond(w, r, http.StatusBadRequest, "no_file_selected", nil)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		httputil.Respond(w, r, http.StatusBadRequest, "no_file_selected", nil)
		return
	}

	audio, err := io.ReadAll(file)
	if err != nil {
		httputil.Respond(w, r, http.StatusInternalServerError, "server_error", nil)
		return
	}

	resp, err := h.consultService.TranscribeAndAppend(r.Context(), userID, id, header.Filename, audio)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.Respond(w, r, http.StatusOK, "success", resp)
}

// HandleMedicalQA handles POST /v1/consult/medical-qa: a direct question
// without a session.
func (h *ConsultHandler) HandleMedicalQA(w http.ResponseWriter, r *http.Request) {
	var req models.MedicalQARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Respond(w, r, http.StatusBadRequest, "param_error", nil)
		return
	}
	defer r.Body.Close()

	resp, err := h.consultService.DirectQA(r.Context(), req)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.Respond(w, r, http.StatusOK, "success", resp)
}
