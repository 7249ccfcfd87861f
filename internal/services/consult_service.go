package services

import (
	"context"
	"errors"

	"nomad-health-backend/internal/ai"
	"nomad-health-backend/internal/apperr"
	"nomad-health-backend/internal/models"
	"nomad-health-backend/internal/store"
	"nomad-health-backend/internal/upload"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// welcomeMessage seeds every new session as its first, system-authored turn.
const welcomeMessage = "欢迎使用牧民健康智能问诊系统，请描述您的健康问题，我会尽力为您提供专业建议。"

// apologyMessage replaces the AI reply when the QA upstream fails; the turn
// itself still succeeds.
const apologyMessage = "很抱歉，我暂时无法回答您的问题"

// Defaults for QA generation parameters.
const (
	defaultLanguage    = "chinese"
	defaultMaxTokens   = 1024
	defaultTemperature = 0.7
)

// ConsultService owns the consultation session and message lifecycle: it
// authorizes access, sequences the turn-taking protocol and absorbs QA
// upstream failures into degraded replies.
type ConsultService struct {
	store       store.Store
	qa          ai.QAClient
	transcriber ai.Transcriber
	uploads     *upload.Store
}

func NewConsultService(s store.Store, qa ai.QAClient, transcriber ai.Transcriber, uploads *upload.Store) *ConsultService {
	return &ConsultService{store: s, qa: qa, transcriber: transcriber, uploads: uploads}
}

func mapMessage(m *models.ConsultMessage) models.MessageResponse {
	return models.MessageResponse{
		ID:          m.ID,
		SessionID:   m.SessionID,
		SenderType:  m.SenderType,
		Content:     m.Content,
		ContentType: m.ContentType,
		MediaURL:    m.MediaURL,
		CreatedAt:   m.CreatedAt,
	}
}

func mapSession(s *models.ConsultSession, messages []models.ConsultMessage) *models.SessionResponse {
	resp := &models.SessionResponse{
		ID:          s.ID,
		UserID:      s.UserID,
		Title:       s.Title,
		Description: s.Description,
		Status:      s.Status,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	for i := range messages {
		resp.Messages = append(resp.Messages, mapMessage(&messages[i]))
	}
	return resp
}

// resolveSession loads an owned, existing session or returns the uniform
// not-found error. Sessions owned by other users are reported as absent.
func (s *ConsultService) resolveSession(ctx context.Context, userID, sessionID uuid.UUID) (*models.ConsultSession, error) {
	sess, err := s.store.GetSessionByID(ctx, sessionID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.E(apperr.KindNotFound, "not_found", "问诊会话不存在")
		}
		return nil, apperr.Wrap(apperr.KindPersistence, "server_error", err)
	}
	return sess, nil
}

// CreateSession opens a session seeded with the system welcome message and
// returns it including the message list.
func (s *ConsultService) CreateSession(ctx context.Context, userID uuid.UUID, req models.CreateSessionRequest) (*models.SessionResponse, error) {
	if req.Title == "" {
		return nil, apperr.E(apperr.KindValidation, "param_error", "")
	}

	sess, err := s.store.CreateSession(ctx, store.CreateSessionParams{
		ID:             uuid.New(),
		UserID:         userID,
		Title:          req.Title,
		Description:    req.Description,
		WelcomeContent: welcomeMessage,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "server_error", err)
	}

	messages, err := s.store.ListMessagesBySession(ctx, sess.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "server_error", err)
	}
	return mapSession(sess, messages), nil
}

// GetSession returns an owned session with its messages in creation order.
func (s *ConsultService) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*models.SessionResponse, error) {
	sess, err := s.resolveSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	messages, err := s.store.ListMessagesBySession(ctx, sess.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "server_error", err)
	}
	return mapSession(sess, messages), nil
}

// ListSessions returns the user's sessions ordered by last update, newest
// first. An unrecognized status filter is rejected.
func (s *ConsultService) ListSessions(ctx context.Context, userID uuid.UUID, status string) ([]models.SessionResponse, error) {
	var filter *string
	if status != "" {
		if status != models.SessionStatusActive && status != models.SessionStatusClosed {
			return nil, apperr.E(apperr.KindValidation, "param_error", "无效的会话状态")
		}
		filter = &status
	}

	sessions, err := s.store.ListSessionsByUser(ctx, userID, filter)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "server_error", err)
	}

	result := []models.SessionResponse{}
	for i := range sessions {
		result = append(result, *mapSession(&sessions[i], nil))
	}
	return result, nil
}

// UpdateSession applies a partial update. A status value outside
// active/closed is silently dropped while the rest of the patch still lands;
// clients have depended on that leniency. A patch with no fields at all is
// rejected.
func (s *ConsultService) UpdateSession(ctx context.Context, userID, sessionID uuid.UUID, req models.UpdateSessionRequest) (*models.SessionResponse, error) {
	if req.Title == nil && req.Description == nil && req.Status == nil {
		return nil, apperr.E(apperr.KindValidation, "param_error", "")
	}

	status := req.Status
	if status != nil && *status != models.SessionStatusActive && *status != models.SessionStatusClosed {
		status = nil
	}

	sess, err := s.store.UpdateSession(ctx, store.UpdateSessionParams{
		ID:          sessionID,
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.E(apperr.KindNotFound, "not_found", "问诊会话不存在")
		}
		return nil, apperr.Wrap(apperr.KindPersistence, "server_error", err)
	}
	return mapSession(sess, nil), nil
}

// SendMessage runs one consultation turn: persist the user's message, query
// the medical model, persist the reply. The user message is durable before
// the upstream call is attempted, and a QA failure degrades to the apology
// reply instead of failing the turn.
func (s *ConsultService) SendMessage(ctx context.Context, userID, sessionID uuid.UUID, req models.SendMessageRequest) (*models.SendMessageResponse, error) {
	sess, err := s.resolveSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != models.SessionStatusActive {
		return nil, apperr.E(apperr.KindInvalidState, "param_error", "会话已关闭，无法发送消息")
	}
	if req.Content == "" {
		return nil, apperr.E(apperr.KindValidation, "param_error", "")
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = models.ContentText
	}
	language := req.Language
	if language == "" {
		language = defaultLanguage
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	userMsg, err := s.store.AppendMessage(ctx, store.AppendMessageParams{
		ID:          uuid.New(),
		SessionID:   sess.ID,
		SenderType:  models.SenderUser,
		Content:     req.Content,
		ContentType: contentType,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "server_error", err)
	}

	result := s.qa.Query(ctx, req.Content, language, maxTokens, temperature)
	aiContent := result.Response
	if !result.OK {
		logrus.WithField("session_id", sess.ID).Warn("medical QA failed, replying with apology")
		aiContent = apologyMessage
	}

	aiMsg, err := s.store.AppendMessage(ctx, store.AppendMessageParams{
		ID:          uuid.New(),
		SessionID:   sess.ID,
		SenderType:  models.SenderAI,
		Content:     aiContent,
		ContentType: models.ContentText,
	})
	if err != nil {
		// The user's message is already committed and stays committed.
		return nil, apperr.Wrap(apperr.KindPersistence, "server_error", err)
	}

	return &models.SendMessageResponse{
		UserMessage: mapMessage(userMsg),
		AIMessage:   mapMessage(aiMsg),
		TimeTaken:   result.TimeTaken,
	}, nil
}

// TranscribeAndAppend stores the uploaded audio, transcribes it and appends
// the recognized text as a user message. Transcription failure is hard: with
// no text there is nothing to fall back to.
func (s *ConsultService) TranscribeAndAppend(ctx context.Context, userID, sessionID uuid.UUID, filename string, audio []byte) (*models.AudioMessageResponse, error) {
	sess, err := s.resolveSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != models.SessionStatusActive {
		return nil, apperr.E(apperr.KindInvalidState, "param_error", "会话已关闭，无法发送消息")
	}
	if len(audio) == 0 {
		return nil, apperr.E(apperr.KindValidation, "no_file_selected", "")
	}
	if !upload.Allowed(filename, "mp3", "wav") {
		return nil, apperr.E(apperr.KindValidation, "unsupported_file_type", "")
	}

	relPath, err := s.uploads.Save("audio", filename, audio)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "server_error", err)
	}
	fileURL := s.uploads.URL(relPath)

	result := s.transcriber.Transcribe(ctx, audio, upload.Ext(filename))
	if !result.OK {
		return nil, apperr.E(apperr.KindUpstreamFailure, "server_error", "语音识别失败: "+result.Reason)
	}

	msg, err := s.store.AppendMessage(ctx, store.AppendMessageParams{
		ID:          uuid.New(),
		SessionID:   sess.ID,
		SenderType:  models.SenderUser,
		Content:     result.Text,
		ContentType: models.ContentAudio,
		MediaURL:    &fileURL,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "server_error", err)
	}

	return &models.AudioMessageResponse{
		Text:     result.Text,
		AudioURL: fileURL,
		Message:  mapMessage(msg),
	}, nil
}

// DirectQA answers a medical question without a session. Unlike the
// in-session turn, an upstream failure here is surfaced to the caller.
func (s *ConsultService) DirectQA(ctx context.Context, req models.MedicalQARequest) (*models.MedicalQAResponse, error) {
	if req.Query == "" {
		return nil, apperr.E(apperr.KindValidation, "param_error", "缺少必要的查询参数")
	}

	language := req.Language
	if language == "" {
		language = defaultLanguage
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	result := s.qa.Query(ctx, req.Query, language, maxTokens, temperature)
	if !result.OK {
		return nil, apperr.E(apperr.KindUpstreamUnavailable, "ai_service_error", result.Response)
	}

	return &models.MedicalQAResponse{Response: result.Response, TimeTaken: result.TimeTaken}, nil
}
