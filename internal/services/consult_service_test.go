package services

import (
	"context"
	"testing"

	"nomad-health-backend/internal/ai"
	"nomad-health-backend/internal/apperr"
	"nomad-health-backend/internal/models"
	"nomad-health-backend/internal/upload"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubQAClient returns a fixed result and records the last query.
type stubQAClient struct {
	result    ai.QAResult
	lastQuery string
	lastLang  string
	calls     int
}

func (s *stubQAClient) Query(_ context.Context, query, language string, _ int, _ float64) ai.QAResult {
	s.calls++
	s.lastQuery = query
	s.lastLang = language
	return s.result
}

// stubTranscriber returns a fixed transcription result.
type stubTranscriber struct {
	result ai.TranscriptionResult
	calls  int
}

func (s *stubTranscriber) Transcribe(_ context.Context, _ []byte, _ string) ai.TranscriptionResult {
	s.calls++
	return s.result
}

func newTestConsultService(t *testing.T, qa ai.QAClient, tr ai.Transcriber) (*ConsultService, *memStore) {
	t.Helper()
	ms := newMemStore()
	uploads := upload.NewStore(t.TempDir(), "http://127.0.0.1:8080")
	return NewConsultService(ms, qa, tr, uploads), ms
}

func TestCreateSessionSeedsWelcomeMessage(t *testing.T) {
	svc, _ := newTestConsultService(t, &stubQAClient{}, &stubTranscriber{})
	userID := uuid.New()

	sess, err := svc.CreateSession(context.Background(), userID, models.CreateSessionRequest{Title: "头痛咨询"})
	require.NoError(t, err)

	assert.Equal(t, userID, sess.UserID)
	assert.Equal(t, models.SessionStatusActive, sess.Status)
	require.Len(t, sess.Messages, 1)
	assert.Equal(t, models.SenderSystem, sess.Messages[0].SenderType)
	assert.Equal(t, welcomeMessage, sess.Messages[0].Content)
}

func TestCreateSessionRequiresTitle(t *testing.T) {
	svc, _ := newTestConsultService(t, &stubQAClient{}, &stubTranscriber{})

	_, err := svc.CreateSession(context.Background(), uuid.New(), models.CreateSessionRequest{})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSendMessageAppendsBothTurnHalves(t *testing.T) {
	qa := &stubQAClient{result: ai.QAResult{Response: "多休息，多饮水。", TimeTaken: 1.2, OK: true}}
	svc, ms := newTestConsultService(t, qa, &stubTranscriber{})
	userID := uuid.New()

	sess, err := svc.CreateSession(context.Background(), userID, models.CreateSessionRequest{Title: "感冒"})
	require.NoError(t, err)

	resp, err := svc.SendMessage(context.Background(), userID, sess.ID, models.SendMessageRequest{Content: "我感冒了怎么办"})
	require.NoError(t, err)

	assert.Equal(t, models.SenderUser, resp.UserMessage.SenderType)
	assert.Equal(t, "我感冒了怎么办", resp.UserMessage.Content)
	assert.Equal(t, models.SenderAI, resp.AIMessage.SenderType)
	assert.Equal(t, "多休息，多饮水。", resp.AIMessage.Content)
	assert.Equal(t, 1.2, resp.TimeTaken)
	assert.Equal(t, "我感冒了怎么办", qa.lastQuery)
	assert.Equal(t, "chinese", qa.lastLang)

	msgs, err := ms.ListMessagesBySession(context.Background(), sess.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3) // welcome + user + ai
}

func TestSendMessageQAFailureDegradesToApology(t *testing.T) {
	qa := &stubQAClient{result: ai.QAResult{Response: "医疗咨询服务暂时不可用", OK: false}}
	svc, ms := newTestConsultService(t, qa, &stubTranscriber{})
	userID := uuid.New()

	sess, err := svc.CreateSession(context.Background(), userID, models.CreateSessionRequest{Title: "T"})
	require.NoError(t, err)

	resp, err := svc.SendMessage(context.Background(), userID, sess.ID, models.SendMessageRequest{Content: "血压高"})
	require.NoError(t, err)

	assert.Equal(t, apologyMessage, resp.AIMessage.Content)

	// The user message must have survived the upstream failure.
	msgs, err := ms.ListMessagesBySession(context.Background(), sess.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "血压高", msgs[1].Content)
	assert.Equal(t, apologyMessage, msgs[2].Content)
}

func TestSendMessageClosedSessionRejected(t *testing.T) {
	qa := &stubQAClient{result: ai.QAResult{Response: "ok", OK: true}}
	svc, ms := newTestConsultService(t, qa, &stubTranscriber{})
	userID := uuid.New()

	sess, err := svc.CreateSession(context.Background(), userID, models.CreateSessionRequest{Title: "T"})
	require.NoError(t, err)

	closed := models.SessionStatusClosed
	_, err = svc.UpdateSession(context.Background(), userID, sess.ID, models.UpdateSessionRequest{Status: &closed})
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), userID, sess.ID, models.SendMessageRequest{Content: "hello"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	assert.Zero(t, qa.calls)

	msgs, err := ms.ListMessagesBySession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1) // welcome only
}

func TestSessionOwnershipIndistinguishableFromAbsent(t *testing.T) {
	svc, _ := newTestConsultService(t, &stubQAClient{result: ai.QAResult{OK: true}}, &stubTranscriber{})
	owner := uuid.New()
	intruder := uuid.New()

	sess, err := svc.CreateSession(context.Background(), owner, models.CreateSessionRequest{Title: "T"})
	require.NoError(t, err)

	_, notOwnedErr := svc.GetSession(context.Background(), intruder, sess.ID)
	_, absentErr := svc.GetSession(context.Background(), intruder, uuid.New())

	require.Error(t, notOwnedErr)
	require.Error(t, absentErr)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(notOwnedErr))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(absentErr))
	assert.Equal(t, notOwnedErr.Error(), absentErr.Error())
}

func TestListSessionsRejectsUnknownStatusFilter(t *testing.T) {
	svc, _ := newTestConsultService(t, &stubQAClient{}, &stubTranscriber{})

	_, err := svc.ListSessions(context.Background(), uuid.New(), "archived")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestListSessionsOrderedByLastUpdate(t *testing.T) {
	qa := &stubQAClient{result: ai.QAResult{Response: "ok", OK: true}}
	svc, _ := newTestConsultService(t, qa, &stubTranscriber{})
	userID := uuid.New()

	first, err := svc.CreateSession(context.Background(), userID, models.CreateSessionRequest{Title: "first"})
	require.NoError(t, err)
	second, err := svc.CreateSession(context.Background(), userID, models.CreateSessionRequest{Title: "second"})
	require.NoError(t, err)

	// Touch the older session; it should move to the front.
	_, err = svc.SendMessage(context.Background(), userID, first.ID, models.SendMessageRequest{Content: "hi"})
	require.NoError(t, err)

	sessions, err := svc.ListSessions(context.Background(), userID, "")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, first.ID, sessions[0].ID)
	assert.Equal(t, second.ID, sessions[1].ID)
}

func TestUpdateSessionIgnoresUnknownStatus(t *testing.T) {
	svc, _ := newTestConsultService(t, &stubQAClient{}, &stubTranscriber{})
	userID := uuid.New()

	sess, err := svc.CreateSession(context.Background(), userID, models.CreateSessionRequest{Title: "T"})
	require.NoError(t, err)

	bogus := "archived"
	title := "renamed"
	updated, err := svc.UpdateSession(context.Background(), userID, sess.ID, models.UpdateSessionRequest{
		Title:  &title,
		Status: &bogus,
	})
	require.NoError(t, err)

	// The rest of the patch lands; the unrecognized status is dropped.
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, models.SessionStatusActive, updated.Status)
}

func TestUpdateSessionRejectsEmptyPatch(t *testing.T) {
	svc, _ := newTestConsultService(t, &stubQAClient{}, &stubTranscriber{})
	userID := uuid.New()

	sess, err := svc.CreateSession(context.Background(), userID, models.CreateSessionRequest{Title: "T"})
	require.NoError(t, err)

	_, err = svc.UpdateSession(context.Background(), userID, sess.ID, models.UpdateSessionRequest{})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "param_error", apperr.MessageKeyOf(err))

	// The session is untouched; an empty patch must not bump updated_at.
	got, err := svc.GetSession(context.Background(), userID, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.UpdatedAt, got.UpdatedAt)
}

func TestGetSessionMessagesInCreationOrder(t *testing.T) {
	qa := &stubQAClient{result: ai.QAResult{Response: "answer", OK: true}}
	svc, _ := newTestConsultService(t, qa, &stubTranscriber{})
	userID := uuid.New()

	sess, err := svc.CreateSession(context.Background(), userID, models.CreateSessionRequest{Title: "T"})
	require.NoError(t, err)

	for _, content := range []string{"q1", "q2", "q3"} {
		_, err := svc.SendMessage(context.Background(), userID, sess.ID, models.SendMessageRequest{Content: content})
		require.NoError(t, err)
	}

	got, err := svc.GetSession(context.Background(), userID, sess.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 7)

	assert.Equal(t, models.SenderSystem, got.Messages[0].SenderType)
	assert.Equal(t, "q1", got.Messages[1].Content)
	assert.Equal(t, "q2", got.Messages[3].Content)
	assert.Equal(t, "q3", got.Messages[5].Content)
	for i := 1; i < len(got.Messages); i++ {
		assert.False(t, got.Messages[i].CreatedAt.Before(got.Messages[i-1].CreatedAt))
	}
}

func TestTranscribeAndAppendStoresAudioMessage(t *testing.T) {
	tr := &stubTranscriber{result: ai.TranscriptionResult{OK: true, Text: "我最近头晕"}}
	svc, ms := newTestConsultService(t, &stubQAClient{}, tr)
	userID := uuid.New()

	sess, err := svc.CreateSession(context.Background(), userID, models.CreateSessionRequest{Title: "T"})
	require.NoError(t, err)

	resp, err := svc.TranscribeAndAppend(context.Background(), userID, sess.ID, "clip.wav", []byte("RIFFdata"))
	require.NoError(t, err)

	assert.Equal(t, "我最近头晕", resp.Text)
	assert.Contains(t, resp.AudioURL, "/static/uploads/audio/")
	assert.Equal(t, models.ContentAudio, resp.Message.ContentType)
	require.NotNil(t, resp.Message.MediaURL)
	assert.Equal(t, resp.AudioURL, *resp.Message.MediaURL)

	msgs, err := ms.ListMessagesBySession(context.Background(), sess.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.SenderUser, msgs[1].SenderType)
}

func TestTranscribeAndAppendRejectsUnsupportedFormat(t *testing.T) {
	tr := &stubTranscriber{result: ai.TranscriptionResult{OK: true, Text: "x"}}
	svc, _ := newTestConsultService(t, &stubQAClient{}, tr)
	userID := uuid.New()

	sess, err := svc.CreateSession(context.Background(), userID, models.CreateSessionRequest{Title: "T"})
	require.NoError(t, err)

	_, err = svc.TranscribeAndAppend(context.Background(), userID, sess.ID, "clip.ogg", []byte("data"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "unsupported_file_type", apperr.MessageKeyOf(err))
	assert.Zero(t, tr.calls)
}

func TestTranscribeAndAppendFailureIsHard(t *testing.T) {
	tr := &stubTranscriber{result: ai.TranscriptionResult{Reason: "语音识别超时或中断: timeout"}}
	svc, ms := newTestConsultService(t, &stubQAClient{}, tr)
	userID := uuid.New()

	sess, err := svc.CreateSession(context.Background(), userID, models.CreateSessionRequest{Title: "T"})
	require.NoError(t, err)

	_, err = svc.TranscribeAndAppend(context.Background(), userID, sess.ID, "clip.mp3", []byte("data"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstreamFailure, apperr.KindOf(err))

	// No message appended on a failed transcription.
	msgs, err := ms.ListMessagesBySession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestDirectQASurfacesUpstreamFailure(t *testing.T) {
	qa := &stubQAClient{result: ai.QAResult{Response: "医疗咨询服务暂时不可用", OK: false}}
	svc, _ := newTestConsultService(t, qa, &stubTranscriber{})

	_, err := svc.DirectQA(context.Background(), models.MedicalQARequest{Query: "高血压怎么办"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
	assert.Equal(t, "ai_service_error", apperr.MessageKeyOf(err))
}

func TestDirectQADefaultsLanguage(t *testing.T) {
	qa := &stubQAClient{result: ai.QAResult{Response: "answer", TimeTaken: 0.4, OK: true}}
	svc, _ := newTestConsultService(t, qa, &stubTranscriber{})

	resp, err := svc.DirectQA(context.Background(), models.MedicalQARequest{Query: "感冒"})
	require.NoError(t, err)
	assert.Equal(t, "answer", resp.Response)
	assert.Equal(t, "chinese", qa.lastLang)
}
