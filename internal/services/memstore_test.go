package services

import (
	"context"
	"sort"
	"time"

	"nomad-health-backend/internal/models"
	"nomad-health-backend/internal/store"

	"github.com/google/uuid"
)

// memStore is an in-memory store.Store used by the service tests. It mirrors
// the ownership scoping and ordering semantics of the Postgres implementation.
type memStore struct {
	users    map[uuid.UUID]*models.User
	sessions map[uuid.UUID]*models.ConsultSession
	messages map[uuid.UUID][]models.ConsultMessage
	reports  map[uuid.UUID]*models.HealthReport
	items    map[uuid.UUID][]models.HealthReportItem

	// seq drives a strictly increasing synthetic clock so ordering
	// assertions do not depend on wall-clock resolution.
	seq  int64
	base time.Time
}

var _ store.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		users:    map[uuid.UUID]*models.User{},
		sessions: map[uuid.UUID]*models.ConsultSession{},
		messages: map[uuid.UUID][]models.ConsultMessage{},
		reports:  map[uuid.UUID]*models.HealthReport{},
		items:    map[uuid.UUID][]models.HealthReportItem{},
		base:     time.Now(),
	}
}

func (m *memStore) now() time.Time {
	m.seq++
	return m.base.Add(time.Duration(m.seq) * time.Millisecond)
}

func (m *memStore) GetUserByAccount(_ context.Context, account string) (*models.User, error) {
	for _, u := range m.users {
		if u.Account == account {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) GetUserByPhone(_ context.Context, phone string) (*models.User, error) {
	for _, u := range m.users {
		if u.Phone == phone {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) CreateUser(_ context.Context, user *models.User) error {
	now := m.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memStore) CreateSession(_ context.Context, arg store.CreateSessionParams) (*models.ConsultSession, error) {
	now := m.now()
	sess := &models.ConsultSession{
		ID:          arg.ID,
		UserID:      arg.UserID,
		Title:       arg.Title,
		Description: arg.Description,
		Status:      models.SessionStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.sessions[sess.ID] = sess

	m.messages[sess.ID] = append(m.messages[sess.ID], models.ConsultMessage{
		ID:          uuid.New(),
		SessionID:   sess.ID,
		SenderType:  models.SenderSystem,
		Content:     arg.WelcomeContent,
		ContentType: models.ContentText,
		CreatedAt:   now,
	})

	copied := *sess
	return &copied, nil
}

func (m *memStore) GetSessionByID(_ context.Context, id, userID uuid.UUID) (*models.ConsultSession, error) {
	sess, ok := m.sessions[id]
	if !ok || sess.UserID != userID {
		return nil, store.ErrNotFound
	}
	copied := *sess
	return &copied, nil
}

func (m *memStore) ListSessionsByUser(_ context.Context, userID uuid.UUID, status *string) ([]models.ConsultSession, error) {
	result := []models.ConsultSession{}
	for _, sess := range m.sessions {
		if sess.UserID != userID {
			continue
		}
		if status != nil && sess.Status != *status {
			continue
		}
		result = append(result, *sess)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func (m *memStore) UpdateSession(_ context.Context, arg store.UpdateSessionParams) (*models.ConsultSession, error) {
	sess, ok := m.sessions[arg.ID]
	if !ok || sess.UserID != arg.UserID {
		return nil, store.ErrNotFound
	}
	if arg.Title != nil {
		sess.Title = *arg.Title
	}
	if arg.Description != nil {
		sess.Description = *arg.Description
	}
	if arg.Status != nil {
		sess.Status = *arg.Status
	}
	sess.UpdatedAt = m.now()
	copied := *sess
	return &copied, nil
}

func (m *memStore) AppendMessage(_ context.Context, arg store.AppendMessageParams) (*models.ConsultMessage, error) {
	sess, ok := m.sessions[arg.SessionID]
	if !ok {
		return nil, store.ErrNotFound
	}
	msg := models.ConsultMessage{
		ID:          arg.ID,
		SessionID:   arg.SessionID,
		SenderType:  arg.SenderType,
		Content:     arg.Content,
		ContentType: arg.ContentType,
		MediaURL:    arg.MediaURL,
		CreatedAt:   m.now(),
	}
	m.messages[arg.SessionID] = append(m.messages[arg.SessionID], msg)
	sess.UpdatedAt = msg.CreatedAt
	return &msg, nil
}

func (m *memStore) ListMessagesBySession(_ context.Context, sessionID uuid.UUID) ([]models.ConsultMessage, error) {
	msgs := m.messages[sessionID]
	result := make([]models.ConsultMessage, len(msgs))
	copy(result, msgs)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *memStore) CreateHealthReport(_ context.Context, arg store.CreateHealthReportParams) (*models.HealthReport, error) {
	report := &models.HealthReport{
		ID:         arg.ID,
		UserID:     arg.UserID,
		Title:      arg.Title,
		Summary:    arg.Summary,
		Doctor:     arg.Doctor,
		Hospital:   arg.Hospital,
		Suggestion: arg.Suggestion,
		Status:     arg.Status,
		CreatedAt:  m.now(),
	}
	m.reports[report.ID] = report
	for _, item := range arg.Items {
		m.items[report.ID] = append(m.items[report.ID], models.HealthReportItem{
			ID:        item.ID,
			ReportID:  report.ID,
			Name:      item.Name,
			Value:     item.Value,
			Reference: item.Reference,
			Status:    item.Status,
		})
	}
	copied := *report
	return &copied, nil
}

func (m *memStore) GetHealthReportByID(_ context.Context, id, userID uuid.UUID) (*models.HealthReport, error) {
	report, ok := m.reports[id]
	if !ok || report.UserID != userID {
		return nil, store.ErrNotFound
	}
	copied := *report
	return &copied, nil
}

func (m *memStore) ListHealthReportsByUser(_ context.Context, userID uuid.UUID) ([]models.HealthReport, error) {
	result := []models.HealthReport{}
	for _, report := range m.reports {
		if report.UserID == userID {
			result = append(result, *report)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *memStore) ListHealthReportItems(_ context.Context, reportID uuid.UUID) ([]models.HealthReportItem, error) {
	items := m.items[reportID]
	result := make([]models.HealthReportItem, len(items))
	copy(result, items)
	return result, nil
}

func (m *memStore) UpdateHealthReport(_ context.Context, arg store.UpdateHealthReportParams) (*models.HealthReport, error) {
	report, ok := m.reports[arg.ID]
	if !ok || report.UserID != arg.UserID {
		return nil, store.ErrNotFound
	}
	if arg.Title != nil {
		report.Title = *arg.Title
	}
	if arg.Summary != nil {
		report.Summary = *arg.Summary
	}
	if arg.Doctor != nil {
		report.Doctor = *arg.Doctor
	}
	if arg.Hospital != nil {
		report.Hospital = *arg.Hospital
	}
	if arg.Suggestion != nil {
		report.Suggestion = *arg.Suggestion
	}
	if arg.Status != nil {
		report.Status = *arg.Status
	}
	if arg.HasRead != nil {
		report.HasRead = *arg.HasRead
	}
	copied := *report
	return &copied, nil
}

func (m *memStore) MarkHealthReportRead(_ context.Context, id, userID uuid.UUID) error {
	report, ok := m.reports[id]
	if !ok || report.UserID != userID {
		return store.ErrNotFound
	}
	report.HasRead = true
	return nil
}

func (m *memStore) DeleteHealthReport(_ context.Context, id, userID uuid.UUID) error {
	report, ok := m.reports[id]
	if !ok || report.UserID != userID {
		return store.ErrNotFound
	}
	delete(m.reports, id)
	delete(m.items, id)
	return nil
}
