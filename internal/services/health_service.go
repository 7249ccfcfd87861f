package services

import (
	"context"
	"errors"

	"nomad-health-backend/internal/apperr"
	"nomad-health-backend/internal/models"
	"nomad-health-backend/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// HealthService handles health report CRUD on behalf of the owning user.
type HealthService struct {
	store store.Store
}

func NewHealthService(s store.Store) *HealthService {
	return &HealthService{store: s}
}

func mapReport(r *models.HealthReport, items []models.HealthReportItem) *models.HealthReportResponse {
	resp := &models.HealthReportResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		Title:      r.Title,
		Summary:    r.Summary,
		Doctor:     r.Doctor,
		Hospital:   r.Hospital,
		Suggestion: r.Suggestion,
		Status:     r.Status,
		HasRead:    r.HasRead,
		CreatedAt:  r.CreatedAt,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, models.HealthReportItemResponse{
			ID:        item.ID,
			ReportID:  item.ReportID,
			Name:      item.Name,
			Value:     item.Value,
			Reference: item.Reference,
			Status:    item.Status,
		})
	}
	return resp
}

// CreateReport stores a new report with its items.
func (s *HealthService) CreateReport(ctx context.Context, userID uuid.UUID, req models.CreateHealthReportRequest) (*models.HealthReportResponse, error) {
	if req.Title == "" {
		return nil, apperr.E(apperr.KindValidation, "param_error", "")
	}

	status := req.Status
	if status == "" {
		status = "normal"
	}

	params := store.CreateHealthReportParams{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      req.Title,
		Summary:    req.Summary,
		Doctor:     req.Doctor,
		Hospital:   req.Hospital,
		Suggestion: req.Suggestion,
		Status:     status,
	}
	for _, item := range req.Items {
		itemStatus := item.Status
		if itemStatus == "" {
			itemStatus = "normal"
		}
		params.Items = append(params.Items, store.CreateHealthReportItemParams{
			ID:        uuid.New(),
			Name:      item.Name,
			Value:     item.Value,
			Reference: item.Reference,
			Status:    itemStatus,
		})
	}

	report, err := s.store.CreateHealthReport(ctx, params)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "server_error", err)
	}

	items, err := s.store.ListHealthReportItems(ctx, report.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "server_error", err)
	}
	return mapReport(report, items), nil
}

// GetReport returns an owned report with its items and marks it read.
func (s *HealthService) GetReport(ctx context.Context, userID, reportID uuid.UUID) (*models.HealthReportResponse, error) {
	report, err := s.store.GetHealthReportByID(ctx, reportID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.E(apperr.KindNotFound, "not_found", "健康报告不存在")
		}
		return nil, apperr.Wrap(apperr.KindPersistence, "server_error", err)
	}

	items, err := s.store.ListHealthReportItems(ctx, report.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "server_error", err)
	}

	if !report.HasRead {
		if err := s.store.MarkHealthReportRead(ctx, report.ID, userID); err != nil {
			// Reading still succeeds; the flag catches up on the next fetch.
			logrus.WithError(err).WithField("report_id", report.ID).Warn("failed to mark report read")
		} else {
			report.HasRead = true
		}
	}

	return mapReport(report, items), nil
}

// ListReports returns the user's reports, newest first, without items.
func (s *HealthService) ListReports(ctx context.Context, userID uuid.UUID) ([]models.HealthReportResponse, error) {
	reports, err := s.store.ListHealthReportsByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "server_error", err)
	}

	result := []models.HealthReportResponse{}
	for i := range reports {
		result = append(result, *mapReport(&reports[i], nil))
	}
	return result, nil
}

// UpdateReport applies a partial update to an owned report.
func (s *HealthService) UpdateReport(ctx context.Context, userID, reportID uuid.UUID, req models.UpdateHealthReportRequest) (*models.HealthReportResponse, error) {
	report, err := s.store.UpdateHealthReport(ctx, store.UpdateHealthReportParams{
		ID:         reportID,
		UserID:     userID,
		Title:      req.Title,
		Summary:    req.Summary,
		Doctor:     req.Doctor,
		Hospital:   req.Hospital,
		Suggestion: req.Suggestion,
		Status:     req.Status,
		HasRead:    req.HasRead,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.E(apperr.KindNotFound, "not_found", "健康报告不存在")
		}
		return nil, apperr.Wrap(apperr.KindPersistence, "server_error", err)
	}

	items, err := s.store.ListHealthReportItems(ctx, report.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "server_error", err)
	}
	return mapReport(report, items), nil
}

// DeleteReport removes an owned report and, via cascade, its items.
func (s *HealthService) DeleteReport(ctx context.Context, userID, reportID uuid.UUID) error {
	if err := s.store.DeleteHealthReport(ctx, reportID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.E(apperr.KindNotFound, "not_found", "健康报告不存在")
		}
		return apperr.Wrap(apperr.KindPersistence, "server_error", err)
	}
	return nil
}
