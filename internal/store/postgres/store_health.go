package postgres

import (
	"context"
	"errors"
	"fmt"

	db_models "nomad-health-backend/internal/models"
	"nomad-health-backend/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

const reportColumns = `id, user_id, title, summary, doctor, hospital, suggestion, status, has_read, created_at`

func scanReport(row pgx.Row) (*db_models.HealthReport, error) {
	r := &db_models.HealthReport{}
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.Title,
		&r.Summary,
		&r.Doctor,
		&r.Hospital,
		&r.Suggestion,
		&r.Status,
		&r.HasRead,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// CreateHealthReport inserts the report and its items in one transaction.
func (s *PostgresStore) CreateHealthReport(ctx context.Context, arg store.CreateHealthReportParams) (*db_models.HealthReport, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("database error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO health_reports (id, user_id, title, summary, doctor, hospital, suggestion, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + reportColumns

	report, err := scanReport(tx.QueryRow(ctx, query,
		arg.ID, arg.UserID, arg.Title, arg.Summary, arg.Doctor, arg.Hospital, arg.Suggestion, arg.Status))
	if err != nil {
		logrus.WithError(err).WithField("user_id", arg.UserID).Error("CreateHealthReport insert failed")
		return nil, fmt.Errorf("database error creating health report: %w", err)
	}

	for _, item := range arg.Items {
		if _, err := tx.Exec(ctx,
			`INSERT INTO health_report_items (id, report_id, name, value, reference, status)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			item.ID, report.ID, item.Name, item.Value, item.Reference, item.Status); err != nil {
			logrus.WithError(err).WithField("report_id", report.ID).Error("CreateHealthReport item insert failed")
			return nil, fmt.Errorf("database error creating report item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("database error committing report create: %w", err)
	}
	return report, nil
}

// GetHealthReportByID retrieves an owned report or store.ErrNotFound.
func (s *PostgresStore) GetHealthReportByID(ctx context.Context, id, userID uuid.UUID) (*db_models.HealthReport, error) {
	query := `SELECT ` + reportColumns + ` FROM health_reports WHERE id = $1 AND user_id = $2`

	report, err := scanReport(s.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		logrus.WithError(err).WithField("report_id", id).Error("GetHealthReportByID query failed")
		return nil, fmt.Errorf("database error fetching health report: %w", err)
	}
	return report, nil
}

// ListHealthReportsByUser returns the user's reports, newest first.
func (s *PostgresStore) ListHealthReportsByUser(ctx context.Context, userID uuid.UUID) ([]db_models.HealthReport, error) {
	query := `SELECT ` + reportColumns + ` FROM health_reports WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("ListHealthReportsByUser query failed")
		return nil, fmt.Errorf("database error listing health reports: %w", err)
	}
	defer rows.Close()

	reports := []db_models.HealthReport{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("database error scanning health report: %w", err)
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating health reports: %w", err)
	}
	return reports, nil
}

// ListHealthReportItems returns the items of a report in insertion order.
func (s *PostgresStore) ListHealthReportItems(ctx context.Context, reportID uuid.UUID) ([]db_models.HealthReportItem, error) {
	query := `
		SELECT id, report_id, name, value, reference, status
		FROM health_report_items
		WHERE report_id = $1
		ORDER BY id ASC`

	rows, err := s.db.Query(ctx, query, reportID)
	if err != nil {
		logrus.WithError(err).WithField("report_id", reportID).Error("ListHealthReportItems query failed")
		return nil, fmt.Errorf("database error listing report items: %w", err)
	}
	defer rows.Close()

	items := []db_models.HealthReportItem{}
	for rows.Next() {
		var item db_models.HealthReportItem
		if err := rows.Scan(&item.ID, &item.ReportID, &item.Name, &item.Value, &item.Reference, &item.Status); err != nil {
			return nil, fmt.Errorf("database error scanning report item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating report items: %w", err)
	}
	return items, nil
}

// UpdateHealthReport applies a partial update to an owned report.
func (s *PostgresStore) UpdateHealthReport(ctx context.Context, arg store.UpdateHealthReportParams) (*db_models.HealthReport, error) {
	query := `
		UPDATE health_reports
		SET title      = COALESCE($3, title),
		    summary    = COALESCE($4, summary),
		    doctor     = COALESCE($5, doctor),
		    hospital   = COALESCE($6, hospital),
		    suggestion = COALESCE($7, suggestion),
		    status     = COALESCE($8, status),
		    has_read   = COALESCE($9, has_read)
		WHERE id = $1 AND user_id = $2
		RETURNING ` + reportColumns

	report, err := scanReport(s.db.QueryRow(ctx, query,
		arg.ID, arg.UserID, arg.Title, arg.Summary, arg.Doctor, arg.Hospital, arg.Suggestion, arg.Status, arg.HasRead))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		logrus.WithError(err).WithField("report_id", arg.ID).Error("UpdateHealthReport failed")
		return nil, fmt.Errorf("database error updating health report: %w", err)
	}
	return report, nil
}

// MarkHealthReportRead flips the has_read flag on an owned report.
func (s *PostgresStore) MarkHealthReportRead(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE health_reports SET has_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		logrus.WithError(err).WithField("report_id", id).Error("MarkHealthReportRead failed")
		return fmt.Errorf("database error marking report read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteHealthReport removes an owned report; items go with it via the
// ON DELETE CASCADE constraint.
func (s *PostgresStore) DeleteHealthReport(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM health_reports WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		logrus.WithError(err).WithField("report_id", id).Error("DeleteHealthReport failed")
		return fmt.Errorf("database error deleting health report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
