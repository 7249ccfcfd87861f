package store

import (
	"context"
	"errors"

	db_models "nomad-health-backend/internal/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a specific record is not found.
var ErrNotFound = errors.New("record not found")

// CreateSessionParams contains everything needed to open a consultation
// session. The welcome message is inserted in the same transaction as the
// session row so a session is never observable without it.
type CreateSessionParams struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Title          string
	Description    string
	WelcomeContent string
}

// UpdateSessionParams contains parameters for a partial session update.
// Nil pointers leave the column untouched.
type UpdateSessionParams struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       *string
	Description *string
	Status      *string
}

// AppendMessageParams contains parameters for appending one message to a
// session. The insert and the session's updated_at touch happen in one
// transaction.
type AppendMessageParams struct {
	ID          uuid.UUID
	SessionID   uuid.UUID
	SenderType  string
	Content     string
	ContentType string
	MediaURL    *string
}

// CreateHealthReportParams contains parameters for creating a report with its
// items in one transaction.
type CreateHealthReportParams struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Title      string
	Summary    string
	Doctor     string
	Hospital   string
	Suggestion string
	Status     string
	Items      []CreateHealthReportItemParams
}

// CreateHealthReportItemParams is one measured value within a new report.
type CreateHealthReportItemParams struct {
	ID        uuid.UUID
	Name      string
	Value     string
	Reference string
	Status    string
}

// UpdateHealthReportParams contains parameters for a partial report update.
type UpdateHealthReportParams struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Title      *string
	Summary    *string
	Doctor     *string
	Hospital   *string
	Suggestion *string
	Status     *string
	HasRead    *bool
}

// Store defines the interface for database operations.
// This allows for mocking in tests and potential DB backend switching.
type Store interface {
	// User operations
	GetUserByAccount(ctx context.Context, account string) (*db_models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*db_models.User, error)
	CreateUser(ctx context.Context, user *db_models.User) error

	// Consultation session operations. All reads and writes are scoped to the
	// owning user; a session owned by someone else behaves as if absent.
	CreateSession(ctx context.Context, arg CreateSessionParams) (*db_models.ConsultSession, error)
	GetSessionByID(ctx context.Context, id, userID uuid.UUID) (*db_models.ConsultSession, error)
	ListSessionsByUser(ctx context.Context, userID uuid.UUID, status *string) ([]db_models.ConsultSession, error)
	UpdateSession(ctx context.Context, arg UpdateSessionParams) (*db_models.ConsultSession, error)

	// Consultation message operations. Messages are append-only and returned
	// in non-decreasing creation-time order.
	AppendMessage(ctx context.Context, arg AppendMessageParams) (*db_models.ConsultMessage, error)
	ListMessagesBySession(ctx context.Context, sessionID uuid.UUID) ([]db_models.ConsultMessage, error)

	// Health report operations
	CreateHealthReport(ctx context.Context, arg CreateHealthReportParams) (*db_models.HealthReport, error)
	GetHealthReportByID(ctx context.Context, id, userID uuid.UUID) (*db_models.HealthReport, error)
	ListHealthReportsByUser(ctx context.Context, userID uuid.UUID) ([]db_models.HealthReport, error)
	ListHealthReportItems(ctx context.Context, reportID uuid.UUID) ([]db_models.HealthReportItem, error)
	UpdateHealthReport(ctx context.Context, arg UpdateHealthReportParams) (*db_models.HealthReport, error)
	MarkHealthReportRead(ctx context.Context, id, userID uuid.UUID) error
	DeleteHealthReport(ctx context.Context, id, userID uuid.UUID) error
}
