package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user in the database.
type User struct {
	ID             uuid.UUID `db:"id"`
	Account        string    `db:"account"`
	Phone          string    `db:"phone"`
	Name           string    `db:"name"`
	HashedPassword string    `db:"hashed_password"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Session status values. Closed sessions accept no further messages.
const (
	SessionStatusActive = "active"
	SessionStatusClosed = "closed"
)

// Sender roles for consultation messages.
const (
	SenderUser   = "user"
	SenderAI     = "ai"
	SenderSystem = "system"
)

// Message content kinds.
const (
	ContentText  = "text"
	ContentImage = "image"
	ContentAudio = "audio"
)

// ConsultSession is one bounded conversation between a user and the
// consultation feature. The owner never changes after creation.
type ConsultSession struct {
	ID          uuid.UUID `db:"id"`
	UserID      uuid.UUID `db:"user_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ConsultMessage is one immutable turn within a session. Messages form an
// append-only log ordered by creation time.
type ConsultMessage struct {
	ID          uuid.UUID `db:"id"`
	SessionID   uuid.UUID `db:"session_id"`
	SenderType  string    `db:"sender_type"`
	Content     string    `db:"content"`
	ContentType string    `db:"content_type"`
	MediaURL    *string   `db:"media_url"`
	CreatedAt   time.Time `db:"created_at"`
}

// HealthReport represents a medical examination report owned by a user.
type HealthReport struct {
	ID         uuid.UUID `db:"id"`
	UserID     uuid.UUID `db:"user_id"`
	Title      string    `db:"title"`
	Summary    string    `db:"summary"`
	Doctor     string    `db:"doctor"`
	Hospital   string    `db:"hospital"`
	Suggestion string    `db:"suggestion"`
	Status     string    `db:"status"`
	HasRead    bool      `db:"has_read"`
	CreatedAt  time.Time `db:"created_at"`
}

// HealthReportItem is one measured value inside a report.
type HealthReportItem struct {
	ID        uuid.UUID `db:"id"`
	ReportID  uuid.UUID `db:"report_id"`
	Name      string    `db:"name"`
	Value     string    `db:"value"`
	Reference string    `db:"reference"`
	Status    string    `db:"status"`
}
