package models

import (
	"time"

	"github.com/google/uuid"
)

// --- Request Structs ---

// RegisterRequest defines the expected body for the register endpoint.
type RegisterRequest struct {
	Account  string `json:"account"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest defines the expected body for the login endpoint.
type LoginRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

// CreateSessionRequest defines the body for creating a consultation session.
type CreateSessionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateSessionRequest defines the body for a partial session update.
// Pointers distinguish "absent" from "empty".
type UpdateSessionRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// SendMessageRequest defines the body for one text consultation turn.
type SendMessageRequest struct {
	Content     string   `json:"content"`
	ContentType string   `json:"content_type"`
	Language    string   `json:"language"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature *float64 `json:"temperature"`
}

// MedicalQARequest defines the body for a session-less medical question.
type MedicalQARequest struct {
	Query       string   `json:"query"`
	Language    string   `json:"language"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature *float64 `json:"temperature"`
}

// CreateHealthReportRequest defines the body for creating a health report.
type CreateHealthReportRequest struct {
	Title      string                    `json:"title"`
	Summary    string                    `json:"summary"`
	Doctor     string                    `json:"doctor"`
	Hospital   string                    `json:"hospital"`
	Suggestion string                    `json:"suggestion"`
	Status     string                    `json:"status"`
	Items      []HealthReportItemRequest `json:"items"`
}

// HealthReportItemRequest is one measured value within a report request.
type HealthReportItemRequest struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// UpdateHealthReportRequest defines the body for a partial report update.
type UpdateHealthReportRequest struct {
	Title      *string `json:"title"`
	Summary    *string `json:"summary"`
	Doctor     *string `json:"doctor"`
	Hospital   *string `json:"hospital"`
	Suggestion *string `json:"suggestion"`
	Status     *string `json:"status"`
	HasRead    *bool   `json:"has_read"`
}

// --- Response Structs ---

// UserResponse defines the user information returned by the API.
// Never includes the password hash.
type UserResponse struct {
	ID      uuid.UUID `json:"id"`
	Account string    `json:"account"`
	Phone   string    `json:"phone"`
	Name    string    `json:"name"`
}

// AuthResponse defines the response body for successful authentication.
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

// SessionResponse is a consultation session, optionally with its messages.
type SessionResponse struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"user_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Messages    []MessageResponse `json:"messages,omitempty"`
}

// MessageResponse is one consultation message.
type MessageResponse struct {
	ID          uuid.UUID `json:"id"`
	SessionID   uuid.UUID `json:"session_id"`
	SenderType  string    `json:"sender_type"`
	Content     string    `json:"content"`
	ContentType string    `json:"content_type"`
	MediaURL    *string   `json:"media_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// SendMessageResponse carries both halves of one consultation turn.
type SendMessageResponse struct {
	UserMessage MessageResponse `json:"user_message"`
	AIMessage   MessageResponse `json:"ai_message"`
	TimeTaken   float64         `json:"time_taken"`
}

// AudioMessageResponse is the result of a transcribed audio turn.
type AudioMessageResponse struct {
	Text     string          `json:"text"`
	AudioURL string          `json:"audio_url"`
	Message  MessageResponse `json:"message"`
}

// MedicalQAResponse is the result of a session-less medical question.
type MedicalQAResponse struct {
	Response  string  `json:"response"`
	TimeTaken float64 `json:"time_taken"`
}

// HealthReportResponse is a health report, optionally with its items.
type HealthReportResponse struct {
	ID         uuid.UUID                  `json:"id"`
	UserID     uuid.UUID                  `json:"user_id"`
	Title      string                     `json:"title"`
	Summary    string                     `json:"summary"`
	Doctor     string                     `json:"doctor"`
	Hospital   string                     `json:"hospital"`
	Suggestion string                     `json:"suggestion"`
	Status     string                     `json:"status"`
	HasRead    bool                       `json:"has_read"`
	CreatedAt  time.Time                  `json:"created_at"`
	Items      []HealthReportItemResponse `json:"items,omitempty"`
}

// HealthReportItemResponse is one measured value inside a report.
type HealthReportItemResponse struct {
	ID        uuid.UUID `json:"id"`
	ReportID  uuid.UUID `json:"report_id"`
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	Reference string    `json:"reference"`
	Status    string    `json:"status"`
}
