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

const sessionColumns = `id, user_id, title, description, status, created_at, updated_at`

func scanSession(row pgx.Row) (*db_models.ConsultSession, error) {
	sess := &db_models.ConsultSession{}
	err := row.Scan(
		&sess.ID,
		&sess.UserID,
		&sess.Title,
		&sess.Description,
		&sess.Status,
		&sess.CreatedAt,
		&sess.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// CreateSession inserts the session row and its system welcome message in one
// transaction, so a session is never visible without its seed message.
func (s *PostgresStore) CreateSession(ctx context.Context, arg store.CreateSessionParams) (*db_models.ConsultSession, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("database error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO consult_sessions (id, user_id, title, description, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + sessionColumns

	sess, err := scanSession(tx.QueryRow(ctx, query,
		arg.ID, arg.UserID, arg.Title, arg.Description, db_models.SessionStatusActive))
	if err != nil {
		logrus.WithError(err).WithField("user_id", arg.UserID).Error("CreateSession insert failed")
		return nil, fmt.Errorf("database error creating session: %w", err)
	}

	msgQuery := `
		INSERT INTO consult_messages (id, session_id, sender_type, content, content_type)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.Exec(ctx, msgQuery,
		uuid.New(), sess.ID, db_models.SenderSystem, arg.WelcomeContent, db_models.ContentText); err != nil {
		logrus.WithError(err).WithField("session_id", sess.ID).Error("CreateSession welcome insert failed")
		return nil, fmt.Errorf("database error creating welcome message: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("database error committing session create: %w", err)
	}

	logrus.WithFields(logrus.Fields{"session_id": sess.ID, "user_id": sess.UserID}).Info("consultation session created")
	return sess, nil
}

// GetSessionByID retrieves a session scoped to its owner. A session owned by
// another user yields store.ErrNotFound, indistinguishable from absence.
func (s *PostgresStore) GetSessionByID(ctx context.Context, id, userID uuid.UUID) (*db_models.ConsultSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM consult_sessions WHERE id = $1 AND user_id = $2`

	sess, err := scanSession(s.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		logrus.WithError(err).WithField("session_id", id).Error("GetSessionByID query failed")
		return nil, fmt.Errorf("database error fetching session: %w", err)
	}
	return sess, nil
}

// ListSessionsByUser returns the user's sessions ordered by last update,
// newest first. A non-nil status restricts the result.
func (s *PostgresStore) ListSessionsByUser(ctx context.Context, userID uuid.UUID, status *string) ([]db_models.ConsultSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM consult_sessions WHERE user_id = $1`
	args := []interface{}{userID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("ListSessionsByUser query failed")
		return nil, fmt.Errorf("database error listing sessions: %w", err)
	}
	defer rows.Close()

	sessions := []db_models.ConsultSession{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("database error scanning session: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating sessions: %w", err)
	}
	return sessions, nil
}

// UpdateSession applies a partial update to an owned session and bumps
// updated_at. Returns store.ErrNotFound when the session is absent or owned
// by someone else.
func (s *PostgresStore) UpdateSession(ctx context.Context, arg store.UpdateSessionParams) (*db_models.ConsultSession, error) {
	query := `
		UPDATE consult_sessions
		SET title       = COALESCE($3, title),
		    description = COALESCE($4, description),
		    status      = COALESCE($5, status),
		    updated_at  = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + sessionColumns

	sess, err := scanSession(s.db.QueryRow(ctx, query,
		arg.ID, arg.UserID, arg.Title, arg.Description, arg.Status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		logrus.WithError(err).WithField("session_id", arg.ID).Error("UpdateSession failed")
		return nil, fmt.Errorf("database error updating session: %w", err)
	}
	return sess, nil
}

// AppendMessage inserts a message and touches the parent session's updated_at
// in one transaction; a failure leaves neither write behind.
func (s *PostgresStore) AppendMessage(ctx context.Context, arg store.AppendMessageParams) (*db_models.ConsultMessage, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("database error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO consult_messages (id, session_id, sender_type, content, content_type, media_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, session_id, sender_type, content, content_type, media_url, created_at`

	msg := &db_models.ConsultMessage{}
	err = tx.QueryRow(ctx, query,
		arg.ID, arg.SessionID, arg.SenderType, arg.Content, arg.ContentType, arg.MediaURL,
	).Scan(
		&msg.ID,
		&msg.SessionID,
		&msg.SenderType,
		&msg.Content,
		&msg.ContentType,
		&msg.MediaURL,
		&msg.CreatedAt,
	)
	if err != nil {
		logrus.WithError(err).WithField("session_id", arg.SessionID).Error("AppendMessage insert failed")
		return nil, fmt.Errorf("database error appending message: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE consult_sessions SET updated_at = NOW() WHERE id = $1`, arg.SessionID); err != nil {
		logrus.WithError(err).WithField("session_id", arg.SessionID).Error("AppendMessage session touch failed")
		return nil, fmt.Errorf("database error touching session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("database error committing message append: %w", err)
	}
	return msg, nil
}

// ListMessagesBySession returns the session's messages in creation order.
// The id tiebreak keeps same-timestamp messages in a stable order.
func (s *PostgresStore) ListMessagesBySession(ctx context.Context, sessionID uuid.UUID) ([]db_models.ConsultMessage, error) {
	query := `
		SELECT id, session_id, sender_type, content, content_type, media_url, created_at
		FROM consult_messages
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := s.db.Query(ctx, query, sessionID)
	if err != nil {
		logrus.WithError(err).WithField("session_id", sessionID).Error("ListMessagesBySession query failed")
		return nil, fmt.Errorf("database error listing messages: %w", err)
	}
	defer rows.Close()

	messages := []db_models.ConsultMessage{}
	for rows.Next() {
		var msg db_models.ConsultMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.SessionID,
			&msg.SenderType,
			&msg.Content,
			&msg.ContentType,
			&msg.MediaURL,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("database error scanning message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating messages: %w", err)
	}
	return messages, nil
}
