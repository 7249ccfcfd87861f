package postgres

import (
	"context"
	"errors"
	"fmt"

	db_models "nomad-health-backend/internal/models"
	"nomad-health-backend/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure PostgresStore implements store.Store
var _ store.Store = (*PostgresStore)(nil)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetUserByAccount retrieves a user by their account name.
// Returns store.ErrNotFound if the user does not exist.
func (s *PostgresStore) GetUserByAccount(ctx context.Context, account string) (*db_models.User, error) {
	query := `
		SELECT id, account, phone, name, hashed_password, created_at, updated_at
		FROM users
		WHERE account = $1`

	user := &db_models.User{}
	err := s.db.QueryRow(ctx, query, account).Scan(
		&user.ID,
		&user.Account,
		&user.Phone,
		&user.Name,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		logrus.WithError(err).WithField("account", account).Error("GetUserByAccount query failed")
		return nil, fmt.Errorf("database error fetching user by account: %w", err)
	}

	return user, nil
}

// GetUserByPhone retrieves a user by their phone number.
// Returns store.ErrNotFound if no user carries the number.
func (s *PostgresStore) GetUserByPhone(ctx context.Context, phone string) (*db_models.User, error) {
	query := `
		SELECT id, account, phone, name, hashed_password, created_at, updated_at
		FROM users
		WHERE phone = $1`

	user := &db_models.User{}
	err := s.db.QueryRow(ctx, query, phone).Scan(
		&user.ID,
		&user.Account,
		&user.Phone,
		&user.Name,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		logrus.WithError(err).Error("GetUserByPhone query failed")
		return nil, fmt.Errorf("database error fetching user by phone: %w", err)
	}

	return user, nil
}

// CreateUser inserts a new user record into the database.
func (s *PostgresStore) CreateUser(ctx context.Context, user *db_models.User) error {
	query := `
		INSERT INTO users (id, account, phone, name, hashed_password)
		VALUES ($1, $2, $3, $4, $5)`
	// created_at and updated_at have database defaults (NOW())

	_, err := s.db.Exec(ctx, query,
		user.ID,
		user.Account,
		user.Phone,
		user.Name,
		user.HashedPassword,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			logrus.WithFields(logrus.Fields{
				"account": user.Account,
				"code":    pgErr.Code,
				"detail":  pgErr.Detail,
			}).Error("CreateUser insert failed")
		} else {
			logrus.WithError(err).WithField("account", user.Account).Error("CreateUser insert failed")
		}
		return fmt.Errorf("database error creating user: %w", err)
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "account": user.Account}).Info("user created")
	return nil
}
