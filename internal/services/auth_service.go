package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nomad-health-backend/internal/apperr"
	"nomad-health-backend/internal/auth"
	"nomad-health-backend/internal/config"
	"nomad-health-backend/internal/models"
	"nomad-health-backend/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AuthService handles account registration and login.
type AuthService struct {
	store store.Store
	cfg   *config.Config
}

func NewAuthService(s store.Store, cfg *config.Config) *AuthService {
	return &AuthService{store: s, cfg: cfg}
}

// Register creates a new user account. Account names and phone numbers are
// both unique across users.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.UserResponse, error) {
	account := strings.TrimSpace(req.Account)
	if account == "" || req.Password == "" {
		return nil, apperr.E(apperr.KindValidation, "param_error", "")
	}

	_, err := s.store.GetUserByAccount(ctx, account)
	if err == nil {
		return nil, apperr.E(apperr.KindValidation, "account_exists", "")
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Wrap(apperr.KindPersistence, "server_error", err)
	}

	if req.Phone != "" {
		_, err := s.store.GetUserByPhone(ctx, req.Phone)
		if err == nil {
			return nil, apperr.E(apperr.KindValidation, "phone_exists", "")
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Wrap(apperr.KindPersistence, "server_error", err)
		}
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "server_error", fmt.Errorf("hashing password: %w", err))
	}

	user := &models.User{
		ID:             uuid.New(),
		Account:        account,
		Phone:          req.Phone,
		Name:           req.Name,
		HashedPassword: hashedPassword,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "server_error", err)
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "account": account}).Info("user registered")
	return &models.UserResponse{ID: user.ID, Account: user.Account, Phone: user.Phone, Name: user.Name}, nil
}

// Login verifies credentials and returns an access token and user info.
// A missing account and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	account := strings.TrimSpace(req.Account)
	if account == "" || req.Password == "" {
		return nil, apperr.E(apperr.KindValidation, "account_password_error", "")
	}

	user, err := s.store.GetUserByAccount(ctx, account)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.E(apperr.KindValidation, "account_password_error", "")
		}
		return nil, apperr.Wrap(apperr.KindPersistence, "server_error", err)
	}

	if !auth.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, apperr.E(apperr.KindValidation, "account_password_error", "")
	}

	token, err := auth.NewAccessToken(user.ID, s.cfg.JWTSecret, s.cfg.TokenExpiration)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "server_error", err)
	}

	logrus.WithField("user_id", user.ID).Info("user logged in")
	return &models.AuthResponse{
		AccessToken: token,
		User:        models.UserResponse{ID: user.ID, Account: user.Account, Phone: user.Phone, Name: user.Name},
	}, nil
}
