package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/site-api/internal/auth"
	"github.com/spec-kit/site-api/internal/config"
	"github.com/spec-kit/site-api/internal/domain"
	"github.com/spec-kit/site-api/internal/repository"
	apperrors "github.com/spec-kit/site-api/pkg/util/errorutil"
)

// AdminService manages staff accounts and sessions.
type AdminService struct {
	admins      repository.AdminRepository
	tokenMgr    *auth.TokenManager
	bcryptCost  int
	setupSecret string
}

// NewAdminService builds the service.
func NewAdminService(cfg config.AuthConfig, admins repository.AdminRepository) *AdminService {
	return &AdminService{
		admins:      admins,
		tokenMgr:    auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost:  cfg.BcryptCost,
		setupSecret: cfg.SetupSecret,
	}
}

// Setup bootstraps the first admin account. It requires the out-of-band
// setup secret and refuses duplicate emails, so re-running it is harmless.
func (s *AdminService) Setup(ctx context.Context, secret, name, email, password string) (*domain.Admin, error) {
	if s.setupSecret == "" {
		return nil, apperrors.NewInternalError(errors.New("ADMIN_SETUP_SECRET not configured"))
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(s.setupSecret)) != 1 {
		return nil, apperrors.NewForbidden("invalid setup secret")
	}
	return s.Create(ctx, name, email, password)
}

// Login authenticates an admin and issues a session token.
func (s *AdminService) Login(ctx context.Context, email, password string) (*domain.Admin, string, time.Time, error) {
	admin, err := s.admins.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(admin.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(admin.ID, admin.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return admin, token, exp, nil
}

// Create adds an admin account, rejecting duplicate emails.
func (s *AdminService) Create(ctx context.Context, name, email, password string) (*domain.Admin, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" {
		return nil, apperrors.NewValidationError("name and email required", nil)
	}

	if _, err := s.admins.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("admin email already exists", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return nil, apperrors.NewValidationError("password too short", map[string]any{"min_length": auth.MinPasswordLength})
		}
		return nil, err
	}

	admin := &domain.Admin{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// List returns all admin accounts.
func (s *AdminService) List(ctx context.Context) ([]domain.Admin, error) {
	return s.admins.List(ctx)
}

// UpdateProfile changes name/email, rejecting an email held by another admin.
func (s *AdminService) UpdateProfile(ctx context.Context, id, name, email string) (*domain.Admin, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" {
		return nil, apperrors.NewValidationError("name and email required", nil)
	}

	if existing, err := s.admins.GetByEmail(ctx, email); err == nil && existing.ID != id {
		return nil, apperrors.NewConflict("admin email already exists", map[string]any{"email": email})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if err := s.admins.UpdateProfile(ctx, id, name, email); err != nil {
		return nil, err
	}
	return s.admins.GetByID(ctx, id)
}

// ChangePassword verifies the current password before accepting a new one of
// at least the minimum length.
func (s *AdminService) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(admin.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("current password incorrect")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return apperrors.NewValidationError("password too short", map[string]any{"min_length": auth.MinPasswordLength})
		}
		return err
	}
	return s.admins.UpdatePassword(ctx, id, hash)
}

// Delete removes an admin account unless it is the last one.
func (s *AdminService) Delete(ctx context.Context, id string) error {
	count, err := s.admins.Count(ctx)
	if err != nil {
		return err
	}
	if count <= 1 {
		return apperrors.NewConflict("cannot delete the last admin account", nil)
	}
	return s.admins.Delete(ctx, id)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AdminService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
