package dto

import (
	"time"

	"github.com/spec-kit/site-api/internal/domain"
)

// AdminSetupRequest bootstraps the first admin account.
type AdminSetupRequest struct {
	Secret   string `json:"secret"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminLoginRequest authenticates staff.
type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminCreateRequest adds a staff account.
type AdminCreateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminUpdateRequest changes profile fields.
type AdminUpdateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AdminChangePasswordRequest rotates a password after verifying the current one.
type AdminChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AdminResponse is the API view of a staff account. The password hash is
// never serialized.
type AdminResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AdminLoginResponse carries the session token.
type AdminLoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Admin     AdminResponse `json:"admin"`
}

// NewAdminResponse maps an admin account.
func NewAdminResponse(admin *domain.Admin) AdminResponse {
	return AdminResponse{
		ID:        admin.ID,
		Name:      admin.Name,
		Email:     admin.Email,
		CreatedAt: admin.CreatedAt,
		UpdatedAt: admin.UpdatedAt,
	}
}
