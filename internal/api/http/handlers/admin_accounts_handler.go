package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/site-api/internal/api/dto"
	"github.com/spec-kit/site-api/internal/service"
	apperrors "github.com/spec-kit/site-api/pkg/util/errorutil"
)

// AdminAccountsHandler serves admin bootstrap, login and account CRUD.
type AdminAccountsHandler struct {
	admins *service.AdminService
}

// NewAdminAccountsHandler constructs handler.
func NewAdminAccountsHandler(adminService *service.AdminService) *AdminAccountsHandler {
	return &AdminAccountsHandler{admins: adminService}
}

// Setup POST /admin/setup. One-time bootstrap gated by an out-of-band secret.
func (h *AdminAccountsHandler) Setup(c *fiber.Ctx) error {
	var req dto.AdminSetupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	admin, err := h.admins.Setup(c.UserContext(), req.Secret, req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAdminResponse(admin)})
}

// Login POST /admin/login.
func (h *AdminAccountsHandler) Login(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	admin, token, expiresAt, err := h.admins.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AdminLoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Admin:     dto.NewAdminResponse(admin),
	}})
}

// List GET /admin/admins.
func (h *AdminAccountsHandler) List(c *fiber.Ctx) error {
	admins, err := h.admins.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.AdminResponse, 0, len(admins))
	for i := range admins {
		items = append(items, dto.NewAdminResponse(&admins[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /admin/admins.
func (h *AdminAccountsHandler) Create(c *fiber.Ctx) error {
	var req dto.AdminCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	admin, err := h.admins.Create(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAdminResponse(admin)})
}

// Update PATCH /admin/admins/:id.
func (h *AdminAccountsHandler) Update(c *fiber.Ctx) error {
	var req dto.AdminUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	admin, err := h.admins.UpdateProfile(c.UserContext(), c.Params("id"), req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAdminResponse(admin)})
}

// ChangePassword POST /admin/admins/:id/password.
func (h *AdminAccountsHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.AdminChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.admins.ChangePassword(c.UserContext(), c.Params("id"), req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// Delete DELETE /admin/admins/:id. The last admin account cannot be removed.
func (h *AdminAccountsHandler) Delete(c *fiber.Ctx) error {
	if err := h.admins.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}
