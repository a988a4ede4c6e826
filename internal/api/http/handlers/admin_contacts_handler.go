package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/site-api/internal/api/dto"
	"github.com/spec-kit/site-api/internal/auth"
	"github.com/spec-kit/site-api/internal/domain"
	"github.com/spec-kit/site-api/internal/service"
	apperrors "github.com/spec-kit/site-api/pkg/util/errorutil"
)

// AdminContactsHandler serves staff-only contact management endpoints.
type AdminContactsHandler struct {
	contacts *service.ContactService
}

// NewAdminContactsHandler constructs handler.
func NewAdminContactsHandler(contactService *service.ContactService) *AdminContactsHandler {
	return &AdminContactsHandler{contacts: contactService}
}

// List GET /admin/contacts?status=.
func (h *AdminContactsHandler) List(c *fiber.Ctx) error {
	contacts, err := h.contacts.List(c.UserContext(), c.Query("status"))
	if err != nil {
		return err
	}
	items := make([]dto.ContactResponse, 0, len(contacts))
	for i := range contacts {
		items = append(items, dto.NewContactResponse(&contacts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /admin/contacts/:id. Opening a new submission marks it read.
func (h *AdminContactsHandler) Get(c *fiber.Ctx) error {
	contact, err := h.contacts.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewContactResponse(contact)})
}

// Patch PATCH /admin/contacts/:id.
func (h *AdminContactsHandler) Patch(c *fiber.Ctx) error {
	var req dto.ContactPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	contact, err := h.contacts.Patch(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewContactResponse(contact)})
}

// Reply POST /admin/contacts/:id/reply.
func (h *AdminContactsHandler) Reply(c *fiber.Ctx) error {
	admin, err := staffIdentity(c)
	if err != nil {
		return err
	}
	var req dto.ContactReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	contact, emailSent, err := h.contacts.StaffReply(c.UserContext(), admin.Name, c.Params("id"), req.Message)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":      dto.NewContactResponse(contact),
		"emailSent": emailSent,
	})
}

func staffIdentity(c *fiber.Ctx) (*domain.Admin, error) {
	admin, ok := auth.AdminFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("staff session required")
	}
	return admin, nil
}
