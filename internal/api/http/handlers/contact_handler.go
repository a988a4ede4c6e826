package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/site-api/internal/api/dto"
	"github.com/spec-kit/site-api/internal/service"
	apperrors "github.com/spec-kit/site-api/pkg/util/errorutil"
)

// ContactHandler serves the public contact form endpoint.
type ContactHandler struct {
	contacts *service.ContactService
}

// NewContactHandler constructs handler.
func NewContactHandler(contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contactService}
}

// Create POST /contact.
func (h *ContactHandler) Create(c *fiber.Ctx) error {
	var req dto.ContactCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	contact, err := h.contacts.Create(c.UserContext(), service.ContactCreateInput{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"contactId": contact.ID,
	})
}
