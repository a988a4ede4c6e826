package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/site-api/internal/api/dto"
	"github.com/spec-kit/site-api/internal/service"
	apperrors "github.com/spec-kit/site-api/pkg/util/errorutil"
)

// SupportHandler serves the public support ticket endpoints.
type SupportHandler struct {
	tickets *service.TicketService
}

// NewSupportHandler constructs handler.
func NewSupportHandler(ticketService *service.TicketService) *SupportHandler {
	return &SupportHandler{tickets: ticketService}
}

// Create POST /support.
func (h *SupportHandler) Create(c *fiber.Ctx) error {
	var req dto.TicketCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.Create(c.UserContext(), service.TicketCreateInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"ticket":  dto.NewTicketResponse(ticket),
	})
}

// Lookup GET /support/lookup?ticketId=&email=.
func (h *SupportHandler) Lookup(c *fiber.Ctx) error {
	ticket, err := h.tickets.Lookup(c.UserContext(), c.Query("ticketId"), c.Query("email"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ticket": dto.NewTicketResponse(ticket)})
}

// Reply POST /support/reply.
func (h *SupportHandler) Reply(c *fiber.Ctx) error {
	var req dto.TicketPublicReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.PublicReply(c.UserContext(), req.TicketID, req.Email, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"ticket":  dto.NewTicketResponse(ticket),
	})
}
