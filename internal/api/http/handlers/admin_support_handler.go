package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/site-api/internal/api/dto"
	"github.com/spec-kit/site-api/internal/service"
	apperrors "github.com/spec-kit/site-api/pkg/util/errorutil"
)

// AdminSupportHandler serves staff-only ticket management endpoints.
type AdminSupportHandler struct {
	tickets *service.TicketService
}

// NewAdminSupportHandler constructs handler.
func NewAdminSupportHandler(ticketService *service.TicketService) *AdminSupportHandler {
	return &AdminSupportHandler{tickets: ticketService}
}

// List GET /admin/support?status=.
func (h *AdminSupportHandler) List(c *fiber.Ctx) error {
	tickets, err := h.tickets.ListForStaff(c.UserContext(), c.Query("status"))
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /admin/support/:id.
func (h *AdminSupportHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.tickets.GetForStaff(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Patch PATCH /admin/support/:id.
func (h *AdminSupportHandler) Patch(c *fiber.Ctx) error {
	var req dto.TicketPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.Patch(c.UserContext(), c.Params("id"), service.TicketPatchInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Status:  req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Reply POST /admin/support/:id/reply.
func (h *AdminSupportHandler) Reply(c *fiber.Ctx) error {
	admin, err := staffIdentity(c)
	if err != nil {
		return err
	}
	var req dto.TicketStaffReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, emailSent, err := h.tickets.StaffReply(c.UserContext(), admin.Name, c.Params("id"), req.Message, req.Notify)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":      dto.NewTicketResponse(ticket),
		"emailSent": emailSent,
	})
}
