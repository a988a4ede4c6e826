package dto

import (
	"time"

	"github.com/spec-kit/site-api/internal/domain"
)

// TicketCreateRequest is the public ticket submission payload.
type TicketCreateRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// TicketPublicReplyRequest is the public reply payload, identified by ticket
// code plus email.
type TicketPublicReplyRequest struct {
	TicketID string `json:"ticketId"`
	Email    string `json:"email"`
	Message  string `json:"message"`
}

// TicketStaffReplyRequest is the staff reply payload with the optional
// notification toggle.
type TicketStaffReplyRequest struct {
	Message string `json:"message"`
	Notify  bool   `json:"notify"`
}

// TicketPatchRequest is the allow-listed staff partial update.
type TicketPatchRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Subject *string `json:"subject"`
	Status  *string `json:"status"`
}

// TicketResponse is the API view of a ticket.
type TicketResponse struct {
	ID        string              `json:"id"`
	TicketID  string              `json:"ticketId"`
	Name      string              `json:"name"`
	Email     string              `json:"email"`
	Subject   string              `json:"subject"`
	Message   string              `json:"message"`
	Status    domain.TicketStatus `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
	Replies   []ReplyResponse     `json:"replies"`
}

// NewTicketResponse maps a ticket.
func NewTicketResponse(ticket *domain.SupportTicket) TicketResponse {
	return TicketResponse{
		ID:        ticket.ID,
		TicketID:  ticket.TicketCode,
		Name:      ticket.Name,
		Email:     ticket.Email,
		Subject:   ticket.Subject,
		Message:   ticket.Message,
		Status:    ticket.Status,
		CreatedAt: ticket.CreatedAt,
		Replies:   NewReplyResponses(ticket.Replies),
	}
}
