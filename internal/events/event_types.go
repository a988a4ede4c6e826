package events

import (
	"time"

	"github.com/spec-kit/site-api/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventContactCreated       EventType = "contact_created"
	EventContactReplied       EventType = "contact_replied"
	EventTicketCreated        EventType = "ticket_created"
	EventTicketReplied        EventType = "ticket_replied"
	EventInboundEmailReceived EventType = "inbound_email_received"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ContactCreatedPayload payload.
type ContactCreatedPayload struct {
	Email     string `json:"email"`
	EmailSent bool   `json:"email_sent"`
}

// ContactRepliedPayload payload.
type ContactRepliedPayload struct {
	IsFromUser bool                 `json:"is_from_user"`
	SentBy     string               `json:"sent_by"`
	Status     domain.ContactStatus `json:"status"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketCode string `json:"ticket_code"`
	Email      string `json:"email"`
	EmailSent  bool   `json:"email_sent"`
}

// TicketRepliedPayload payload.
type TicketRepliedPayload struct {
	TicketCode string              `json:"ticket_code"`
	IsFromUser bool                `json:"is_from_user"`
	SentBy     string              `json:"sent_by"`
	Status     domain.TicketStatus `json:"status"`
	EmailSent  bool                `json:"email_sent"`
}

// InboundEmailPayload payload.
type InboundEmailPayload struct {
	EmailID string `json:"email_id"`
	From    string `json:"from"`
	Matched bool   `json:"matched"`
}
