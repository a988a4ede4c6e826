package domain

import "time"

// TicketStatus enumerates lifecycle states for support tickets.
type TicketStatus string

const (
	TicketStatusNew    TicketStatus = "new"
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

// ValidTicketStatus reports whether the value is a known status.
func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusNew, TicketStatusOpen, TicketStatusClosed:
		return true
	}
	return false
}

// SupportTicket is the aggregate for public support requests.
type SupportTicket struct {
	ID string
	// TicketCode is the short public-facing code a requester uses to look the
	// ticket up, distinct from the internal record id.
	TicketCode string
	Name       string
	Email      string
	Subject    string
	Message    string
	Status     TicketStatus
	UserID     string
	CreatedAt  time.Time
	Replies    []Reply
}
