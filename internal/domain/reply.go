package domain

import "time"

// Reply is one message in a contact or ticket thread. Threads are append-only
// and kept in insertion order.
type Reply struct {
	ID      string
	Message string
	SentBy  string
	// IsFromUser is true when the original requester sent the message,
	// false for staff.
	IsFromUser bool
	SentAt     time.Time
}
