package domain

import "time"

// ContactStatus enumerates lifecycle states for contact submissions.
type ContactStatus string

const (
	ContactStatusNew     ContactStatus = "new"
	ContactStatusRead    ContactStatus = "read"
	ContactStatusReplied ContactStatus = "replied"
)

// ValidContactStatus reports whether the value is a known status.
func ValidContactStatus(s ContactStatus) bool {
	switch s {
	case ContactStatusNew, ContactStatusRead, ContactStatusReplied:
		return true
	}
	return false
}

// ContactSubmission is a visitor message sent through the public contact form.
type ContactSubmission struct {
	ID      string
	Name    string
	Email   string
	Message string
	Status  ContactStatus
	// LastEmailID holds the provider id of the most recent outbound email for
	// this submission, used to correlate inbound webhook replies.
	LastEmailID *string
	CreatedAt   time.Time
	Replies     []Reply
}
